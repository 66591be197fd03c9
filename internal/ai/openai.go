// Package ai turns voice notes and receipt photos into transaction drafts
// using the OpenAI HTTP API.
package ai

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed prompt.txt
var promptText string

//go:embed draft.schema.json
var draftSchema string

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("OPENAI_API_KEY missing")

// InvalidDraftError reports a model reply that does not match the draft
// schema.
type InvalidDraftError struct {
	Details []string
}

func (e *InvalidDraftError) Error() string {
	return "draft does not match schema: " + strings.Join(e.Details, "; ")
}

// Draft is a transaction proposed by the model. It is never stored as is.
type Draft struct {
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Category      *string         `json:"category"`
	PaymentMethod *string         `json:"payment_method"`
	OccurredOn    string          `json:"occurred_on"`
	Installments  *int            `json:"installments"`
}

// Capturer produces drafts from user media.
type Capturer interface {
	Configured() bool
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
	ParseText(ctx context.Context, text string, categories []string, today time.Time) (*Draft, error)
	ReadReceipt(ctx context.Context, image []byte, mimeType string, categories []string, today time.Time) (*Draft, error)
}

// Options configures the client.
type Options struct {
	APIKey       string
	BaseURL      string
	WhisperModel string
	LLMModel     string
	VisionModel  string
	Timeout      time.Duration
}

// OpenAIClient implements Capturer.
type OpenAIClient struct {
	opts   Options
	http   *http.Client
	schema *gojsonschema.Schema
}

// NewOpenAIClient compiles the draft schema and returns a client.
func NewOpenAIClient(opts Options) (*OpenAIClient, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(draftSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile draft schema: %w", err)
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &OpenAIClient{opts: opts, http: &http.Client{Timeout: opts.Timeout}, schema: schema}, nil
}

// Configured reports whether an API key is set.
func (c *OpenAIClient) Configured() bool {
	return c.opts.APIKey != ""
}

// Transcribe converts speech to text with Whisper.
func (c *OpenAIClient) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, bytes.NewReader(audio)); err != nil {
		return "", err
	}
	if err := mw.WriteField("model", c.opts.WhisperModel); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("whisper error (%d): %s", resp.StatusCode, string(b))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Text), nil
}

// ParseText extracts a draft from free text.
func (c *OpenAIClient) ParseText(ctx context.Context, text string, categories []string, today time.Time) (*Draft, error) {
	user := fmt.Sprintf("%s\nText: %s", captureContext(categories, today), text)
	return c.complete(ctx, c.opts.LLMModel, user)
}

// ReadReceipt extracts a draft from a receipt photo.
func (c *OpenAIClient) ReadReceipt(ctx context.Context, image []byte, mimeType string, categories []string, today time.Time) (*Draft, error) {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	user := []map[string]any{
		{"type": "text", "text": captureContext(categories, today) + "\nRead this receipt."},
		{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
	}
	return c.complete(ctx, c.opts.VisionModel, user)
}

func captureContext(categories []string, today time.Time) string {
	return fmt.Sprintf("Context: Today is %s. Categories: %s.", today.Format("2006-01-02"), strings.Join(categories, ", "))
}

// complete sends one chat completion in JSON mode and validates the reply.
func (c *OpenAIClient) complete(ctx context.Context, model string, userContent any) (*Draft, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body := map[string]any{
		"model":           model,
		"response_format": map[string]string{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": promptText},
			{"role": "user", "content": userContent},
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		bs, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("llm error (%d): %s", resp.StatusCode, string(bs))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("no choices")
	}
	return c.decodeDraft([]byte(out.Choices[0].Message.Content))
}

// decodeDraft validates raw model output against the draft schema.
func (c *OpenAIClient) decodeDraft(raw []byte) (*Draft, error) {
	res, err := c.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to validate draft: %w", err)
	}
	if !res.Valid() {
		details := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			details = append(details, e.String())
		}
		return nil, &InvalidDraftError{Details: details}
	}

	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}
