package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"finaudy/internal/ai"
	apperrors "finaudy/internal/errors"
	"finaudy/internal/logger"
	"finaudy/internal/models"
	"finaudy/internal/pagination"
	"finaudy/internal/services"
)

const maxCaptureBytes = 10 << 20

// CaptureHandler turns voice notes and receipt photos into transaction drafts.
// Drafts are returned to the client for confirmation and never stored.
type CaptureHandler struct {
	capturer           ai.Capturer
	categoryService    services.CategoryServicer
	entitlementService services.EntitlementServicer
	loc                *time.Location
	now                func() time.Time
}

// NewCaptureHandler creates a new CaptureHandler.
func NewCaptureHandler(capturer ai.Capturer, categoryService services.CategoryServicer, entitlementService services.EntitlementServicer, loc *time.Location) *CaptureHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CaptureHandler{
		capturer:           capturer,
		categoryService:    categoryService,
		entitlementService: entitlementService,
		loc:                loc,
		now:                time.Now,
	}
}

// CaptureResponse is a draft plus the matched category of the account.
type CaptureResponse struct {
	Draft      *ai.Draft              `json:"draft"`
	CategoryID *string                `json:"category_id"`
	Transcript string                 `json:"transcript,omitempty"`
	Quota      *services.FeatureQuota `json:"quota"`
}

// CaptureVoice transcribes an audio note and parses it into a draft.
// @Summary     Draft a transaction from a voice note
// @Tags        capture
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header   string false "Shared account to act on"
// @Param       audio        formData file   true  "Audio note"
// @Success     200 {object} CaptureResponse "Draft"
// @Failure     400 {object} ErrorResponse "Missing file"
// @Failure     402 {object} ErrorResponse "Free usage limit reached"
// @Failure     422 {object} ErrorResponse "Could not understand the capture"
// @Failure     503 {object} ErrorResponse "Capture service is not configured"
// @Router      /ai/voice [post]
func (h *CaptureHandler) CaptureVoice(c *gin.Context) {
	accountID, filename, data, _, quota, ok := h.prepare(c, "audio", models.FeatureVoice)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	transcript, err := h.capturer.Transcribe(ctx, filename, data)
	if err != nil {
		respondWithError(c, captureError(err))
		return
	}
	if transcript == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrCaptureFailed, "no speech detected"))
		return
	}

	categories, err := h.categories(accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	draft, err := h.capturer.ParseText(ctx, transcript, names(categories), h.now().In(h.loc))
	if err != nil {
		respondWithError(c, captureError(err))
		return
	}

	c.JSON(http.StatusOK, CaptureResponse{
		Draft:      draft,
		CategoryID: matchCategory(categories, draft),
		Transcript: transcript,
		Quota:      quota,
	})
}

// CaptureReceipt reads a receipt photo into a draft.
// @Summary     Draft a transaction from a receipt photo
// @Tags        capture
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header   string false "Shared account to act on"
// @Param       image        formData file   true  "Receipt image"
// @Success     200 {object} CaptureResponse "Draft"
// @Failure     400 {object} ErrorResponse "Missing or unsupported file"
// @Failure     402 {object} ErrorResponse "Free usage limit reached"
// @Failure     422 {object} ErrorResponse "Could not understand the capture"
// @Failure     503 {object} ErrorResponse "Capture service is not configured"
// @Router      /ai/receipt [post]
func (h *CaptureHandler) CaptureReceipt(c *gin.Context) {
	accountID, _, data, mimeType, quota, ok := h.prepare(c, "image", models.FeaturePhoto)
	if !ok {
		return
	}

	categories, err := h.categories(accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	draft, err := h.capturer.ReadReceipt(c.Request.Context(), data, mimeType, names(categories), h.now().In(h.loc))
	if err != nil {
		respondWithError(c, captureError(err))
		return
	}

	c.JSON(http.StatusOK, CaptureResponse{
		Draft:      draft,
		CategoryID: matchCategory(categories, draft),
		Quota:      quota,
	})
}

// prepare reads the uploaded file and meters the feature. Usage is only
// consumed once the upload is known to be usable.
func (h *CaptureHandler) prepare(c *gin.Context, field string, feature models.Feature) (accountID, filename string, data []byte, mimeType string, quota *services.FeatureQuota, ok bool) {
	accountID, err := getAccountID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if !h.capturer.Configured() {
		respondWithError(c, apperrors.ErrCaptureUnavailable)
		return
	}

	fh, err := c.FormFile(field)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, field+" file is required"))
		return
	}
	if fh.Size > maxCaptureBytes {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "file exceeds 10 MB"))
		return
	}
	mimeType = fh.Header.Get("Content-Type")
	if feature == models.FeaturePhoto && !strings.HasPrefix(mimeType, "image/") {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "image must be an image file"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	defer f.Close()
	data, err = io.ReadAll(io.LimitReader(f, maxCaptureBytes))
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	quota, err = h.entitlementService.Consume(accountID, feature)
	if err != nil {
		respondWithError(c, err)
		return
	}
	return accountID, fh.Filename, data, mimeType, quota, true
}

func (h *CaptureHandler) categories(accountID string) ([]models.Category, error) {
	page, err := h.categoryService.GetAccountCategories(accountID, nil, pagination.PageRequest{Page: 1, PageSize: 100})
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func names(categories []models.Category) []string {
	out := make([]string, len(categories))
	for i, cat := range categories {
		out[i] = cat.Name
	}
	return out
}

// matchCategory resolves the draft's category name to an account category,
// preferring one of the draft's kind.
func matchCategory(categories []models.Category, draft *ai.Draft) *string {
	if draft == nil || draft.Category == nil {
		return nil
	}
	want := strings.TrimSpace(*draft.Category)
	var fallback *string
	for i := range categories {
		cat := &categories[i]
		if !strings.EqualFold(cat.Name, want) {
			continue
		}
		if string(cat.Type) == draft.Kind {
			return &cat.ID
		}
		if fallback == nil {
			fallback = &cat.ID
		}
	}
	return fallback
}

func captureError(err error) error {
	var invalid *ai.InvalidDraftError
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		return apperrors.ErrCaptureUnavailable
	case errors.As(err, &invalid):
		return apperrors.WithMessage(apperrors.ErrCaptureFailed, invalid.Error())
	}
	logger.Get().Warnw("capture provider failed", "error", err)
	return apperrors.Wrap(apperrors.ErrCaptureFailed, err)
}
