package push

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"firebase.google.com/go/v4/messaging"
)

type fakeSender struct {
	batches [][]string
	fail    map[string]bool
}

func (f *fakeSender) SendEachForMulticast(_ context.Context, m *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.batches = append(f.batches, m.Tokens)
	resp := &messaging.BatchResponse{}
	for _, tok := range m.Tokens {
		if f.fail[tok] {
			resp.FailureCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Error: errors.New("unavailable")})
			continue
		}
		resp.SuccessCount++
		resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true, MessageID: "m-" + tok})
	}
	return resp, nil
}

func TestChunkTokens(t *testing.T) {
	tokens := make([]string, 1201)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("t%d", i)
	}

	chunks := chunkTokens(tokens, fcmBatchLimit)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 500 || len(chunks[2]) != 201 {
		t.Errorf("unexpected chunk sizes %d/%d", len(chunks[0]), len(chunks[2]))
	}
}

func TestSendMulticast(t *testing.T) {
	t.Run("no_tokens", func(t *testing.T) {
		sender := &fakeSender{}
		f := &FCM{client: sender}
		res, err := f.SendMulticast(context.Background(), nil, Message{Title: "x"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Success != 0 || len(sender.batches) != 0 {
			t.Error("expected nothing to be sent")
		}
	})

	t.Run("counts_failures", func(t *testing.T) {
		sender := &fakeSender{fail: map[string]bool{"b": true}}
		var deactivated []string
		f := &FCM{client: sender, deactivator: func(_ context.Context, tokens []string) error {
			deactivated = tokens
			return nil
		}}

		res, err := f.SendMulticast(context.Background(), []string{"a", "b", "c"}, Message{Title: "Budget", Body: "over"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Success != 2 || res.Failure != 1 {
			t.Errorf("expected 2/1, got %d/%d", res.Success, res.Failure)
		}
		if len(deactivated) != 0 {
			t.Errorf("transient failures should not deactivate tokens, got %v", deactivated)
		}
	})
}

func TestNoop(t *testing.T) {
	res, err := Noop{}.SendMulticast(context.Background(), []string{"a"}, Message{})
	if err != nil || res.Success != 0 {
		t.Errorf("unexpected result %+v, %v", res, err)
	}
}
