package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"finaudy/internal/logger"
)

const fcmBatchLimit = 500

// sender is the part of the FCM client used here.
type sender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCM implements Messenger with Firebase Cloud Messaging.
type FCM struct {
	client      sender
	deactivator TokenDeactivator
}

// NewFCM initializes a Firebase app from a service account file. deactivator
// receives tokens FCM reports as unregistered or invalid; may be nil.
func NewFCM(ctx context.Context, credentialsFile string, deactivator TokenDeactivator) (*FCM, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}

	return &FCM{client: client, deactivator: deactivator}, nil
}

// SendMulticast sends msg to every token in batches of 500.
func (f *FCM) SendMulticast(ctx context.Context, tokens []string, msg Message) (Result, error) {
	var result Result
	if len(tokens) == 0 {
		return result, nil
	}

	log := logger.Named("push")
	for _, batch := range chunkTokens(tokens, fcmBatchLimit) {
		resp, err := f.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
		})
		if err != nil {
			return result, fmt.Errorf("failed to send FCM multicast: %w", err)
		}

		result.Success += resp.SuccessCount
		result.Failure += resp.FailureCount
		for i, r := range resp.Responses {
			if r.Error == nil {
				continue
			}
			if messaging.IsUnregistered(r.Error) || messaging.IsInvalidArgument(r.Error) {
				result.Invalid = append(result.Invalid, batch[i])
				continue
			}
			log.Warnw("FCM send error", "index", i, "error", r.Error)
		}
	}

	if len(result.Invalid) > 0 && f.deactivator != nil {
		if err := f.deactivator(ctx, result.Invalid); err != nil {
			log.Errorw("failed to deactivate FCM tokens", "count", len(result.Invalid), "error", err)
		}
	}

	log.Infow("FCM multicast", "success", result.Success, "failure", result.Failure, "invalid", len(result.Invalid))
	return result, nil
}

func chunkTokens(tokens []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(tokens); i += size {
		end := i + size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, tokens[i:end])
	}
	return chunks
}
