// Package push delivers notifications to user devices.
package push

import "context"

// Message is the visible part of a push plus routing data for the client.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Messenger sends a message to a set of device tokens.
type Messenger interface {
	SendMulticast(ctx context.Context, tokens []string, msg Message) (Result, error)
}

// Result counts delivered and failed tokens of one multicast.
type Result struct {
	Success int
	Failure int
	// Invalid holds tokens the provider reported as unregistered.
	Invalid []string
}

// TokenDeactivator marks tokens the provider rejected as inactive.
type TokenDeactivator func(ctx context.Context, tokens []string) error

// Noop discards every message. Used when no credentials are configured.
type Noop struct{}

// SendMulticast implements Messenger.
func (Noop) SendMulticast(_ context.Context, tokens []string, _ Message) (Result, error) {
	return Result{}, nil
}
