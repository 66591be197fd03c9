// Package realtime reacts to ledger changes pushed by PostgreSQL NOTIFY.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/lib/pq"

	"finaudy/internal/logger"
)

const (
	// Channel is the NOTIFY channel the transactions trigger publishes on.
	Channel = "ledger_changes"

	reconnectInterval = 5 * time.Second
	pingInterval      = 90 * time.Second
)

// LedgerChange is the payload of one ledger notification.
type LedgerChange struct {
	TransactionID string `json:"transaction_id"`
	AccountID     string `json:"account_id"`
	CategoryID    string `json:"category_id"`
	Kind          string `json:"kind"`
	Op            string `json:"op"`
}

// Handler processes a decoded ledger change.
type Handler func(ctx context.Context, change LedgerChange) error

// Listener holds a dedicated connection listening on Channel and hands every
// change to a handler.
type Listener struct {
	connStr    string
	handle     Handler
	shutdownCh chan struct{}

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewListener creates a listener for the database at connStr.
func NewListener(connStr string, handle Handler) *Listener {
	return &Listener{
		connStr:    connStr,
		handle:     handle,
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening in a background goroutine.
func (l *Listener) Start(ctx context.Context) {
	ctx = l.begin(ctx)
	done := make(chan struct{})
	l.mu.Lock()
	l.done = done
	l.mu.Unlock()

	go l.listen(ctx, done)
	logger.Named("realtime").Infow("ledger listener started", "channel", Channel)
}

// Stop closes the connection, cancels in-flight handlers and waits for them
// to return. It is safe to call more than once and on a listener that was
// never started.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		close(l.shutdownCh)

		l.mu.Lock()
		done, cancel := l.done, l.cancel
		l.mu.Unlock()

		if done != nil {
			<-done
		}
		if cancel != nil {
			cancel()
		}
		l.wg.Wait()
		logger.Named("realtime").Info("ledger listener stopped")
	})
}

// begin derives the context handlers run under.
func (l *Listener) begin(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()
	return ctx
}

func (l *Listener) listen(ctx context.Context, done chan struct{}) {
	defer close(done)
	log := logger.Named("realtime")

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		default:
			l.connectAndListen(ctx)
		}

		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case <-time.After(reconnectInterval):
			log.Info("reconnecting ledger listener")
		}
	}
}

func (l *Listener) connectAndListen(ctx context.Context) {
	log := logger.Named("realtime")

	listener := pq.NewListener(l.connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			log.Info("connected to notification channel")
		case pq.ListenerEventDisconnected:
			log.Warnw("disconnected from notification channel", "error", err)
		case pq.ListenerEventReconnected:
			log.Info("reconnected to notification channel")
		case pq.ListenerEventConnectionAttemptFailed:
			log.Warnw("connection attempt failed", "error", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(Channel); err != nil {
		log.Errorw("failed to listen", "channel", Channel, "error", err)
		return
	}

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case n := <-listener.Notify:
			if n == nil {
				return
			}
			l.dispatch(ctx, n.Extra)
		case <-time.After(pingInterval):
			l.wg.Add(1)
			go func() {
				defer l.wg.Done()
				if err := listener.Ping(); err != nil {
					log.Warnw("listener ping failed", "error", err)
				}
			}()
		}
	}
}

// dispatch decodes a payload and runs the handler on its own goroutine so a
// slow check never stalls the notification stream.
func (l *Listener) dispatch(ctx context.Context, payload string) {
	log := logger.Named("realtime")

	change, err := Decode(payload)
	if err != nil {
		log.Warnw("failed to parse ledger notification", "payload", payload, "error", err)
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := l.handle(ctx, change); err != nil {
			log.Errorw("ledger change handler failed",
				"transaction_id", change.TransactionID,
				"account_id", change.AccountID,
				"error", err,
			)
		}
	}()
}

// Decode parses a NOTIFY payload.
func Decode(payload string) (LedgerChange, error) {
	var change LedgerChange
	err := json.Unmarshal([]byte(payload), &change)
	return change, err
}
