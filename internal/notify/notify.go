// Package notify delivers user-visible failure notices. A failed job
// submission must reach the user directly rather than be inferred from the
// absence of new results.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/config"
)

// Kind identifies what failed.
type Kind string

const (
	KindSubmitFailed Kind = "submit_failed"
	KindLoadFailed   Kind = "load_failed"
	KindRejected     Kind = "submit_rejected"
)

// Notice is a single failure message for the user.
type Notice struct {
	Kind         Kind      `json:"kind"`
	Message      string    `json:"message"`
	Detail       string    `json:"detail,omitempty"`
	SubmissionID string    `json:"submission_id,omitempty"`
	Transient    bool      `json:"transient"`
	Timestamp    time.Time `json:"timestamp"`
}

// Notifier delivers notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notice) error {
	return f(ctx, n)
}

// Log writes notices to the global zap logger.
type Log struct{}

// Notify logs n at warn level.
func (Log) Notify(_ context.Context, n Notice) error {
	zap.L().Warn("notify: "+n.Message,
		zap.String("kind", string(n.Kind)),
		zap.String("detail", n.Detail),
		zap.String("submission_id", n.SubmissionID),
		zap.Bool("transient", n.Transient),
	)
	return nil
}

// Writer prints notices as plain lines, e.g. to a terminal's stderr.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a Writer notifier.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Notify writes one line for n.
func (wn *Writer) Notify(_ context.Context, n Notice) error {
	wn.mu.Lock()
	defer wn.mu.Unlock()

	line := n.Message
	if n.Detail != "" {
		line += " (" + n.Detail + ")"
	}
	if _, err := fmt.Fprintln(wn.w, line); err != nil {
		return eris.Wrap(err, "notify: write notice")
	}
	return nil
}

// Latest keeps the most recent notice so a page can show it on next render.
type Latest struct {
	mu sync.Mutex
	n  *Notice
}

// Notify stores n, replacing any previous notice.
func (l *Latest) Notify(_ context.Context, n Notice) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.n = &n
	return nil
}

// Take returns the stored notice and clears it.
func (l *Latest) Take() (Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.n == nil {
		return Notice{}, false
	}
	n := *l.n
	l.n = nil
	return n, true
}

// Webhook posts notices as JSON to a configured URL.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook notifier for cfg. It returns nil when no URL
// is configured.
func NewWebhook(cfg config.NotifyConfig) *Webhook {
	if cfg.WebhookURL == "" {
		return nil
	}
	return &Webhook{
		url:    cfg.WebhookURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify posts n to the webhook. A nil Webhook discards the notice.
func (w *Webhook) Notify(ctx context.Context, n Notice) error {
	if w == nil {
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return eris.Wrap(err, "notify: marshal notice")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "notify: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "notify: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("notify: webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Multi fans a notice out to every notifier. Delivery failures are logged and
// do not stop the others; the first error is returned.
type Multi []Notifier

// Notify delivers n to each non-nil notifier.
func (m Multi) Notify(ctx context.Context, n Notice) error {
	var first error
	for _, nt := range m {
		if nt == nil {
			continue
		}
		if err := nt.Notify(ctx, n); err != nil {
			zap.L().Error("notify: delivery failed",
				zap.String("kind", string(n.Kind)),
				zap.Error(err),
			)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
