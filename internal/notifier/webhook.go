package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/michiganelections/ballot-scraper/internal/logger"
)

const (
	DefaultWebhookBuffer  = 64
	DefaultWebhookTimeout = 10 * time.Second
	webhookMaxRetries     = 3
)

// WebhookNotifier posts notifications as JSON to an HTTP endpoint from a
// background goroutine. Notify never blocks: when the buffer is full or the
// notifier is closed the notification is dropped and counted under
// "notify.dropped".
type WebhookNotifier struct {
	url     string
	client  *http.Client
	queue   chan Notification
	metrics *logger.Metrics
	backoff func() backoff.BackOff

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookNotifier) { w.client = c }
}

// WithBuffer sets the queue capacity.
func WithBuffer(size int) WebhookOption {
	return func(w *WebhookNotifier) {
		if size > 0 {
			w.queue = make(chan Notification, size)
		}
	}
}

// WithMetrics records delivery counters on m instead of the default tracker.
func WithMetrics(m *logger.Metrics) WebhookOption {
	return func(w *WebhookNotifier) { w.metrics = m }
}

// WithRetryInterval sets the constant delay between delivery attempts.
func WithRetryInterval(d time.Duration) WebhookOption {
	return func(w *WebhookNotifier) {
		w.backoff = func() backoff.BackOff { return backoff.NewConstantBackOff(d) }
	}
}

// NewWebhookNotifier starts the delivery goroutine. Call Close to flush.
func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	w := &WebhookNotifier{
		url:     url,
		client:  &http.Client{Timeout: DefaultWebhookTimeout},
		queue:   make(chan Notification, DefaultWebhookBuffer),
		metrics: logger.NewMetrics(),
		backoff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.run()
	return w
}

// Notify queues the notification for delivery.
func (w *WebhookNotifier) Notify(event string, fields logger.Fields) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.metrics.IncrCounter("notify.dropped")
		return
	}
	select {
	case w.queue <- newNotification(event, fields):
	default:
		w.metrics.IncrCounter("notify.dropped")
	}
}

// Close stops accepting notifications and waits until the queue is drained
// or ctx expires.
func (w *WebhookNotifier) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *WebhookNotifier) run() {
	defer close(w.done)
	for n := range w.queue {
		if err := w.deliver(n); err != nil {
			w.metrics.IncrCounter("notify.failed")
			logger.Error("Webhook delivery failed", logger.Fields{"event": n.Event, "id": n.ID}, err)
			continue
		}
		w.metrics.IncrCounter("notify.delivered")
	}
}

func (w *WebhookNotifier) deliver(n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("encoding notification: %w", err))
	}

	op := func() error {
		req, err := http.NewRequest(http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			return fmt.Errorf("posting notification: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("webhook returned status %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("webhook returned status %d", resp.StatusCode))
		}
		return nil
	}

	return backoff.Retry(op, backoff.WithMaxRetries(w.backoff(), webhookMaxRetries))
}

// Metrics returns the delivery counters.
func (w *WebhookNotifier) Metrics() *logger.Metrics {
	return w.metrics
}
