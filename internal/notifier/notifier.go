package notifier

import (
	"time"

	"github.com/google/uuid"
	"github.com/michiganelections/ballot-scraper/internal/logger"
)

// Event names emitted by the parsers.
const (
	EventRecentlyMoved = "registration.recently_moved"
	EventRepeatedText  = "text.repeated"
)

// Notifier defines the telemetry sink for parser diagnostics.
type Notifier interface {
	// Notify records a diagnostic. It must return promptly.
	Notify(event string, fields logger.Fields)
}

// Notification is a single diagnostic as delivered to a sink.
type Notification struct {
	ID         string        `json:"id"`
	Event      string        `json:"event"`
	Fields     logger.Fields `json:"fields,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func newNotification(event string, fields logger.Fields) Notification {
	return Notification{
		ID:         uuid.NewString(),
		Event:      event,
		Fields:     fields,
		OccurredAt: time.Now().UTC(),
	}
}

// Nop discards every notification.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(string, logger.Fields) {}

// Multi fans a notification out to several sinks.
type Multi []Notifier

// Notify forwards to every sink in order.
func (m Multi) Notify(event string, fields logger.Fields) {
	for _, n := range m {
		n.Notify(event, fields)
	}
}
