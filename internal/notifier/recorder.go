package notifier

import (
	"sync"

	"github.com/michiganelections/ballot-scraper/internal/logger"
)

// Recorder keeps notifications in memory. It is used by the CLI to summarize a
// run and by tests to assert on diagnostics.
type Recorder struct {
	mu     sync.Mutex
	events []Notification
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify appends the notification.
func (r *Recorder) Notify(event string, fields logger.Fields) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, newNotification(event, fields))
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many notifications named event were recorded.
func (r *Recorder) Count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Event == event {
			n++
		}
	}
	return n
}
