package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/michiganelections/ballot-scraper/internal/logger"
)

func TestRecorder_ConcurrentNotify(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			event := EventRepeatedText
			if n%2 == 0 {
				event = EventRecentlyMoved
			}
			r.Notify(event, logger.Fields{"n": n})
		}(i)
	}
	wg.Wait()

	if got := len(r.Events()); got != 50 {
		t.Fatalf("recorded %d events, want 50", got)
	}
	if got := r.Count(EventRecentlyMoved); got != 25 {
		t.Errorf("Count(recently_moved) = %d, want 25", got)
	}

	seen := make(map[string]bool)
	for _, e := range r.Events() {
		if e.ID == "" || seen[e.ID] {
			t.Fatalf("notification ID %q missing or duplicated", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	Multi{a, Nop{}, b}.Notify(EventRepeatedText, nil)

	if a.Count(EventRepeatedText) != 1 || b.Count(EventRepeatedText) != 1 {
		t.Error("Multi did not forward to every sink")
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	metrics := logger.NewMetrics()
	n := NewLogNotifier(logger.New(logger.LevelInfo, &buf), metrics)

	n.Notify(EventRecentlyMoved, logger.Fields{"voter": "Jane Doe"})

	var entry logger.LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry.Level != string(logger.LevelWarn) {
		t.Errorf("Level = %s, want WARN", entry.Level)
	}
	if entry.Fields["event"] != EventRecentlyMoved {
		t.Errorf("event field = %v", entry.Fields["event"])
	}
	if metrics.Counter("notify."+EventRecentlyMoved) != 1 {
		t.Error("notification was not counted")
	}
}

func TestWebhookNotifier_Delivers(t *testing.T) {
	var (
		mu       sync.Mutex
		received []Notification
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		var n Notification
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		mu.Lock()
		received = append(received, n)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	w := NewWebhookNotifier(server.URL)
	w.Notify(EventRepeatedText, logger.Fields{"span": "the"})
	w.Notify(EventRecentlyMoved, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d notifications, want 2", len(received))
	}
	if received[0].Event != EventRepeatedText || received[0].Fields["span"] != "the" {
		t.Errorf("first notification = %+v", received[0])
	}
	if w.Metrics().Counter("notify.delivered") != 2 {
		t.Errorf("delivered counter = %d", w.Metrics().Counter("notify.delivered"))
	}
}

func TestWebhookNotifier_RetriesServerErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w := NewWebhookNotifier(server.URL, WithRetryInterval(time.Millisecond))
	w.Notify(EventRepeatedText, nil)
	if err := w.Close(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if w.Metrics().Counter("notify.delivered") != 1 {
		t.Error("notification should be delivered after retries")
	}
}

func TestWebhookNotifier_ClientErrorIsPermanent(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer server.Close()

	var logs bytes.Buffer
	previous := logger.Default()
	logger.SetDefault(logger.New(logger.LevelInfo, &logs))
	defer logger.SetDefault(previous)

	w := NewWebhookNotifier(server.URL, WithRetryInterval(time.Millisecond))
	w.Notify(EventRepeatedText, nil)
	if err := w.Close(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
	if w.Metrics().Counter("notify.failed") != 1 {
		t.Error("failed counter not incremented")
	}
	if !strings.Contains(logs.String(), "Webhook delivery failed") {
		t.Error("delivery failure was not logged")
	}
}

func TestWebhookNotifier_DropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()

	w := NewWebhookNotifier(server.URL, WithBuffer(1))
	for i := 0; i < 10; i++ {
		w.Notify(EventRepeatedText, nil)
	}
	close(block)

	if err := w.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if w.Metrics().Counter("notify.dropped") == 0 {
		t.Error("expected some notifications to be dropped")
	}
}

func TestWebhookNotifier_NotifyAfterClose(t *testing.T) {
	var received int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&received, 1)
	}))
	defer server.Close()

	w := NewWebhookNotifier(server.URL)
	if err := w.Close(context.Background()); err != nil {
		t.Fatal(err)
	}

	w.Notify(EventRepeatedText, logger.Fields{"span": "late"})
	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if got := w.Metrics().Counter("notify.dropped"); got != 1 {
		t.Errorf("notify.dropped = %d, want 1", got)
	}
	if got := atomic.LoadInt32(&received); got != 0 {
		t.Errorf("server received %d notifications, want 0", got)
	}
}
