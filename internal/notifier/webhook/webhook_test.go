package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/sigtrail/internal/notifier"
)

func TestWebhook_ImplementsNotifier(t *testing.T) {
	var _ notifier.Notifier = (*Webhook)(nil)
}

func TestWebhook_Name(t *testing.T) {
	w, _ := New(Config{URL: "http://example.com/hook"})
	if w.Name() != "webhook" {
		t.Errorf("expected 'webhook', got %s", w.Name())
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing URL")
	}
}

func TestWebhook_Notify(t *testing.T) {
	var receivedPayload map[string]any
	var receivedHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedHeader = r.Header.Get("X-Token")
		json.NewDecoder(r.Body).Decode(&receivedPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w, err := New(Config{URL: server.URL, Headers: map[string]string{"X-Token": "t"}})
	if err != nil {
		t.Fatal(err)
	}

	event := notifier.Event{
		JobID:      "job-1",
		Status:     "complete",
		Signals:    3,
		Report:     "reports/x.csv",
		FinishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := w.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if receivedPayload["type"] != "job" {
		t.Errorf("expected type 'job', got %v", receivedPayload["type"])
	}
	if receivedPayload["job_id"] != "job-1" {
		t.Errorf("expected job_id 'job-1', got %v", receivedPayload["job_id"])
	}
	if receivedPayload["signals"] != float64(3) {
		t.Errorf("expected 3 signals, got %v", receivedPayload["signals"])
	}
	if _, ok := receivedPayload["error"]; ok {
		t.Error("error should be omitted when empty")
	}
	if receivedHeader != "t" {
		t.Errorf("expected custom header, got %q", receivedHeader)
	}
}

func TestWebhook_Notify_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	w, _ := New(Config{URL: server.URL})
	if err := w.Notify(context.Background(), notifier.Event{JobID: "x"}); err == nil {
		t.Error("expected error for 500 response")
	}
}
