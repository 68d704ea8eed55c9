package observability

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSlackNotifier_NoAlerts(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	err := n.Notify(nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if called {
		t.Fatal("expected no HTTP request for empty alerts")
	}

	err = n.Notify([]Alert{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if called {
		t.Fatal("expected no HTTP request for empty alerts slice")
	}
}

func TestSlackNotifier_SendsAlerts(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		var err error
		receivedBody, err = io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("reading request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	alerts := []Alert{
		{
			ID:          "stale-1001",
			Condition:   "stale_todo",
			Severity:    SeverityHigh,
			Message:     "todo 1001 \"water plants\" has been open for more than 7 days",
			TriggeredAt: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:          "too-many-active",
			Condition:   "too_many_active",
			Severity:    SeverityMedium,
			Message:     "52 todos are open, exceeding the maximum of 50",
			TriggeredAt: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		},
	}

	err := n.Notify(alerts)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if receivedContentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", receivedContentType)
	}

	var msg slackMessage
	if err := json.Unmarshal(receivedBody, &msg); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}

	// Expect: header + section(alert1) + divider + section(alert2) = 4 blocks
	if len(msg.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(msg.Blocks))
	}

	if msg.Blocks[0].Type != "header" {
		t.Errorf("expected first block type header, got %s", msg.Blocks[0].Type)
	}
	if msg.Blocks[0].Text == nil || msg.Blocks[0].Text.Text != "todo Alert Summary" {
		t.Errorf("expected header text 'todo Alert Summary', got %v", msg.Blocks[0].Text)
	}

	if msg.Blocks[1].Type != "section" {
		t.Errorf("expected second block type section, got %s", msg.Blocks[1].Type)
	}

	if msg.Blocks[2].Type != "divider" {
		t.Errorf("expected third block type divider, got %s", msg.Blocks[2].Type)
	}

	if msg.Blocks[3].Type != "section" {
		t.Errorf("expected fourth block type section, got %s", msg.Blocks[3].Type)
	}

	// Verify alert content is present in the section blocks
	body := string(receivedBody)
	if !strings.Contains(body, "water plants") {
		t.Error("expected body to contain the stale todo text")
	}
	if !strings.Contains(body, "52 todos") {
		t.Error("expected body to contain the active count")
	}
	if !strings.Contains(body, "2025-01-15 10:30 UTC") {
		t.Error("expected body to contain triggered time")
	}
}

func TestSlackNotifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	alerts := []Alert{
		{
			ID:          "test-alert",
			Condition:   "stale_todo",
			Severity:    SeverityHigh,
			Message:     "test alert",
			TriggeredAt: time.Now().UTC(),
		},
	}

	err := n.Notify(alerts)
	if err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("expected error to contain status code 500, got: %s", err.Error())
	}
}

func TestSlackNotifier_SeverityEmojis(t *testing.T) {
	tests := []struct {
		severity AlertSeverity
		emoji    string
	}{
		{SeverityHigh, "\U0001f534"},
		{SeverityMedium, "\U0001f7e1"},
		{SeverityLow, "\U0001f535"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			var receivedBody []byte
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var err error
				receivedBody, err = io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("reading request body: %v", err)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			n := NewSlackNotifier(srv.URL)
			alerts := []Alert{
				{
					ID:          "emoji-test",
					Condition:   "test",
					Severity:    tt.severity,
					Message:     "test message",
					TriggeredAt: time.Now().UTC(),
				},
			}

			err := n.Notify(alerts)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			body := string(receivedBody)
			if !strings.Contains(body, tt.emoji) {
				t.Errorf("expected body to contain emoji %s for severity %s", tt.emoji, tt.severity)
			}
		})
	}
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) Notify(alerts []Alert) error {
	r.calls++
	return r.err
}

func TestMultiNotifier_CallsAllAndReturnsFirstError(t *testing.T) {
	first := &recordingNotifier{err: errors.New("first failed")}
	second := &recordingNotifier{err: errors.New("second failed")}
	third := &recordingNotifier{}

	n := NewMultiNotifier(first, nil, second, third)
	err := n.Notify([]Alert{{ID: "a"}})
	if err == nil || err.Error() != "first failed" {
		t.Fatalf("expected first error, got %v", err)
	}
	for i, r := range []*recordingNotifier{first, second, third} {
		if r.calls != 1 {
			t.Errorf("notifier %d called %d times, want 1", i, r.calls)
		}
	}
}

func TestMultiNotifier_Empty(t *testing.T) {
	if err := NewMultiNotifier().Notify([]Alert{{ID: "a"}}); err != nil {
		t.Errorf("expected nil error from empty notifier, got %v", err)
	}
}
