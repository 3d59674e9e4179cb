package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foxseedlab/callinterview/internal/notifier"
)

func TestNotifyInterviewFinished_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.NotifyInterviewFinished(context.Background(), notifier.InterviewSummary{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestNotifyInterviewFinished_Success(t *testing.T) {
	var got notifier.InterviewSummary

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		if v := r.Header.Get("X-Interview-Schema"); v != notifier.SummarySchemaVersion {
			t.Errorf("unexpected schema header: %q", v)
		}
		if v := r.Header.Get("X-Interview-Call-ID"); v != "CA1" {
			t.Errorf("unexpected call id header: %q", v)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	err := sender.NotifyInterviewFinished(context.Background(), notifier.InterviewSummary{
		SchemaVersion: notifier.SummarySchemaVersion,
		CallID:        "CA1",
		PhoneNumber:   "+919876543210",
		Answers: []notifier.SummaryAnswer{
			{QuestionIndex: 0, Question: "Name?", Transcript: "Asha", TranscriptStatus: "completed"},
		},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.CallID != "CA1" || len(got.Answers) != 1 || got.Answers[0].Transcript != "Asha" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestNotifyInterviewFinished_Non2xx(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	sender.retryDelay = time.Millisecond
	if err := sender.NotifyInterviewFinished(context.Background(), notifier.InterviewSummary{}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("client errors must not be retried, got %d requests", got)
	}
}

func TestNotifyInterviewFinished_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	sender.retryDelay = time.Millisecond
	if err := sender.NotifyInterviewFinished(context.Background(), notifier.InterviewSummary{CallID: "CA1"}); err != nil {
		t.Fatalf("expected delivery after retries, got %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("expected 3 requests, got %d", got)
	}
}

func TestNotifyInterviewFinished_GivesUpAfterMaxAttempts(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	sender.retryDelay = time.Millisecond
	if err := sender.NotifyInterviewFinished(context.Background(), notifier.InterviewSummary{CallID: "CA1"}); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := hits.Load(); got != maxDeliveryAttempt {
		t.Fatalf("expected %d requests, got %d", maxDeliveryAttempt, got)
	}
}
