package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CallStarted(true)
	m.QuestionAsked()
	m.AnswerCaptured("record")
	m.CallbackReplayed()
	m.InterviewFinished()
	m.TranscriptApplied("completed", "provider")
	m.Webhook("answer", "200")
	m.Notification(false)
	if m.Registry() != nil {
		t.Fatal("expected nil registry")
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.CallStarted(true)
	m.CallStarted(false)
	m.CallStarted(true)
	m.TranscriptApplied("completed", "speech")

	if got := testutil.ToFloat64(m.callsStarted.WithLabelValues("ok")); got != 2 {
		t.Fatalf("expected 2 ok calls, got %v", got)
	}
	if got := testutil.ToFloat64(m.transcripts.WithLabelValues("completed", "speech")); got != 1 {
		t.Fatalf("expected 1 speech transcript, got %v", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.QuestionAsked()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "callinterview_questions_asked_total 1") {
		t.Fatalf("counter not exposed:\n%s", body)
	}
}
