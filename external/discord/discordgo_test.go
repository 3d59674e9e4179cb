package discord

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/foxseedlab/callinterview/internal/notifier"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestPoster(t *testing.T, rt roundTripFunc) *SummaryPoster {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	s.Client = &http.Client{Transport: rt}
	p := NewSummaryPoster("test-token", "chan-1")
	p.session = s
	return p
}

func TestNotifyInterviewFinished_PostsSummaryFile(t *testing.T) {
	var gotPath string
	var gotBody string
	p := newTestPoster(t, func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		b, _ := io.ReadAll(req.Body)
		gotBody = string(b)
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(strings.NewReader(`{"id":"m1","channel_id":"chan-1"}`)),
			Header:     make(http.Header),
		}, nil
	})

	err := p.NotifyInterviewFinished(context.Background(), notifier.InterviewSummary{
		CallID:        "CA1",
		PhoneNumber:   "+919876543210",
		CallStatus:    "completed",
		QuestionCount: 4,
		AnsweredCount: 3,
		Text:          "Q1: Name?\nA: Asha",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(gotPath, "/channels/chan-1/messages") {
		t.Fatalf("unexpected request path: %s", gotPath)
	}
	for _, want := range []string{"interview-CA1.txt", "Q1: Name?", "3/4 answered"} {
		if !strings.Contains(gotBody, want) {
			t.Fatalf("expected %q in request body: %s", want, gotBody)
		}
	}
}

func TestNotifyInterviewFinished_ReturnsRESTError(t *testing.T) {
	p := newTestPoster(t, func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Status:     "403 Forbidden",
			Body:       io.NopCloser(strings.NewReader(`{"message":"Missing Access","code":50001}`)),
			Header:     make(http.Header),
		}, nil
	})

	if err := p.NotifyInterviewFinished(context.Background(), notifier.InterviewSummary{CallID: "CA1"}); err == nil {
		t.Fatal("expected error")
	}
}
