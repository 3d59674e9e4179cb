package notifier

import (
	"context"
	"errors"
	"testing"
)

type recordingNotifier struct {
	got []InterviewSummary
	err error
}

func (n *recordingNotifier) NotifyInterviewFinished(_ context.Context, s InterviewSummary) error {
	n.got = append(n.got, s)
	return n.err
}

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	errA := errors.New("webhook down")
	a := &recordingNotifier{err: errA}
	b := &recordingNotifier{}

	err := Multi{a, b}.NotifyInterviewFinished(context.Background(), InterviewSummary{CallID: "CA1"})
	if !errors.Is(err, errA) {
		t.Fatalf("expected joined error to contain errA, got %v", err)
	}
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Fatalf("expected both notifiers to run, got %d and %d", len(a.got), len(b.got))
	}
}

func TestMulti_Empty(t *testing.T) {
	if err := (Multi{}).NotifyInterviewFinished(context.Background(), InterviewSummary{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
