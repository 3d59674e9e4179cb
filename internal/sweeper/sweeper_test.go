package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foxseedlab/callinterview/internal/interview"
)

type mockSweeper struct {
	runs atomic.Int32
	err  error
}

func (m *mockSweeper) SweepPendingTranscripts(ctx context.Context) (interview.SweepReport, error) {
	m.runs.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return interview.SweepReport{}, errors.New("sweep context has no deadline")
	}
	return interview.SweepReport{Checked: 1}, m.err
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal(message)
}

func TestNew_EmptyScheduleDisables(t *testing.T) {
	m := &mockSweeper{}
	s, err := New("", m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Enabled() {
		t.Fatal("empty schedule should disable the sweeper")
	}
	s.Start()
	s.Stop(context.Background())
	if m.runs.Load() != 0 {
		t.Fatal("disabled sweeper must not run")
	}
}

func TestNew_InvalidSchedule(t *testing.T) {
	if _, err := New("every now and then", &mockSweeper{}); err == nil {
		t.Fatal("expected an error for an invalid schedule")
	}
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	m := &mockSweeper{}
	s, err := New("@every 1s", m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Start()
	defer s.Stop(context.Background())

	waitUntil(t, 3*time.Second, func() bool { return m.runs.Load() >= 1 }, "sweeper did not run")
}

func TestRunOnce_ToleratesErrors(t *testing.T) {
	m := &mockSweeper{err: errors.New("store down")}
	s, err := New("", m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.RunOnce(context.Background())
	if m.runs.Load() != 1 {
		t.Fatalf("expected one run, got %d", m.runs.Load())
	}
}
