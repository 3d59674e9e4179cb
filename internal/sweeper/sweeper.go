package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxseedlab/callinterview/internal/interview"
	"github.com/robfig/cron/v3"
)

const runTimeout = 30 * time.Minute

type PendingSweeper interface {
	SweepPendingTranscripts(ctx context.Context) (interview.SweepReport, error)
}

// Scheduler re-fetches pending transcripts on a cron schedule. A run that is
// still going when the next one is due makes the next one skip.
type Scheduler struct {
	schedule string
	sweeper  PendingSweeper
	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
}

// New returns a scheduler for schedule. An empty schedule gives a scheduler
// whose Start and Stop do nothing.
func New(schedule string, s PendingSweeper) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sch := &Scheduler{
		schedule: schedule,
		sweeper:  s,
		ctx:      ctx,
		cancel:   cancel,
	}
	if schedule == "" {
		return sch, nil
	}

	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo))
	sch.cron = cron.New(cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))
	if _, err := sch.cron.AddFunc(schedule, func() { sch.RunOnce(sch.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid transcript sweep schedule %q: %w", schedule, err)
	}
	return sch, nil
}

func (s *Scheduler) Enabled() bool {
	return s.cron != nil
}

func (s *Scheduler) Start() {
	if s.cron == nil {
		slog.Info("transcript sweeper disabled")
		return
	}
	slog.Info("transcript sweeper started", "schedule", s.schedule)
	s.cron.Start()
}

// Stop cancels the running sweep and waits for it to return or for ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	if s.cron == nil {
		return
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("transcript sweeper did not stop in time")
	}
}

func (s *Scheduler) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	startedAt := time.Now()
	report, err := s.sweeper.SweepPendingTranscripts(runCtx)
	if err != nil {
		slog.Error("transcript sweep failed", "error", err, "checked", report.Checked)
		return
	}
	slog.Debug("transcript sweep run finished", "checked", report.Checked, "elapsed", time.Since(startedAt))
}
