package sweeper

import (
	"github.com/foxseedlab/callinterview/internal/config"
	"github.com/foxseedlab/callinterview/internal/interview"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		engine := do.MustInvoke[*interview.Engine](i)
		return New(cfg.TranscriptSweepCron, engine)
	})
}
