package httpapi

import (
	"log/slog"

	"github.com/foxseedlab/callinterview/internal/config"
	"github.com/foxseedlab/callinterview/internal/instruction"
	"github.com/foxseedlab/callinterview/internal/interview"
	"github.com/foxseedlab/callinterview/internal/metrics"
	"github.com/foxseedlab/callinterview/internal/provider"
	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		opts := Options{
			Development: cfg.IsDevelopment(),
			Interviews:  do.MustInvoke[*interview.Engine](i),
			Calls:       do.MustInvoke[*interview.Initiator](i),
			Responses:   do.MustInvoke[repository.Repository](i),
			Renderer:    do.MustInvoke[instruction.Renderer](i),
			CallbackURL: cfg.CallbackURL,
			Location:    interview.NewSettings(cfg).Location,
			Metrics:     do.MustInvoke[*metrics.Metrics](i),
		}
		if cfg.TwilioValidateSignature {
			opts.Validator = do.MustInvoke[provider.SignatureValidator](i)
		} else {
			slog.Warn("webhook signature validation is disabled")
		}
		return NewServer(opts), nil
	})
}
