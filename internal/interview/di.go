package interview

import (
	"time"

	"github.com/foxseedlab/callinterview/internal/callock"
	"github.com/foxseedlab/callinterview/internal/config"
	"github.com/foxseedlab/callinterview/internal/instruction"
	"github.com/foxseedlab/callinterview/internal/metrics"
	"github.com/foxseedlab/callinterview/internal/notifier"
	"github.com/foxseedlab/callinterview/internal/phone"
	"github.com/foxseedlab/callinterview/internal/provider"
	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/foxseedlab/callinterview/internal/transcript"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Engine, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		locker := do.MustInvoke[callock.Locker](i)
		fetcher := do.MustInvoke[*transcript.Fetcher](i)
		n := do.MustInvoke[notifier.Notifier](i)
		m := do.MustInvoke[*metrics.Metrics](i)
		return NewEngine(NewSettings(cfg), repo, locker, fetcher, n, m), nil
	})
	do.Provide(injector, func(i do.Injector) (*Initiator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		p := do.MustInvoke[provider.Provider](i)
		engine := do.MustInvoke[*Engine](i)
		m := do.MustInvoke[*metrics.Metrics](i)
		return NewInitiator(InitiatorSettings{
			FromNumber:  cfg.TwilioPhoneNumber,
			RecordCall:  cfg.TwilioRecordCall,
			CallbackURL: cfg.CallbackURL,
		}, p, phone.NewNormalizer(cfg.CountryCode, cfg.LocalNumberLength), engine, m), nil
	})
}

func NewSettings(cfg *config.Config) Settings {
	loc, err := time.LoadLocation(cfg.TranscriptTimezone)
	if err != nil {
		loc = time.UTC
	}
	capture := instruction.CaptureRecord
	if cfg.CaptureMode == config.CaptureModeSpeech {
		capture = instruction.CaptureSpeech
	}
	return Settings{
		Questions:          cfg.Questions,
		Capture:            capture,
		AnswerTimeoutSec:   cfg.AnswerTimeoutSec,
		RecordMaxLengthSec: cfg.RecordMaxLengthSec,
		Language:           cfg.SpeechLanguage,
		Voice:              cfg.Voice,
		ProviderTranscribe: cfg.ProviderTranscribe,
		GreetingMessage:    cfg.GreetingMessage,
		ClosingMessage:     cfg.ClosingMessage,
		ApologyMessage:     cfg.ApologyMessage,
		Timezone:           cfg.TranscriptTimezone,
		Location:           loc,
		CallbackURL:        cfg.CallbackURL,
	}
}
