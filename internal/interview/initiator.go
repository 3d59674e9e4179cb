package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/foxseedlab/callinterview/internal/metrics"
	"github.com/foxseedlab/callinterview/internal/phone"
	"github.com/foxseedlab/callinterview/internal/provider"
	"github.com/foxseedlab/callinterview/internal/repository"
)

type InitiatorSettings struct {
	FromNumber  string
	RecordCall  bool
	CallbackURL func(path string) string
}

// Initiator places outbound interview calls.
type Initiator struct {
	provider   provider.Provider
	normalizer phone.Normalizer
	settings   InitiatorSettings
	metrics    *metrics.Metrics
	engine     *Engine
}

func NewInitiator(settings InitiatorSettings, p provider.Provider, normalizer phone.Normalizer, engine *Engine, m *metrics.Metrics) *Initiator {
	return &Initiator{
		provider:   p,
		normalizer: normalizer,
		settings:   settings,
		metrics:    m,
		engine:     engine,
	}
}

// Start normalizes the number, asks the provider to call it and stores the
// first question. Nothing is stored when the provider rejects the call.
func (i *Initiator) Start(ctx context.Context, rawNumber string) (string, error) {
	to, err := i.normalizer.Normalize(rawNumber)
	if err != nil {
		return "", err
	}

	callID, err := i.provider.CreateCall(ctx, provider.CreateCallInput{
		To:                   to,
		From:                 i.settings.FromNumber,
		AnswerURL:            i.settings.CallbackURL(AnswerCallbackPath),
		StatusCallbackURL:    i.settings.CallbackURL(StatusCallbackPath),
		StatusCallbackEvents: statusCallbackEvents,
		Record:               i.settings.RecordCall,
	})
	if err != nil {
		i.metrics.CallStarted(false)
		slog.Error("failed to create call", "error", err, "to", to)
		return "", err
	}
	i.metrics.CallStarted(true)
	slog.Info("call created", "call_id", callID, "to", to)

	err = i.engine.withCallLock(ctx, callID, func(ctx context.Context) error {
		existing, err := i.engine.repo.ListResponsesByCallID(ctx, callID)
		if err != nil {
			return fmt.Errorf("list responses: %w", err)
		}
		if len(existing) > 0 {
			slog.Info("first question already stored by answer callback", "call_id", callID)
			return nil
		}
		_, err = i.engine.createQuestion(ctx, callID, to, 0, repository.CallStatusInitiated)
		if errors.Is(err, repository.ErrDuplicateQuestion) {
			return nil
		}
		return err
	})
	if err != nil {
		return callID, fmt.Errorf("store first question for call %s: %w", callID, err)
	}
	return callID, nil
}
