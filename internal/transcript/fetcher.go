package transcript

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/foxseedlab/callinterview/internal/provider"
	"github.com/foxseedlab/callinterview/internal/repository"
)

const (
	SourceProvider = "provider"
	SourceSpeech   = "speech"
)

// Recognizer turns recorded audio into text. It is only consulted when the
// provider could not produce a transcript.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte, language string) (string, error)
}

type Result struct {
	Status   repository.TranscriptStatus
	Text     string
	Attempts int
	Source   string
}

type Options struct {
	MaxRetries int
	RetryDelay time.Duration
	// ProviderTranscribes is set when the provider was asked to transcribe
	// recordings. Without it a finished recording with no transcription will
	// never get one.
	ProviderTranscribes bool
	Recognizer          Recognizer
	Language            string
}

type Fetcher struct {
	provider provider.Provider
	opts     Options
}

func NewFetcher(p provider.Provider, opts Options) *Fetcher {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	return &Fetcher{provider: p, opts: opts}
}

type observation int

const (
	observedFailed observation = iota
	observedPending
	observedCompleted
)

// Fetch polls the provider for the recording's transcript. It never returns an
// error: provider failures count as attempts and the outcome is reported as
// pending or failed.
func (f *Fetcher) Fetch(ctx context.Context, recordingID string) Result {
	res := Result{Status: repository.TranscriptStatusFailed, Source: SourceProvider}
	lastPending := false

attempts:
	for attempt := 1; attempt <= f.opts.MaxRetries; attempt++ {
		res.Attempts = attempt
		obs, text, err := f.observe(ctx, recordingID)
		if err != nil {
			slog.Warn("transcript fetch attempt failed", "error", err, "recording_id", recordingID, "attempt", attempt)
		} else {
			switch obs {
			case observedCompleted:
				res.Status = repository.TranscriptStatusCompleted
				res.Text = text
				return res
			case observedFailed:
				lastPending = false
				break attempts
			case observedPending:
				lastPending = true
			}
		}

		if attempt == f.opts.MaxRetries {
			break
		}
		if !sleep(ctx, f.opts.RetryDelay) {
			slog.Info("transcript fetch interrupted", "recording_id", recordingID, "attempt", attempt)
			break
		}
	}

	if lastPending {
		res.Status = repository.TranscriptStatusPending
		return res
	}
	if f.opts.Recognizer != nil && ctx.Err() == nil {
		if text, ok := f.recognize(ctx, recordingID); ok {
			res.Status = repository.TranscriptStatusCompleted
			res.Text = text
			res.Source = SourceSpeech
		}
	}
	return res
}

func (f *Fetcher) observe(ctx context.Context, recordingID string) (observation, string, error) {
	list, err := f.provider.ListTranscriptions(ctx, recordingID)
	if err != nil {
		return observedFailed, "", err
	}
	failed := false
	inProgress := false
	for _, t := range list {
		switch t.Status {
		case provider.TranscriptionStatusCompleted:
			return observedCompleted, t.Text, nil
		case provider.TranscriptionStatusFailed:
			failed = true
		default:
			inProgress = true
		}
	}
	if failed && !inProgress {
		return observedFailed, "", nil
	}

	rec, err := f.provider.FetchRecording(ctx, recordingID)
	if err != nil {
		return observedFailed, "", err
	}
	switch rec.Status {
	case provider.RecordingStatusProcessing:
		return observedPending, "", nil
	case provider.RecordingStatusCompleted:
		if inProgress || f.opts.ProviderTranscribes {
			return observedPending, "", nil
		}
		return observedFailed, "", nil
	default:
		return observedFailed, "", nil
	}
}

func (f *Fetcher) recognize(ctx context.Context, recordingID string) (string, bool) {
	audio, err := f.provider.DownloadRecording(ctx, recordingID)
	if err != nil {
		slog.Warn("failed to download recording for speech fallback", "error", err, "recording_id", recordingID)
		return "", false
	}
	text, err := f.opts.Recognizer.Recognize(ctx, audio, f.opts.Language)
	if err != nil {
		slog.Warn("speech fallback failed", "error", err, "recording_id", recordingID)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	slog.Info("speech fallback produced transcript", "recording_id", recordingID, "chars", len(text))
	return text, true
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
