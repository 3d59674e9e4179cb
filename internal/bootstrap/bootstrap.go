package bootstrap

import (
	"io"
	"log/slog"

	callockimpl "github.com/foxseedlab/callinterview/external/callock"
	discordimpl "github.com/foxseedlab/callinterview/external/discord"
	providerimpl "github.com/foxseedlab/callinterview/external/provider"
	repositoryimpl "github.com/foxseedlab/callinterview/external/repository"
	transcriberimpl "github.com/foxseedlab/callinterview/external/transcriber"
	webhookimpl "github.com/foxseedlab/callinterview/external/webhook"
	"github.com/foxseedlab/callinterview/internal/config"
	"github.com/foxseedlab/callinterview/internal/httpapi"
	"github.com/foxseedlab/callinterview/internal/interview"
	"github.com/foxseedlab/callinterview/internal/metrics"
	"github.com/foxseedlab/callinterview/internal/notifier"
	"github.com/foxseedlab/callinterview/internal/provider"
	"github.com/foxseedlab/callinterview/internal/sweeper"
	"github.com/foxseedlab/callinterview/internal/transcript"
	"github.com/samber/do/v2"
)

// InitLogger installs the JSON logger as the default, at debug level in
// development.
func InitLogger(cfg *config.Config, w io.Writer) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel})))
}

// NewInjector registers every component of the service. Nothing is built
// until it is first invoked.
func NewInjector(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, metrics.New())
	repositoryimpl.RegisterDI(injector)
	callockimpl.RegisterDI(injector)
	providerimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	discordimpl.RegisterDI(injector)
	do.Provide(injector, newTranscriptFetcher)
	do.Provide(injector, newNotifier)
	interview.RegisterDI(injector)
	sweeper.RegisterDI(injector)
	httpapi.RegisterDI(injector)

	return injector
}

func newTranscriptFetcher(i do.Injector) (*transcript.Fetcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	opts := transcript.Options{
		MaxRetries:          cfg.TranscriptMaxRetry,
		RetryDelay:          cfg.TranscriptRetryWait,
		ProviderTranscribes: cfg.ProviderTranscribe,
		Language:            cfg.SpeechLanguage,
	}
	if cfg.SpeechFallbackEnabled() {
		opts.Recognizer = do.MustInvoke[*transcriberimpl.CloudSpeechRecognizer](i)
		slog.Info("speech recognition fallback enabled", "project_id", cfg.GoogleCloudProjectID)
	}
	return transcript.NewFetcher(do.MustInvoke[provider.Provider](i), opts), nil
}

func newNotifier(i do.Injector) (notifier.Notifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	var multi notifier.Multi
	if cfg.NotifyWebhookURL != "" {
		multi = append(multi, do.MustInvoke[*webhookimpl.HTTPSender](i))
	}
	if cfg.DiscordToken != "" && cfg.DiscordChannelID != "" {
		multi = append(multi, do.MustInvoke[*discordimpl.SummaryPoster](i))
	}
	if len(multi) == 0 {
		slog.Info("no interview summary notifier configured")
		return nil, nil
	}
	slog.Info("interview summary notifiers configured", "count", len(multi))
	return multi, nil
}
