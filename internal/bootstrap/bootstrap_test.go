package bootstrap

import (
	"testing"
	"time"

	"github.com/foxseedlab/callinterview/internal/config"
	"github.com/foxseedlab/callinterview/internal/httpapi"
	"github.com/foxseedlab/callinterview/internal/interview"
	"github.com/foxseedlab/callinterview/internal/notifier"
	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/foxseedlab/callinterview/internal/sweeper"
	"github.com/foxseedlab/callinterview/internal/transcript"
	"github.com/samber/do/v2"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:                     "development",
		ListenAddr:              ":0",
		PublicBaseURL:           "https://interview.example.com",
		TwilioAccountSID:        "AC123",
		TwilioAuthToken:         "token",
		TwilioPhoneNumber:       "+15005550006",
		TwilioValidateSignature: true,
		CountryCode:             "91",
		LocalNumberLength:       10,
		Questions:               config.DefaultQuestions,
		CaptureMode:             config.CaptureModeRecord,
		TranscriptTimezone:      "Asia/Kolkata",
		TranscriptMaxRetry:      3,
		TranscriptRetryWait:     time.Second,
		TranscriptSweepCron:     "@every 10m",
		StoreDriver:             config.StoreDriverMemory,
		CallLockTTL:             30 * time.Second,
		NotifyWebhookURL:        "https://hooks.example.com/interview",
	}
}

func TestNewInjector_ResolvesService(t *testing.T) {
	injector := NewInjector(testConfig())

	if _, err := do.Invoke[*httpapi.Server](injector); err != nil {
		t.Fatalf("failed to resolve http server: %v", err)
	}
	if _, err := do.Invoke[*interview.Initiator](injector); err != nil {
		t.Fatalf("failed to resolve initiator: %v", err)
	}
	if _, err := do.Invoke[*transcript.Fetcher](injector); err != nil {
		t.Fatalf("failed to resolve fetcher: %v", err)
	}
	s, err := do.Invoke[*sweeper.Scheduler](injector)
	if err != nil {
		t.Fatalf("failed to resolve sweeper: %v", err)
	}
	if !s.Enabled() {
		t.Fatal("sweeper should be enabled by its schedule")
	}

	n, err := do.Invoke[notifier.Notifier](injector)
	if err != nil {
		t.Fatalf("failed to resolve notifier: %v", err)
	}
	if multi, ok := n.(notifier.Multi); !ok || len(multi) != 1 {
		t.Fatalf("expected only the webhook notifier, got %#v", n)
	}

	repo := do.MustInvoke[repository.Repository](injector)
	if err := repo.Close(); err != nil {
		t.Fatalf("close repository: %v", err)
	}
}

func TestNewInjector_NoNotifierConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.NotifyWebhookURL = ""
	injector := NewInjector(cfg)

	n, err := do.Invoke[notifier.Notifier](injector)
	if err != nil {
		t.Fatalf("failed to resolve notifier: %v", err)
	}
	if n != nil {
		t.Fatalf("expected no notifier, got %#v", n)
	}
	if _, err := do.Invoke[*interview.Engine](injector); err != nil {
		t.Fatalf("engine should build without a notifier: %v", err)
	}
}

func TestNewInjector_UnknownStoreDriver(t *testing.T) {
	cfg := testConfig()
	cfg.StoreDriver = "mongo"
	injector := NewInjector(cfg)

	if _, err := do.Invoke[*interview.Engine](injector); err == nil {
		t.Fatal("expected an error for an unknown store driver")
	}
}
