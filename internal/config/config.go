package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	CaptureModeRecord = "record"
	CaptureModeSpeech = "speech"

	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

// DefaultQuestions is used when no question file is configured or it cannot be read.
var DefaultQuestions = []string{
	"Please tell us your full name and the city you are calling from.",
	"What is your current role, and how many years of experience do you have?",
	"Why are you interested in this position?",
	"When would you be available to start?",
}

type Config struct {
	Env        string
	ListenAddr string

	PublicBaseURL string

	TwilioAccountSID        string
	TwilioAuthToken         string
	TwilioPhoneNumber       string
	TwilioValidateSignature bool
	TwilioRecordCall        bool

	CountryCode       string
	LocalNumberLength int

	Questions           []string
	CaptureMode         string
	RecordMaxLengthSec  int
	AnswerTimeoutSec    int
	ProviderTranscribe  bool
	SpeechLanguage      string
	Voice               string
	GreetingMessage     string
	ClosingMessage      string
	ApologyMessage      string
	TranscriptTimezone  string
	TranscriptMaxRetry  int
	TranscriptRetryWait time.Duration
	TranscriptSweepCron string

	StoreDriver string
	DatabaseURL string

	RedisURL    string
	CallLockTTL time.Duration

	NotifyWebhookURL string
	DiscordToken     string
	DiscordChannelID string

	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidConfig, req.name)
		}
	}
	u, err := url.Parse(c.PublicBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: PUBLIC_BASE_URL must be an absolute URL, got %q", ErrInvalidConfig, c.PublicBaseURL)
	}
	switch c.CaptureMode {
	case CaptureModeRecord, CaptureModeSpeech:
	default:
		return fmt.Errorf("%w: CAPTURE_MODE must be %q or %q, got %q", ErrInvalidConfig, CaptureModeRecord, CaptureModeSpeech, c.CaptureMode)
	}
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required when STORE_DRIVER=%s", ErrInvalidConfig, c.StoreDriver)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrInvalidConfig, c.StoreDriver)
	}
	if c.LocalNumberLength <= 0 {
		return fmt.Errorf("%w: LOCAL_NUMBER_LENGTH must be positive, got %d", ErrInvalidConfig, c.LocalNumberLength)
	}
	if c.TranscriptMaxRetry <= 0 {
		return fmt.Errorf("%w: TRANSCRIPT_MAX_RETRIES must be positive, got %d", ErrInvalidConfig, c.TranscriptMaxRetry)
	}
	if c.TranscriptRetryWait < 0 {
		return fmt.Errorf("%w: TRANSCRIPT_RETRY_DELAY must not be negative", ErrInvalidConfig)
	}
	if c.RecordMaxLengthSec <= 0 || c.AnswerTimeoutSec <= 0 {
		return fmt.Errorf("%w: RECORD_MAX_LENGTH_SECONDS and ANSWER_TIMEOUT_SECONDS must be positive", ErrInvalidConfig)
	}
	if len(c.Questions) == 0 {
		return fmt.Errorf("%w: at least one interview question is required", ErrInvalidConfig)
	}
	if c.DiscordToken != "" && c.DiscordChannelID == "" {
		return fmt.Errorf("%w: DISCORD_CHANNEL_ID is required when DISCORD_TOKEN is set", ErrInvalidConfig)
	}
	if c.GoogleCloudProjectID != "" && c.GoogleCloudCredentialsJSON == "" {
		return fmt.Errorf("%w: GOOGLE_CLOUD_CREDENTIALS_JSON is required when GOOGLE_CLOUD_PROJECT_ID is set", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.TranscriptTimezone); err != nil {
		return fmt.Errorf("%w: TRANSCRIPT_TIMEZONE is invalid: %v", ErrInvalidConfig, err)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "PUBLIC_BASE_URL", value: c.PublicBaseURL},
		{name: "TWILIO_ACCOUNT_SID", value: c.TwilioAccountSID},
		{name: "TWILIO_AUTH_TOKEN", value: c.TwilioAuthToken},
		{name: "TWILIO_PHONE_NUMBER", value: c.TwilioPhoneNumber},
		{name: "COUNTRY_CODE", value: c.CountryCode},
		{name: "TRANSCRIPT_TIMEZONE", value: c.TranscriptTimezone},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) SpeechFallbackEnabled() bool {
	return c.GoogleCloudProjectID != ""
}

// CallbackURL joins the public base URL and a webhook path.
func (c *Config) CallbackURL(path string) string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
