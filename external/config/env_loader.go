package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/callinterview/internal/config"
	"github.com/joho/godotenv"
)

var dotenvPaths = []string{".env", ".env.local"}

type envConfig struct {
	Env        string `env:"ENV" envDefault:"production"`
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	PublicBaseURL string `env:"PUBLIC_BASE_URL,required"`

	TwilioAccountSID        string `env:"TWILIO_ACCOUNT_SID,required"`
	TwilioAuthToken         string `env:"TWILIO_AUTH_TOKEN,required"`
	TwilioPhoneNumber       string `env:"TWILIO_PHONE_NUMBER,required"`
	TwilioValidateSignature bool   `env:"TWILIO_VALIDATE_SIGNATURE" envDefault:"true"`
	TwilioRecordCall        bool   `env:"TWILIO_RECORD_CALL" envDefault:"false"`

	CountryCode       string `env:"COUNTRY_CODE" envDefault:"91"`
	LocalNumberLength int    `env:"LOCAL_NUMBER_LENGTH" envDefault:"10"`

	QuestionsFile       string        `env:"QUESTIONS_FILE"`
	CaptureMode         string        `env:"CAPTURE_MODE" envDefault:"record"`
	RecordMaxLengthSec  int           `env:"RECORD_MAX_LENGTH_SECONDS" envDefault:"60"`
	AnswerTimeoutSec    int           `env:"ANSWER_TIMEOUT_SECONDS" envDefault:"5"`
	ProviderTranscribe  bool          `env:"PROVIDER_TRANSCRIBE" envDefault:"true"`
	SpeechLanguage      string        `env:"SPEECH_LANGUAGE" envDefault:"en-IN"`
	Voice               string        `env:"VOICE"`
	GreetingMessage     string        `env:"GREETING_MESSAGE" envDefault:"Hello, thank you for taking this call. I have a few questions for you. Please answer after the beep."`
	ClosingMessage      string        `env:"CLOSING_MESSAGE" envDefault:"Thank you for your answers. We will get back to you soon. Goodbye."`
	ApologyMessage      string        `env:"APOLOGY_MESSAGE" envDefault:"We are sorry, something went wrong on our side. We will call you again later. Goodbye."`
	TranscriptTimezone  string        `env:"TRANSCRIPT_TIMEZONE" envDefault:"Asia/Kolkata"`
	TranscriptMaxRetry  int           `env:"TRANSCRIPT_MAX_RETRIES" envDefault:"3"`
	TranscriptRetryWait time.Duration `env:"TRANSCRIPT_RETRY_DELAY" envDefault:"5s"`
	TranscriptSweepCron string        `env:"TRANSCRIPT_SWEEP_SCHEDULE" envDefault:"@every 10m"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`

	RedisURL    string        `env:"REDIS_URL"`
	CallLockTTL time.Duration `env:"CALL_LOCK_TTL" envDefault:"30s"`

	NotifyWebhookURL string `env:"NOTIFY_WEBHOOK_URL"`
	DiscordToken     string `env:"DISCORD_TOKEN"`
	DiscordChannelID string `env:"DISCORD_CHANNEL_ID"`

	GoogleCloudProjectID       string `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON string `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation  string `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel     string `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"long"`
}

func Load() (*internalconfig.Config, error) {
	if err := loadDotenv(dotenvPaths...); err != nil {
		return nil, err
	}

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("%w: environment variables are invalid or missing: %v", internalconfig.ErrInvalidConfig, err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		ListenAddr:                 raw.ListenAddr,
		PublicBaseURL:              strings.TrimRight(raw.PublicBaseURL, "/"),
		TwilioAccountSID:           raw.TwilioAccountSID,
		TwilioAuthToken:            raw.TwilioAuthToken,
		TwilioPhoneNumber:          raw.TwilioPhoneNumber,
		TwilioValidateSignature:    raw.TwilioValidateSignature,
		TwilioRecordCall:           raw.TwilioRecordCall,
		CountryCode:                strings.TrimPrefix(strings.TrimSpace(raw.CountryCode), "+"),
		LocalNumberLength:          raw.LocalNumberLength,
		Questions:                  loadQuestionsOrDefault(raw.QuestionsFile),
		CaptureMode:                strings.ToLower(strings.TrimSpace(raw.CaptureMode)),
		RecordMaxLengthSec:         raw.RecordMaxLengthSec,
		AnswerTimeoutSec:           raw.AnswerTimeoutSec,
		ProviderTranscribe:         raw.ProviderTranscribe,
		SpeechLanguage:             raw.SpeechLanguage,
		Voice:                      raw.Voice,
		GreetingMessage:            raw.GreetingMessage,
		ClosingMessage:             raw.ClosingMessage,
		ApologyMessage:             raw.ApologyMessage,
		TranscriptTimezone:         raw.TranscriptTimezone,
		TranscriptMaxRetry:         raw.TranscriptMaxRetry,
		TranscriptRetryWait:        raw.TranscriptRetryWait,
		TranscriptSweepCron:        strings.TrimSpace(raw.TranscriptSweepCron),
		StoreDriver:                strings.ToLower(strings.TrimSpace(raw.StoreDriver)),
		DatabaseURL:                raw.DatabaseURL,
		RedisURL:                   raw.RedisURL,
		CallLockTTL:                raw.CallLockTTL,
		NotifyWebhookURL:           raw.NotifyWebhookURL,
		DiscordToken:               raw.DiscordToken,
		DiscordChannelID:           raw.DiscordChannelID,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotenv loads the first env file that exists. Variables already set in the
// process environment win.
func loadDotenv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		slog.Info("loaded environment file", "path", p)
		return nil
	}
	return nil
}
