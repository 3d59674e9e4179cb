package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/foxseedlab/callinterview/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate and print the loaded configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return printConfig(cmd.OutOrStdout(), cfg)
	},
}

func printConfig(w io.Writer, cfg *config.Config) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ENV", cfg.Env},
		{"LISTEN_ADDR", cfg.ListenAddr},
		{"PUBLIC_BASE_URL", cfg.PublicBaseURL},
		{"TWILIO_ACCOUNT_SID", cfg.TwilioAccountSID},
		{"TWILIO_AUTH_TOKEN", maskSecret(cfg.TwilioAuthToken)},
		{"TWILIO_PHONE_NUMBER", cfg.TwilioPhoneNumber},
		{"TWILIO_VALIDATE_SIGNATURE", fmt.Sprint(cfg.TwilioValidateSignature)},
		{"COUNTRY_CODE", cfg.CountryCode},
		{"CAPTURE_MODE", cfg.CaptureMode},
		{"PROVIDER_TRANSCRIBE", fmt.Sprint(cfg.ProviderTranscribe)},
		{"SPEECH_LANGUAGE", cfg.SpeechLanguage},
		{"TRANSCRIPT_TIMEZONE", cfg.TranscriptTimezone},
		{"TRANSCRIPT_SWEEP_SCHEDULE", cfg.TranscriptSweepCron},
		{"STORE_DRIVER", cfg.StoreDriver},
		{"DATABASE_URL", maskSecret(cfg.DatabaseURL)},
		{"REDIS_URL", maskSecret(cfg.RedisURL)},
		{"NOTIFY_WEBHOOK_URL", maskSecret(cfg.NotifyWebhookURL)},
		{"DISCORD_TOKEN", maskSecret(cfg.DiscordToken)},
		{"DISCORD_CHANNEL_ID", cfg.DiscordChannelID},
		{"GOOGLE_CLOUD_PROJECT_ID", cfg.GoogleCloudProjectID},
		{"GOOGLE_CLOUD_CREDENTIALS_JSON", maskSecret(cfg.GoogleCloudCredentialsJSON)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	fmt.Fprintf(tw, "QUESTIONS\t%d\n", len(cfg.Questions))
	for i, q := range cfg.Questions {
		fmt.Fprintf(tw, "  %d\t%s\n", i+1, q)
	}
	return tw.Flush()
}

// maskSecret keeps the last four characters of values long enough to hide
// the rest.
func maskSecret(s string) string {
	switch {
	case s == "":
		return "(unset)"
	case len(s) <= 8:
		return strings.Repeat("*", len(s))
	default:
		return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
	}
}
