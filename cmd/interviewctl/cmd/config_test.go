package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/foxseedlab/callinterview/internal/config"
)

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":                 "(unset)",
		"short":            "*****",
		"abcdefghijkl1234": "************1234",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Fatalf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintConfig_MasksSecrets(t *testing.T) {
	cfg := &config.Config{
		Env:              "production",
		TwilioAccountSID: "AC0123456789",
		TwilioAuthToken:  "supersecrettoken",
		DatabaseURL:      "postgres://user:pass@db/interviews",
		Questions:        []string{"Name?", "Role?"},
	}
	var buf bytes.Buffer
	if err := printConfig(&buf, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "supersecrettoken") || strings.Contains(out, "user:pass") {
		t.Fatalf("secret leaked:\n%s", out)
	}
	for _, want := range []string{"AC0123456789", "oken", "QUESTIONS", "Role?"} {
		if !strings.Contains(out, want) {
			t.Fatalf("%q not found in output:\n%s", want, out)
		}
	}
}
