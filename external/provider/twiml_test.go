package provider

import (
	"strings"
	"testing"

	"github.com/foxseedlab/callinterview/internal/instruction"
)

func render(t *testing.T, in instruction.Instruction) string {
	t.Helper()
	b, err := NewTwiMLRenderer().Render(in)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return string(b)
}

func assertContains(t *testing.T, doc string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(doc, p) {
			t.Fatalf("expected %q in document:\n%s", p, doc)
		}
	}
}

func TestRender_Record(t *testing.T) {
	doc := render(t, instruction.Instruction{
		Utterance:          "What is your name?",
		Capture:            instruction.CaptureRecord,
		CallbackURL:        "https://example.com/webhooks/recording",
		TimeoutSeconds:     5,
		MaxLengthSeconds:   60,
		Transcribe:         true,
		TranscribeCallback: "https://example.com/webhooks/transcription",
	})
	assertContains(t, doc,
		"<Response>",
		"<Say",
		"What is your name?",
		"<Record",
		`action="https://example.com/webhooks/recording"`,
		`maxLength="60"`,
		`timeout="5"`,
		`transcribe="true"`,
		`transcribeCallback="https://example.com/webhooks/transcription"`,
	)
	if strings.Contains(doc, "<Hangup") {
		t.Fatalf("record document must not hang up:\n%s", doc)
	}
}

func TestRender_Speech(t *testing.T) {
	doc := render(t, instruction.Instruction{
		Utterance:      "When can you start?",
		Capture:        instruction.CaptureSpeech,
		CallbackURL:    "https://example.com/webhooks/recording",
		TimeoutSeconds: 5,
		Language:       "en-IN",
	})
	assertContains(t, doc,
		"<Gather",
		`input="speech"`,
		`actionOnEmptyResult="true"`,
		`language="en-IN"`,
		"When can you start?",
	)
	if strings.Index(doc, "<Say") < strings.Index(doc, "<Gather") {
		t.Fatalf("question must be nested in gather:\n%s", doc)
	}
}

func TestRender_Hangup(t *testing.T) {
	doc := render(t, instruction.Instruction{
		Utterance: "Thank you for your time.",
		Capture:   instruction.CaptureNone,
		Hangup:    true,
	})
	assertContains(t, doc, "Thank you for your time.", "<Hangup")
	if strings.Contains(doc, "<Record") || strings.Contains(doc, "<Gather") {
		t.Fatalf("hangup document must not capture:\n%s", doc)
	}
}

func TestRender_ContentType(t *testing.T) {
	if got := NewTwiMLRenderer().ContentType(); got != "application/xml" {
		t.Fatalf("unexpected content type: %s", got)
	}
}
