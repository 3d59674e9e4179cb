package interview

import "fmt"

const (
	RecordingCallbackPath     = "/webhooks/recording"
	TranscriptionCallbackPath = "/webhooks/transcription"
	AnswerCallbackPath        = "/webhooks/answer"
	StatusCallbackPath        = "/webhooks/status"

	messageQuestionFormat = "Question %d of %d. %s"

	summaryNoAnswer         = "(no answer)"
	summaryTranscriptFailed = "(transcript unavailable)"
	summaryTranscriptWait   = "(transcript pending)"
)

// statusCallbackEvents are the lifecycle events the provider reports back.
var statusCallbackEvents = []string{"initiated", "ringing", "answered", "completed"}

func questionUtterance(index, total int, text string) string {
	return fmt.Sprintf(messageQuestionFormat, index+1, total, text)
}
