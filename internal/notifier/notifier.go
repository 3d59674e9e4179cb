package notifier

import (
	"context"
	"errors"
)

const SummarySchemaVersion = "1"

type SummaryAnswer struct {
	QuestionIndex            int    `json:"question_index"`
	Question                 string `json:"question"`
	SpokenAnswer             string `json:"spoken_answer,omitempty"`
	Transcript               string `json:"transcript,omitempty"`
	TranscriptStatus         string `json:"transcript_status"`
	RecordingURL             string `json:"recording_url,omitempty"`
	RecordingDurationSeconds *int   `json:"recording_duration_seconds,omitempty"`
}

// InterviewSummary is delivered once every answer of a finished call has its
// final transcript outcome.
type InterviewSummary struct {
	SchemaVersion   string          `json:"schema_version"`
	CallID          string          `json:"call_id"`
	PhoneNumber     string          `json:"phone_number"`
	CallStatus      string          `json:"call_status"`
	StartAt         string          `json:"start_at"`
	EndAt           string          `json:"end_at"`
	Timezone        string          `json:"timezone"`
	DurationSeconds int64           `json:"duration_seconds"`
	QuestionCount   int             `json:"question_count"`
	AnsweredCount   int             `json:"answered_count"`
	Answers         []SummaryAnswer `json:"answers"`
	// Text is a human-readable rendering of the answers.
	Text string `json:"text"`
}

type Notifier interface {
	NotifyInterviewFinished(ctx context.Context, summary InterviewSummary) error
}

// Multi fans a summary out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) NotifyInterviewFinished(ctx context.Context, summary InterviewSummary) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyInterviewFinished(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
