package repository

import "time"

type TranscriptStatus string

const (
	TranscriptStatusPending   TranscriptStatus = "pending"
	TranscriptStatusCompleted TranscriptStatus = "completed"
	TranscriptStatusFailed    TranscriptStatus = "failed"
)

func (s TranscriptStatus) Valid() bool {
	switch s {
	case TranscriptStatusPending, TranscriptStatusCompleted, TranscriptStatusFailed:
		return true
	default:
		return false
	}
}

type CallStatus string

const (
	CallStatusInitiated  CallStatus = "initiated"
	CallStatusQueued     CallStatus = "queued"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusBusy       CallStatus = "busy"
	CallStatusFailed     CallStatus = "failed"
	CallStatusNoAnswer   CallStatus = "no-answer"
	CallStatusCanceled   CallStatus = "canceled"
)

// IsTerminal reports whether the provider will send no further lifecycle
// events for the call.
func (s CallStatus) IsTerminal() bool {
	switch s {
	case CallStatusCompleted, CallStatusBusy, CallStatusFailed, CallStatusNoAnswer, CallStatusCanceled:
		return true
	default:
		return false
	}
}

// ParseCallStatus maps provider lifecycle values onto CallStatus. The provider
// reports "answered" as a status event while the call resource says
// "in-progress"; both mean the same thing here.
func ParseCallStatus(s string) (CallStatus, bool) {
	switch CallStatus(s) {
	case CallStatusInitiated, CallStatusQueued, CallStatusRinging, CallStatusInProgress,
		CallStatusCompleted, CallStatusBusy, CallStatusFailed, CallStatusNoAnswer, CallStatusCanceled:
		return CallStatus(s), true
	}
	if s == "answered" {
		return CallStatusInProgress, true
	}
	return "", false
}

// InterviewResponse is one question asked during one call, together with
// everything captured for its answer.
type InterviewResponse struct {
	ID                       string
	CallID                   string
	PhoneNumber              string
	QuestionIndex            int
	QuestionText             string
	SpokenAnswer             string
	RecordingID              string
	RecordingURI             string
	RecordingDurationSeconds *int
	TranscriptText           *string
	TranscriptStatus         TranscriptStatus
	CallStatus               CallStatus
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Answered reports whether any answer (recording or live speech) has been
// captured for the question.
func (r *InterviewResponse) Answered() bool {
	return r.RecordingID != "" || r.SpokenAnswer != ""
}
