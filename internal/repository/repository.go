package repository

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateQuestion is returned by CreateResponse when the call already has
// a response for the requested question index.
var ErrDuplicateQuestion = errors.New("response for question already exists")

type CreateResponseInput struct {
	CallID        string
	PhoneNumber   string
	QuestionIndex int
	QuestionText  string
	CallStatus    CallStatus
	CreatedAt     time.Time
}

type UpdateRecordingInput struct {
	ResponseID      string
	RecordingID     string
	RecordingURI    string
	DurationSeconds *int
	UpdatedAt       time.Time
}

type UpdateSpokenAnswerInput struct {
	ResponseID   string
	SpokenAnswer string
	UpdatedAt    time.Time
}

// UpdateTranscriptInput sets the transcript outcome. Text is stored only for
// TranscriptStatusCompleted and cleared otherwise.
type UpdateTranscriptInput struct {
	ResponseID string
	Status     TranscriptStatus
	Text       string
	UpdatedAt  time.Time
}

type UpdateCallStatusInput struct {
	CallID    string
	Status    CallStatus
	UpdatedAt time.Time
}

type ResponseFilter struct {
	CallID           string
	PhoneNumber      string
	TranscriptStatus TranscriptStatus
	CallStatus       CallStatus
	HasRecording     bool
	Limit            int
}

type ResponseWriter interface {
	CreateResponse(ctx context.Context, input CreateResponseInput) (*InterviewResponse, error)
	UpdateRecording(ctx context.Context, input UpdateRecordingInput) error
	UpdateSpokenAnswer(ctx context.Context, input UpdateSpokenAnswerInput) error
	UpdateTranscript(ctx context.Context, input UpdateTranscriptInput) error
	// UpdateCallStatus sets the status on every response of the call and
	// returns how many were touched.
	UpdateCallStatus(ctx context.Context, input UpdateCallStatusInput) (int, error)
}

// ResponseReader lookups return (nil, nil) when nothing matches.
type ResponseReader interface {
	GetResponse(ctx context.Context, id string) (*InterviewResponse, error)
	GetResponseByRecordingID(ctx context.Context, recordingID string) (*InterviewResponse, error)
	ListResponsesByCallID(ctx context.Context, callID string) ([]InterviewResponse, error)
	ListResponses(ctx context.Context, filter ResponseFilter) ([]InterviewResponse, error)
}

type Repository interface {
	ResponseReader
	ResponseWriter
	Close() error
}
