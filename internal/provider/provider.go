package provider

import (
	"context"
	"fmt"
)

type RecordingStatus string

const (
	RecordingStatusProcessing RecordingStatus = "processing"
	RecordingStatusCompleted  RecordingStatus = "completed"
	RecordingStatusAbsent     RecordingStatus = "absent"
	RecordingStatusFailed     RecordingStatus = "failed"
)

type TranscriptionStatus string

const (
	TranscriptionStatusInProgress TranscriptionStatus = "in-progress"
	TranscriptionStatusCompleted  TranscriptionStatus = "completed"
	TranscriptionStatusFailed     TranscriptionStatus = "failed"
)

type CreateCallInput struct {
	To                   string
	From                 string
	AnswerURL            string
	StatusCallbackURL    string
	StatusCallbackEvents []string
	Record               bool
}

type Recording struct {
	ID              string
	CallID          string
	Status          RecordingStatus
	DurationSeconds *int
	URI             string
}

type Transcription struct {
	ID     string
	Status TranscriptionStatus
	Text   string
}

// Provider is the telephony service that places calls, stores recordings and
// produces transcripts. It calls back over webhooks; this side only issues
// requests.
type Provider interface {
	CreateCall(ctx context.Context, input CreateCallInput) (callID string, err error)
	FetchRecording(ctx context.Context, recordingID string) (*Recording, error)
	ListTranscriptions(ctx context.Context, recordingID string) ([]Transcription, error)
	// DownloadRecording returns the recording audio as WAV.
	DownloadRecording(ctx context.Context, recordingID string) ([]byte, error)
}

// RequestError reports a failed outbound request to the provider.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// SignatureValidator checks that an inbound webhook was signed by the provider.
type SignatureValidator interface {
	Validate(url string, params map[string]string, signature string) bool
}
