package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/foxseedlab/callinterview/internal/provider"
	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const defaultAPIBaseURL = "https://api.twilio.com/2010-04-01"

// callAPI is the subset of the generated Twilio REST client that is used here.
type callAPI interface {
	CreateCall(params *openapi.CreateCallParams) (*openapi.ApiV2010Call, error)
	FetchRecording(sid string, params *openapi.FetchRecordingParams) (*openapi.ApiV2010Recording, error)
	ListRecordingTranscription(recordingSid string, params *openapi.ListRecordingTranscriptionParams) ([]openapi.ApiV2010RecordingTranscription, error)
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
}

type TwilioProvider struct {
	api        callAPI
	accountSID string
	authToken  string
	apiBaseURL string
	httpClient *http.Client
}

func NewTwilioProvider(cfg TwilioConfig) *TwilioProvider {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioProvider{
		api:        rest.Api,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		apiBaseURL: defaultAPIBaseURL,
		httpClient: &http.Client{},
	}
}

func (p *TwilioProvider) CreateCall(ctx context.Context, input provider.CreateCallInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &provider.RequestError{Op: "create call", Err: err}
	}
	params := &openapi.CreateCallParams{}
	params.SetTo(input.To)
	params.SetFrom(input.From)
	params.SetUrl(input.AnswerURL)
	params.SetMethod(http.MethodPost)
	if input.StatusCallbackURL != "" {
		params.SetStatusCallback(input.StatusCallbackURL)
		params.SetStatusCallbackMethod(http.MethodPost)
		params.SetStatusCallbackEvent(input.StatusCallbackEvents)
	}
	if input.Record {
		params.SetRecord(true)
	}

	call, err := p.api.CreateCall(params)
	if err != nil {
		return "", &provider.RequestError{Op: "create call", Err: err}
	}
	if call == nil || call.Sid == nil || *call.Sid == "" {
		return "", &provider.RequestError{Op: "create call", Err: errors.New("response has no call sid")}
	}
	return *call.Sid, nil
}

func (p *TwilioProvider) FetchRecording(ctx context.Context, recordingID string) (*provider.Recording, error) {
	if err := ctx.Err(); err != nil {
		return nil, &provider.RequestError{Op: "fetch recording", Err: err}
	}
	rec, err := p.api.FetchRecording(recordingID, &openapi.FetchRecordingParams{})
	if err != nil {
		if isNotFound(err) {
			return &provider.Recording{ID: recordingID, Status: provider.RecordingStatusAbsent}, nil
		}
		return nil, &provider.RequestError{Op: "fetch recording", Err: err}
	}

	out := &provider.Recording{
		ID:     recordingID,
		CallID: deref(rec.CallSid),
		Status: mapRecordingStatus(deref(rec.Status)),
		URI:    deref(rec.Uri),
	}
	if d, err := strconv.Atoi(deref(rec.Duration)); err == nil && d >= 0 {
		out.DurationSeconds = &d
	}
	return out, nil
}

func (p *TwilioProvider) ListTranscriptions(ctx context.Context, recordingID string) ([]provider.Transcription, error) {
	if err := ctx.Err(); err != nil {
		return nil, &provider.RequestError{Op: "list transcriptions", Err: err}
	}
	params := &openapi.ListRecordingTranscriptionParams{}
	params.SetLimit(20)
	items, err := p.api.ListRecordingTranscription(recordingID, params)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, &provider.RequestError{Op: "list transcriptions", Err: err}
	}
	out := make([]provider.Transcription, 0, len(items))
	for _, it := range items {
		out = append(out, provider.Transcription{
			ID:     deref(it.Sid),
			Status: mapTranscriptionStatus(deref(it.Status)),
			Text:   deref(it.TranscriptionText),
		})
	}
	return out, nil
}

func (p *TwilioProvider) DownloadRecording(ctx context.Context, recordingID string) ([]byte, error) {
	url := fmt.Sprintf("%s/Accounts/%s/Recordings/%s.wav", strings.TrimRight(p.apiBaseURL, "/"), p.accountSID, recordingID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &provider.RequestError{Op: "download recording", Err: err}
	}
	req.SetBasicAuth(p.accountSID, p.authToken)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &provider.RequestError{Op: "download recording", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &provider.RequestError{Op: "download recording", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.RequestError{Op: "download recording", Err: err}
	}
	return b, nil
}

func mapRecordingStatus(s string) provider.RecordingStatus {
	switch s {
	case "completed":
		return provider.RecordingStatusCompleted
	case "processing", "in-progress", "paused", "stopped":
		return provider.RecordingStatusProcessing
	case "absent", "deleted":
		return provider.RecordingStatusAbsent
	default:
		return provider.RecordingStatusFailed
	}
}

func mapTranscriptionStatus(s string) provider.TranscriptionStatus {
	switch s {
	case "completed":
		return provider.TranscriptionStatusCompleted
	case "in-progress", "queued", "":
		return provider.TranscriptionStatusInProgress
	default:
		return provider.TranscriptionStatusFailed
	}
}

func isNotFound(err error) bool {
	var restErr *twclient.TwilioRestError
	return errors.As(err, &restErr) && restErr.Status == http.StatusNotFound
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
