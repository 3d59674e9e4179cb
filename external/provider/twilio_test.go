package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/foxseedlab/callinterview/internal/provider"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeCallAPI struct {
	createParams   *openapi.CreateCallParams
	createResult   *openapi.ApiV2010Call
	createErr      error
	recording      *openapi.ApiV2010Recording
	recordingErr   error
	transcriptions []openapi.ApiV2010RecordingTranscription
	listErr        error
}

func (f *fakeCallAPI) CreateCall(params *openapi.CreateCallParams) (*openapi.ApiV2010Call, error) {
	f.createParams = params
	return f.createResult, f.createErr
}

func (f *fakeCallAPI) FetchRecording(string, *openapi.FetchRecordingParams) (*openapi.ApiV2010Recording, error) {
	return f.recording, f.recordingErr
}

func (f *fakeCallAPI) ListRecordingTranscription(string, *openapi.ListRecordingTranscriptionParams) ([]openapi.ApiV2010RecordingTranscription, error) {
	return f.transcriptions, f.listErr
}

func strPtr(s string) *string { return &s }

func TestCreateCall_SetsParamsAndReturnsSid(t *testing.T) {
	api := &fakeCallAPI{createResult: &openapi.ApiV2010Call{Sid: strPtr("CA100")}}
	p := &TwilioProvider{api: api}

	sid, err := p.CreateCall(context.Background(), provider.CreateCallInput{
		To:                   "+919876543210",
		From:                 "+15005550006",
		AnswerURL:            "https://example.com/webhooks/answer",
		StatusCallbackURL:    "https://example.com/webhooks/status",
		StatusCallbackEvents: []string{"initiated", "completed"},
		Record:               true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sid != "CA100" {
		t.Fatalf("expected CA100, got %q", sid)
	}
	got := api.createParams
	if got == nil || got.To == nil || *got.To != "+919876543210" {
		t.Fatalf("unexpected To param: %#v", got)
	}
	if got.Url == nil || *got.Url != "https://example.com/webhooks/answer" {
		t.Fatalf("unexpected Url param")
	}
	if got.StatusCallbackEvent == nil || len(*got.StatusCallbackEvent) != 2 {
		t.Fatalf("unexpected status callback events")
	}
	if got.Record == nil || !*got.Record {
		t.Fatalf("expected record flag")
	}
}

func TestCreateCall_WrapsProviderError(t *testing.T) {
	p := &TwilioProvider{api: &fakeCallAPI{createErr: errors.New("boom")}}

	_, err := p.CreateCall(context.Background(), provider.CreateCallInput{To: "+1"})
	var reqErr *provider.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.Op != "create call" {
		t.Fatalf("unexpected op: %s", reqErr.Op)
	}
}

func TestFetchRecording_MapsStatusAndDuration(t *testing.T) {
	p := &TwilioProvider{api: &fakeCallAPI{recording: &openapi.ApiV2010Recording{
		Status:   strPtr("processing"),
		Duration: strPtr("17"),
		CallSid:  strPtr("CA1"),
	}}}

	rec, err := p.FetchRecording(context.Background(), "RE1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != provider.RecordingStatusProcessing {
		t.Fatalf("expected processing, got %s", rec.Status)
	}
	if rec.DurationSeconds == nil || *rec.DurationSeconds != 17 {
		t.Fatalf("unexpected duration: %v", rec.DurationSeconds)
	}
}

func TestFetchRecording_NotFoundIsAbsent(t *testing.T) {
	p := &TwilioProvider{api: &fakeCallAPI{recordingErr: &twclient.TwilioRestError{Status: http.StatusNotFound, Code: 20404}}}

	rec, err := p.FetchRecording(context.Background(), "RE1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != provider.RecordingStatusAbsent {
		t.Fatalf("expected absent, got %s", rec.Status)
	}
}

func TestListTranscriptions_MapsStatus(t *testing.T) {
	p := &TwilioProvider{api: &fakeCallAPI{transcriptions: []openapi.ApiV2010RecordingTranscription{
		{Sid: strPtr("TR1"), Status: strPtr("completed"), TranscriptionText: strPtr("hello")},
		{Sid: strPtr("TR2"), Status: strPtr("in-progress")},
		{Sid: strPtr("TR3"), Status: strPtr("failed")},
	}}}

	list, err := p.ListTranscriptions(context.Background(), "RE1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []provider.TranscriptionStatus{
		provider.TranscriptionStatusCompleted,
		provider.TranscriptionStatusInProgress,
		provider.TranscriptionStatusFailed,
	}
	if len(list) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(list))
	}
	for i, w := range want {
		if list[i].Status != w {
			t.Fatalf("item %d: expected %s, got %s", i, w, list[i].Status)
		}
	}
	if list[0].Text != "hello" {
		t.Fatalf("unexpected text: %q", list[0].Text)
	}
}

func TestDownloadRecording_UsesBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC1" || pass != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/Accounts/AC1/Recordings/RE1.wav" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("RIFF"))
	}))
	defer server.Close()

	p := &TwilioProvider{accountSID: "AC1", authToken: "token", apiBaseURL: server.URL, httpClient: server.Client()}
	b, err := p.DownloadRecording(context.Background(), "RE1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "RIFF" {
		t.Fatalf("unexpected body: %q", b)
	}
}

func TestDownloadRecording_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := &TwilioProvider{accountSID: "AC1", authToken: "token", apiBaseURL: server.URL, httpClient: server.Client()}
	if _, err := p.DownloadRecording(context.Background(), "RE1"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func sign(token, url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestSignatureValidator(t *testing.T) {
	v := NewTwilioSignatureValidator("secret")
	url := "https://interview.example.com/webhooks/status"
	params := map[string]string{"CallSid": "CA1", "CallStatus": "completed"}

	if !v.Validate(url, params, sign("secret", url, params)) {
		t.Fatal("expected valid signature")
	}
	if v.Validate(url, params, sign("other", url, params)) {
		t.Fatal("expected signature with wrong token to be rejected")
	}
	if v.Validate(url, params, "") {
		t.Fatal("expected empty signature to be rejected")
	}
}
