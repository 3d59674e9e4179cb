package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"cloud.google.com/go/auth/credentials"
	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const speechAPIEndpointPort = 443

type CloudSpeechConfig struct {
	ProjectID       string
	CredentialsJSON string
	Language        string
	Location        string
	Model           string
}

// recognizeClient is the part of the Speech v2 client used for batch
// recognition of a single recording.
type recognizeClient interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

type CloudSpeechRecognizer struct {
	projectID       string
	credentialsJSON string
	defaultLanguage string
	location        string
	model           string
	newClient       func(ctx context.Context) (recognizeClient, error)

	mu     sync.Mutex
	client recognizeClient
}

func NewCloudSpeechRecognizer(cfg CloudSpeechConfig) *CloudSpeechRecognizer {
	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "global"
	}
	r := &CloudSpeechRecognizer{
		projectID:       cfg.ProjectID,
		credentialsJSON: cfg.CredentialsJSON,
		defaultLanguage: cfg.Language,
		location:        location,
		model:           strings.TrimSpace(cfg.Model),
	}
	r.newClient = r.dial
	return r
}

func (r *CloudSpeechRecognizer) dial(ctx context.Context) (recognizeClient, error) {
	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(r.credentialsJSON),
		Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return nil, fmt.Errorf("detect credentials: %w", err)
	}

	opts := []option.ClientOption{
		option.WithAuthCredentials(creds),
	}
	if r.location != "global" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", r.location, speechAPIEndpointPort)))
	}
	return speech.NewClient(ctx, opts...)
}

// Recognize transcribes one recording. The container format is detected by
// the service, so WAV from the provider is sent as is.
func (r *CloudSpeechRecognizer) Recognize(ctx context.Context, audio []byte, language string) (string, error) {
	if language == "" {
		language = r.defaultLanguage
	}
	slog.Info("starting cloud speech recognition", "location", r.location, "language", language, "model", r.model, "bytes", len(audio))

	client, err := r.getClient(ctx)
	if err != nil {
		return "", err
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Recognizer: fmt.Sprintf("projects/%s/locations/%s/recognizers/_", r.projectID, r.location),
		Config: &speechpb.RecognitionConfig{
			Model:         r.model,
			LanguageCodes: []string{language},
			DecodingConfig: &speechpb.RecognitionConfig_AutoDecodingConfig{
				AutoDecodingConfig: &speechpb.AutoDetectDecodingConfig{},
			},
			Features: &speechpb.RecognitionFeatures{EnableAutomaticPunctuation: true},
		},
		AudioSource: &speechpb.RecognizeRequest_Content{Content: audio},
	})
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
			return "", fmt.Errorf("speech request rejected: %s", st.Message())
		}
		return "", err
	}

	var parts []string
	for _, result := range resp.GetResults() {
		if len(result.GetAlternatives()) == 0 {
			continue
		}
		if t := strings.TrimSpace(result.GetAlternatives()[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}

func (r *CloudSpeechRecognizer) getClient(ctx context.Context) (recognizeClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client, nil
	}
	c, err := r.newClient(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	r.client = c
	return c, nil
}

// Close releases the cached client, if one was dialed.
func (r *CloudSpeechRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}
