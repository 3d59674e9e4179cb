package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/foxseedlab/callinterview/internal/notifier"
)

const (
	requestTimeout     = 10 * time.Second
	maxDeliveryAttempt = 3
	defaultRetryDelay  = 2 * time.Second

	schemaHeader = "X-Interview-Schema"
	callIDHeader = "X-Interview-Call-ID"
)

// HTTPSender posts the interview summary as JSON. Server errors are retried;
// client errors are not.
type HTTPSender struct {
	webhookURL string
	client     *http.Client
	retryDelay time.Duration
}

func NewHTTPSender(webhookURL string) *HTTPSender {
	return &HTTPSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: requestTimeout},
		retryDelay: defaultRetryDelay,
	}
}

func (s *HTTPSender) NotifyInterviewFinished(ctx context.Context, summary notifier.InterviewSummary) error {
	if s.webhookURL == "" {
		return nil
	}

	b, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxDeliveryAttempt; attempt++ {
		retry, err := s.post(ctx, summary, b)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == maxDeliveryAttempt {
			break
		}
		slog.Warn("summary webhook delivery failed; retrying", "error", err, "call_id", summary.CallID, "attempt", attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryDelay * time.Duration(attempt)):
		}
	}
	return lastErr
}

// post sends one delivery and reports whether a failure is worth retrying.
func (s *HTTPSender) post(ctx context.Context, summary notifier.InterviewSummary, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(schemaHeader, summary.SchemaVersion)
	req.Header.Set(callIDHeader, summary.CallID)
	resp, err := s.client.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}
	return resp.StatusCode >= 500, fmt.Errorf("webhook returned status %d", resp.StatusCode)
}
