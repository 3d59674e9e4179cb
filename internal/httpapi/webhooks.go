package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/foxseedlab/callinterview/internal/instruction"
	"github.com/foxseedlab/callinterview/internal/interview"
	"github.com/gin-gonic/gin"
)

type answerForm struct {
	CallSid    string `form:"CallSid"`
	To         string `form:"To"`
	CallStatus string `form:"CallStatus"`
}

type recordingForm struct {
	CallSid           string `form:"CallSid"`
	RecordingSid      string `form:"RecordingSid"`
	RecordingURL      string `form:"RecordingUrl"`
	RecordingDuration string `form:"RecordingDuration"`
	SpeechResult      string `form:"SpeechResult"`
}

type transcriptionForm struct {
	RecordingSid        string `form:"RecordingSid"`
	TranscriptionText   string `form:"TranscriptionText"`
	TranscriptionStatus string `form:"TranscriptionStatus"`
}

type statusForm struct {
	CallSid    string `form:"CallSid"`
	CallStatus string `form:"CallStatus"`
}

func (s *Server) handleAnswer(c *gin.Context) {
	var form answerForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderVoice(c, "answer", instruction.Instruction{}, err)
		return
	}
	in, err := s.opts.Interviews.HandleCallAnswered(c.Request.Context(), interview.AnsweredEvent{
		CallID: form.CallSid,
		To:     form.To,
	})
	s.renderVoice(c, "answer", in, err)
}

func (s *Server) handleRecording(c *gin.Context) {
	var form recordingForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderVoice(c, "recording", instruction.Instruction{}, err)
		return
	}
	ev := interview.CapturedEvent{
		ResponseID:   c.Query("response_id"),
		CallID:       form.CallSid,
		RecordingID:  form.RecordingSid,
		RecordingURI: form.RecordingURL,
		SpeechResult: form.SpeechResult,
	}
	if d, err := strconv.Atoi(form.RecordingDuration); err == nil && d >= 0 {
		ev.DurationSeconds = &d
	}
	in, err := s.opts.Interviews.HandleAnswerCaptured(c.Request.Context(), ev)
	s.renderVoice(c, "recording", in, err)
}

func (s *Server) handleTranscription(c *gin.Context) {
	var form transcriptionForm
	if err := c.ShouldBind(&form); err != nil {
		s.acknowledge(c, "transcription", err)
		return
	}
	err := s.opts.Interviews.HandleTranscription(c.Request.Context(), interview.TranscriptionEvent{
		RecordingID: form.RecordingSid,
		Status:      form.TranscriptionStatus,
		Text:        strings.TrimSpace(form.TranscriptionText),
	})
	s.acknowledge(c, "transcription", err)
}

func (s *Server) handleStatus(c *gin.Context) {
	var form statusForm
	if err := c.ShouldBind(&form); err != nil {
		s.acknowledge(c, "status", err)
		return
	}
	err := s.opts.Interviews.HandleCallStatus(c.Request.Context(), interview.StatusEvent{
		CallID: form.CallSid,
		Status: form.CallStatus,
	})
	s.acknowledge(c, "status", err)
}

// renderVoice always answers with a control document. Unknown callbacks get
// the apology with 404; any other failure gets it with 200 so the caller
// hears something before the hangup.
func (s *Server) renderVoice(c *gin.Context, kind string, in instruction.Instruction, err error) {
	status := http.StatusOK
	if err != nil {
		if errors.Is(err, interview.ErrMissingCorrelation) {
			status = http.StatusNotFound
			slog.Warn("voice callback has no matching interview", "kind", kind, "request_id", c.GetString(requestIDKey))
		} else {
			slog.Error("voice callback failed", "error", err, "kind", kind, "request_id", c.GetString(requestIDKey))
			_ = c.Error(err)
		}
		in = s.opts.Interviews.ApologyInstruction()
	}

	body, renderErr := s.opts.Renderer.Render(in)
	if renderErr != nil {
		slog.Error("failed to render instruction", "error", renderErr, "kind", kind)
		s.opts.Metrics.Webhook(kind, "render_error")
		c.String(http.StatusInternalServerError, "failed to render instruction")
		return
	}
	s.opts.Metrics.Webhook(kind, strconv.Itoa(status))
	c.Data(status, s.opts.Renderer.ContentType(), body)
}

func (s *Server) acknowledge(c *gin.Context, kind string, err error) {
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, interview.ErrMissingCorrelation):
		status = http.StatusNotFound
		slog.Warn("callback has no matching interview", "kind", kind, "request_id", c.GetString(requestIDKey))
	case errors.Is(err, interview.ErrUnknownCallStatus):
		status = http.StatusBadRequest
		slog.Warn("callback carries an unknown status", "error", err, "kind", kind)
	default:
		status = http.StatusInternalServerError
		slog.Error("callback failed", "error", err, "kind", kind, "request_id", c.GetString(requestIDKey))
		_ = c.Error(err)
	}
	s.opts.Metrics.Webhook(kind, strconv.Itoa(status))
	c.Status(status)
}

func webhookKind(path string) string {
	return strings.TrimPrefix(path, "/webhooks/")
}
