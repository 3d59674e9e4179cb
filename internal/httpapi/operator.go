package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/foxseedlab/callinterview/internal/export"
	"github.com/foxseedlab/callinterview/internal/interview"
	"github.com/foxseedlab/callinterview/internal/phone"
	"github.com/foxseedlab/callinterview/internal/provider"
	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type startCallRequest struct {
	PhoneNumber string `json:"phone_number" form:"phone_number" binding:"required"`
}

type responseView struct {
	ID                       string  `json:"id"`
	CallID                   string  `json:"call_id"`
	PhoneNumber              string  `json:"phone_number"`
	QuestionIndex            int     `json:"question_index"`
	Question                 string  `json:"question"`
	SpokenAnswer             string  `json:"spoken_answer,omitempty"`
	RecordingID              string  `json:"recording_id,omitempty"`
	RecordingURL             string  `json:"recording_url,omitempty"`
	RecordingDurationSeconds *int    `json:"recording_duration_seconds,omitempty"`
	Transcript               *string `json:"transcript"`
	TranscriptStatus         string  `json:"transcript_status"`
	CallStatus               string  `json:"call_status"`
	CreatedAt                string  `json:"created_at"`
	UpdatedAt                string  `json:"updated_at"`
}

func (s *Server) view(r repository.InterviewResponse) responseView {
	return responseView{
		ID:                       r.ID,
		CallID:                   r.CallID,
		PhoneNumber:              r.PhoneNumber,
		QuestionIndex:            r.QuestionIndex,
		Question:                 r.QuestionText,
		SpokenAnswer:             r.SpokenAnswer,
		RecordingID:              r.RecordingID,
		RecordingURL:             r.RecordingURI,
		RecordingDurationSeconds: r.RecordingDurationSeconds,
		Transcript:               r.TranscriptText,
		TranscriptStatus:         string(r.TranscriptStatus),
		CallStatus:               string(r.CallStatus),
		CreatedAt:                r.CreatedAt.In(s.opts.Location).Format(time.RFC3339),
		UpdatedAt:                r.UpdatedAt.In(s.opts.Location).Format(time.RFC3339),
	}
}

func (s *Server) startCall(c *gin.Context) {
	var req startCallRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone_number is required"})
		return
	}

	callID, err := s.opts.Calls.Start(c.Request.Context(), req.PhoneNumber)
	var reqErr *provider.RequestError
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"call_id": callID})
	case errors.Is(err, phone.ErrEmptyNumber):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &reqErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": reqErr.Error()})
	default:
		slog.Error("failed to start call", "error", err, "call_id", callID)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store the call", "call_id": callID})
	}
}

func (s *Server) listResponses(c *gin.Context) {
	filter := repository.ResponseFilter{
		CallID:      c.Query("call_id"),
		PhoneNumber: c.Query("phone_number"),
	}
	if v := c.Query("transcript_status"); v != "" {
		filter.TranscriptStatus = repository.TranscriptStatus(v)
		if !filter.TranscriptStatus.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid transcript_status %q", v)})
			return
		}
	}
	if v := c.Query("call_status"); v != "" {
		status, ok := repository.ParseCallStatus(v)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid call_status %q", v)})
			return
		}
		filter.CallStatus = status
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		filter.Limit = limit
	}

	list, err := s.opts.Responses.ListResponses(c.Request.Context(), filter)
	if err != nil {
		s.internalError(c, "failed to list responses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"responses": lo.Map(list, func(r repository.InterviewResponse, _ int) responseView { return s.view(r) }),
		"count":     len(list),
	})
}

func (s *Server) getResponse(c *gin.Context) {
	resp, err := s.opts.Responses.GetResponse(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.internalError(c, "failed to get response", err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "response not found"})
		return
	}
	c.JSON(http.StatusOK, s.view(*resp))
}

func (s *Server) refreshTranscript(c *gin.Context) {
	resp, res, err := s.opts.Interviews.RefreshTranscript(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, interview.ErrMissingCorrelation):
		c.JSON(http.StatusNotFound, gin.H{"error": "response not found"})
		return
	case errors.Is(err, interview.ErrNoRecording):
		c.JSON(http.StatusConflict, gin.H{"error": "response has no recording"})
		return
	case err != nil:
		s.internalError(c, "failed to refresh transcript", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"response": s.view(*resp),
		"fetch": gin.H{
			"status":   string(res.Status),
			"attempts": res.Attempts,
			"source":   res.Source,
		},
	})
}

func (s *Server) exportResponses(format export.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, _ := strconv.ParseBool(c.Query("all"))
		list, err := export.Load(c.Request.Context(), s.opts.Responses, all)
		if err != nil {
			s.internalError(c, "failed to load responses for export", err)
			return
		}
		c.Header("Content-Type", format.ContentType())
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
		c.Status(http.StatusOK)
		if err := export.Write(c.Writer, format, export.Rows(list, s.opts.Location)); err != nil {
			slog.Error("failed to write export", "error", err, "format", format)
			_ = c.Error(err)
		}
	}
}

func (s *Server) internalError(c *gin.Context, msg string, err error) {
	slog.Error(msg, "error", err, "request_id", c.GetString(requestIDKey))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
