package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/foxseedlab/callinterview/internal/export"
	"github.com/foxseedlab/callinterview/internal/instruction"
	"github.com/foxseedlab/callinterview/internal/interview"
	"github.com/foxseedlab/callinterview/internal/metrics"
	"github.com/foxseedlab/callinterview/internal/provider"
	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/foxseedlab/callinterview/internal/transcript"
	"github.com/gin-gonic/gin"
)

// Interviews is the call progression the webhooks drive.
type Interviews interface {
	HandleCallAnswered(ctx context.Context, ev interview.AnsweredEvent) (instruction.Instruction, error)
	HandleAnswerCaptured(ctx context.Context, ev interview.CapturedEvent) (instruction.Instruction, error)
	HandleCallStatus(ctx context.Context, ev interview.StatusEvent) error
	HandleTranscription(ctx context.Context, ev interview.TranscriptionEvent) error
	RefreshTranscript(ctx context.Context, responseID string) (*repository.InterviewResponse, transcript.Result, error)
	ApologyInstruction() instruction.Instruction
}

type CallStarter interface {
	Start(ctx context.Context, rawNumber string) (string, error)
}

type Options struct {
	Development bool
	Interviews  Interviews
	Calls       CallStarter
	Responses   repository.ResponseReader
	Renderer    instruction.Renderer
	// Validator is nil when webhook signatures are not checked.
	Validator   provider.SignatureValidator
	CallbackURL func(path string) string
	Location    *time.Location
	Metrics     *metrics.Metrics
}

type Server struct {
	opts   Options
	router *gin.Engine
}

func NewServer(opts Options) *Server {
	if opts.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	s := &Server{opts: opts, router: gin.New()}
	s.router.Use(RequestID())
	s.router.Use(RequestLogger())
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})
	if s.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.opts.Metrics.Handler()))
	}

	hooks := r.Group("/webhooks", s.verifySignature())
	{
		hooks.POST("/answer", s.handleAnswer)
		hooks.POST("/recording", s.handleRecording)
		hooks.POST("/transcription", s.handleTranscription)
		hooks.POST("/status", s.handleStatus)
	}

	r.POST("/calls", s.startCall)
	r.GET("/responses", s.listResponses)
	r.GET("/responses/:id", s.getResponse)
	r.POST("/responses/:id/transcript/refresh", s.refreshTranscript)
	r.GET("/export/responses.xlsx", s.exportResponses(export.FormatXLSX))
	r.GET("/export/responses.csv", s.exportResponses(export.FormatCSV))
	r.GET("/export/responses.json", s.exportResponses(export.FormatJSON))
}

// Handler returns the gin engine serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}
