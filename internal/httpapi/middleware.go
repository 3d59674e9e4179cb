package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	signatureHeader = "X-Twilio-Signature"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if path == "/healthz" || path == "/metrics" {
			return
		}
		attrs := []any{
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			slog.Error("http request", attrs...)
			return
		}
		slog.Info("http request", attrs...)
	}
}

// verifySignature rejects webhooks whose X-Twilio-Signature does not match the
// public URL and form parameters of the request.
func (s *Server) verifySignature() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.opts.Validator == nil {
			c.Next()
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		params := make(map[string]string, len(c.Request.PostForm))
		for k, v := range c.Request.PostForm {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
		url := s.opts.CallbackURL(c.Request.URL.RequestURI())
		if !s.opts.Validator.Validate(url, params, c.GetHeader(signatureHeader)) {
			slog.Warn("webhook signature mismatch", "path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey))
			s.opts.Metrics.Webhook(webhookKind(c.Request.URL.Path), "forbidden")
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
