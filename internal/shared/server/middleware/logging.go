package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-manager/internal/shared/metrics"
	"resume-manager/internal/shared/telemetry"
)

// ResumeIDKey is set by résumé handlers so request logs carry the target record.
const ResumeIDKey = "resumeId"

// Logging emits a structured log per request and records its duration.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		durationMs := float64(latency.Microseconds()) / 1000.0
		metrics.ObserveRequestDurationMs(durationMs)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": durationMs,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if userID := UserIDFromContext(c); userID != 0 {
			fields["user_id"] = userID
		}
		if resumeID, ok := c.Get(ResumeIDKey); ok {
			fields["resume_id"] = resumeID
		}
		telemetry.Info("request.complete", fields)
	}
}
