package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"claimrisk/internal/domain"
)

// Context keys set by the middleware chain.
const (
	ContextKeyRequestID = "request_id"
	ContextKeyLogger    = "logger"
)

// RequestID injects an X-Request-ID header into the request and response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// GetRequestID returns the request id set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// Logger stores a request-scoped logger in the context and logs each HTTP
// request with method, path, status, and latency.
func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		entry := log.WithField("request_id", GetRequestID(c))
		c.Set(ContextKeyLogger, entry)

		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.WithFields(fields).Error("http request")
		case status >= http.StatusBadRequest:
			entry.WithFields(fields).Warn("http request")
		default:
			entry.WithFields(fields).Info("http request")
		}
	}
}

// GetLogger returns the request-scoped logger, falling back to the standard logger.
func GetLogger(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(ContextKeyLogger); ok {
		if l, ok := v.(logrus.FieldLogger); ok {
			return l
		}
	}
	return logrus.StandardLogger().WithField("request_id", GetRequestID(c))
}

// Recovery recovers from panics outside the analysis pipeline and answers
// with the standard internal-error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		GetLogger(c).WithField("panic", recovered).Error("middleware.Recovery: recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, domain.NewInternalErrorResult())
	})
}
