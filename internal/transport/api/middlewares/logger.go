package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// Logger пишет одну запись на каждый запрос. ID запроса берется из заголовка X-Request-ID
// или генерируется и возвращается клиенту в том же заголовке.
func Logger(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		entry := l.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})

		if len(c.Errors) > 0 {
			entry = entry.WithError(c.Errors.Last())
		}

		status := c.Writer.Status()
		switch {
		case status >= 500: //nolint:mnd
			entry.Error("request failed")
		case status >= 400: //nolint:mnd
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}
