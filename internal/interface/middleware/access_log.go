package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-movie-catalog/pkg/response"
)

// AccessLog writes one structured line per request after the handler chain ran.
func AccessLog(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  c.GetString(response.RequestIDKey),
			"client_ip":   c.ClientIP(),
		}
		if id, ok := IdentityFrom(c); ok {
			fields["identity_id"] = id.ID
		}

		entry := logger.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("access")
		case c.Writer.Status() >= 400:
			entry.Warn("access")
		default:
			entry.Info("access")
		}
	}
}
