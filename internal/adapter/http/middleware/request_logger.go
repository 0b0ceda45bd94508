package middleware

import (
	"time"

	"contacto_profesionales/internal/platform/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger writes one access log line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if actor, ok := ActorFromContext(c); ok {
			fields = append(fields, zap.Int64("actor_id", actor.ID), zap.String("actor_role", string(actor.Role)))
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("request handled", fields...)
		case status >= 400:
			log.Warn("request handled", fields...)
		default:
			log.Info("request handled", fields...)
		}
	}
}
