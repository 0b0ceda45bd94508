package notification

import (
	"context"

	"contacto_profesionales/internal/domain/entities"
	"contacto_profesionales/internal/platform/logger"

	"go.uber.org/zap"
)

// LogChannel writes every notification as a structured log entry.
type LogChannel struct {
	logger *logger.Logger
}

func NewLogChannel(log *logger.Logger) *LogChannel {
	if log == nil {
		log = logger.NewNop()
	}
	return &LogChannel{logger: log.Named("NotificationLog")}
}

func (c *LogChannel) Name() string { return "log" }

func (c *LogChannel) Deliver(_ context.Context, n entities.Notification) error {
	c.logger.Info("Service request notification",
		zap.String("kind", string(n.Kind)),
		zap.String("request_id", n.RequestID),
		zap.String("recipient_role", string(n.RecipientRole)),
		zap.Int64("recipient_id", n.RecipientID),
		zap.String("state", string(n.State)),
		zap.Time("service_date", n.ServiceDate),
		zap.String("description_preview", n.DescriptionPreview),
		zap.Time("occurred_at", n.OccurredAt))
	return nil
}
