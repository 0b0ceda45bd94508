package notification

import (
	"context"
	"strings"

	"contacto_profesionales/internal/domain/entities"
)

const DefaultSubjectPrefix = "service_requests"

// EventPublisher publishes one JSON-encodable message on a subject. *Publisher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

// NATSChannel publishes each notification on "<prefix>.<kind>".
type NATSChannel struct {
	publisher EventPublisher
	prefix    string
}

func NewNATSChannel(publisher EventPublisher, prefix string) *NATSChannel {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSChannel{publisher: publisher, prefix: prefix}
}

func (c *NATSChannel) Name() string { return "nats" }

func (c *NATSChannel) Subject(kind entities.NotificationKind) string {
	return c.prefix + "." + string(kind)
}

func (c *NATSChannel) Deliver(ctx context.Context, n entities.Notification) error {
	return c.publisher.Publish(ctx, c.Subject(n.Kind), n)
}
