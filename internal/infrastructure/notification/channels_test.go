package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"contacto_profesionales/internal/domain/entities"
	"contacto_profesionales/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingPublisher struct {
	subject string
	data    any
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, data any) error {
	p.subject = subject
	p.data = data
	return p.err
}

type recordingSender struct {
	to      []string
	subject string
	body    string
	calls   int
}

func (s *recordingSender) Send(_ context.Context, to []string, subject, body string) error {
	s.calls++
	s.to, s.subject, s.body = to, subject, body
	return nil
}

func sampleNotification(kind entities.NotificationKind) entities.Notification {
	return entities.NewNotification(kind, *sampleServiceRequest(), time.Now().UTC())
}

func TestNATSChannel_Subject(t *testing.T) {
	pub := &recordingPublisher{}
	ch := NewNATSChannel(pub, "marketplace.requests.")

	require.NoError(t, ch.Deliver(context.Background(), sampleNotification(entities.NotificationCompleted)))
	assert.Equal(t, "marketplace.requests.completed", pub.subject)
	n, ok := pub.data.(entities.Notification)
	require.True(t, ok)
	assert.Equal(t, "sr-1", n.RequestID)

	assert.Equal(t, "service_requests.new_request", NewNATSChannel(pub, " ").Subject(entities.NotificationNewRequest))

	pub.err = errors.New("no responders")
	assert.Error(t, ch.Deliver(context.Background(), sampleNotification(entities.NotificationCompleted)))
}

func TestEmailChannel_Deliver(t *testing.T) {
	sender := &recordingSender{}
	ch := NewEmailChannel(sender, StaticRecipients{"ops@example.com"})

	require.NoError(t, ch.Deliver(context.Background(), sampleNotification(entities.NotificationRejected)))
	assert.Equal(t, []string{"ops@example.com"}, sender.to)
	assert.Equal(t, "Your service request was rejected", sender.subject)

	empty := NewEmailChannel(sender, StaticRecipients{})
	require.NoError(t, empty.Deliver(context.Background(), sampleNotification(entities.NotificationRejected)))
	assert.Equal(t, 1, sender.calls)
}

func TestComposeEmail(t *testing.T) {
	subject, body := composeEmail(sampleNotification(entities.NotificationNewRequest))
	assert.Equal(t, "New service request", subject)
	assert.True(t, strings.Contains(body, "Request: sr-1"))
	assert.True(t, strings.Contains(body, "Recipient: professional #2"))
	assert.True(t, strings.Contains(body, "Service date: 2026-10-19 10:00"))
	assert.True(t, strings.Contains(body, "Description: Fix leak"))
}

func TestNewSMTPSender_RequiresSettings(t *testing.T) {
	_, err := NewSMTPSender(SMTPSettings{Host: "smtp.example.com"}, nil)
	assert.Error(t, err)

	s, err := NewSMTPSender(SMTPSettings{Host: "smtp.example.com", Port: 465, Sender: "noreply@example.com", Encryption: "ssl"}, nil)
	require.NoError(t, err)
	assert.Error(t, s.Send(context.Background(), nil, "x", "y"))
}

func TestLogChannel_Deliver(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ch := NewLogChannel(logger.Wrap(zap.New(core)))

	require.NoError(t, ch.Deliver(context.Background(), sampleNotification(entities.NotificationAccepted)))
	entries := logs.FilterMessage("Service request notification").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "accepted", entries[0].ContextMap()["kind"])
	assert.Equal(t, int64(1), entries[0].ContextMap()["recipient_id"])
}
