package notification

import (
	"context"
	"fmt"
	"time"

	"contacto_profesionales/internal/domain/entities"
	"contacto_profesionales/internal/platform/logger"
	"contacto_profesionales/internal/platform/metrics"
	"contacto_profesionales/internal/usecase/interfaces"

	"go.uber.org/zap"
)

const (
	DefaultDeliveryTimeout = 2 * time.Second

	outcomeDelivered = "delivered"
	outcomeFailed    = "failed"
	outcomePanicked  = "panicked"
)

// Dispatcher fans a lifecycle event out to every registered channel.
//
// Channels run one after another, each under its own timeout. A channel that
// fails, times out or panics is logged and counted; the others still run and
// the caller never sees the failure.
type Dispatcher struct {
	channels []interfaces.INotificationChannel
	timeout  time.Duration
	metrics  *metrics.MetricsManager
	logger   *logger.Logger
	now      func() time.Time
}

var _ interfaces.INotifier = (*Dispatcher)(nil)

func NewDispatcher(log *logger.Logger, m *metrics.MetricsManager, timeout time.Duration, channels ...interfaces.INotificationChannel) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{
		channels: channels,
		timeout:  timeout,
		metrics:  m,
		logger:   log.Named("NotificationDispatcher"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register adds a channel. It is not safe to call concurrently with Notify.
func (d *Dispatcher) Register(ch interfaces.INotificationChannel) {
	d.channels = append(d.channels, ch)
}

// Channels returns the names of the registered channels, in delivery order.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

func (d *Dispatcher) Notify(ctx context.Context, kind entities.NotificationKind, r *entities.ServiceRequest) {
	if r == nil {
		d.logger.Warn("Notification skipped: no service request", zap.String("kind", string(kind)))
		return
	}

	n := entities.NewNotification(kind, *r, d.now())
	// the triggering write is already committed, so an abandoned caller must not cut delivery short
	base := context.WithoutCancel(ctx)
	for _, ch := range d.channels {
		d.deliver(base, ch, n)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ch interfaces.INotificationChannel, n entities.Notification) {
	name := ch.Name()
	log := d.logger.With(
		zap.String("channel", name),
		zap.String("kind", string(n.Kind)),
		zap.String("request_id", n.RequestID))

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Notification channel panicked", zap.String("panic", fmt.Sprint(rec)))
			d.metrics.ObserveDelivery(name, string(n.Kind), outcomePanicked)
		}
	}()

	if err := ch.Deliver(ctx, n); err != nil {
		log.Error("Notification delivery failed", zap.Error(err))
		d.metrics.ObserveDelivery(name, string(n.Kind), outcomeFailed)
		return
	}
	log.Debug("Notification delivered")
	d.metrics.ObserveDelivery(name, string(n.Kind), outcomeDelivered)
}
