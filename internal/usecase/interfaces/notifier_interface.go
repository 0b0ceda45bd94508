package interfaces

import (
	"context"

	"contacto_profesionales/internal/domain/entities"
)

// INotifier receives lifecycle events. Delivery is best effort: implementations
// log their own failures and never report them to the caller.
type INotifier interface {
	Notify(ctx context.Context, kind entities.NotificationKind, r *entities.ServiceRequest)
}

// INotificationChannel delivers one notification to one destination (log, queue, email).
//
// New channels are added by implementing this interface and registering them with
// the dispatcher; the lifecycle use case does not change.
type INotificationChannel interface {
	Name() string
	Deliver(ctx context.Context, n entities.Notification) error
}
