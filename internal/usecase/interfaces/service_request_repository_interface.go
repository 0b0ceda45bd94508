package interfaces

import (
	"context"
	"errors"
	"time"

	"contacto_profesionales/internal/domain/entities"
)

// ErrPendingRequestExists is returned by Create when the storage itself enforces
// one pending request per (client, professional) pair and the insert would break it.
var ErrPendingRequestExists = errors.New("pending request already stored for client and professional")

// StateUpdate is a conditional state change. It only applies to a row that
// exists, is active and is still in ExpectedState. A non-zero ExpectedClientID or
// ExpectedProfessionalID further restricts it to rows owned by that party.
type StateUpdate struct {
	ID                     string
	ExpectedState          entities.RequestState
	ExpectedClientID       int64
	ExpectedProfessionalID int64
	NewState               entities.RequestState
	At                     time.Time
	SetRespondedAt         bool
	Deactivate             bool
}

// IServiceRequestRepository abstracts persistence for ServiceRequest.
//
// The lifecycle engine must be able to:
//   - create a pending request and get its generated id back
//   - read one request by id, active or not
//   - list a client's or a professional's active requests, most recent first
//   - count active pending requests for a pair (duplicate guard) or a professional (badge)
//   - apply a state change only if the row still matches what the caller saw
//
// GetByID returns a zero ServiceRequest (empty ID) when nothing matches.
// UpdateState returns false, nil when the condition does not hold.
type IServiceRequestRepository interface {
	Create(ctx context.Context, r entities.ServiceRequest) (entities.ServiceRequest, error)
	GetByID(ctx context.Context, id string) (entities.ServiceRequest, error)
	ListByClient(ctx context.Context, clientID int64) ([]entities.ServiceRequest, error)
	ListByProfessional(ctx context.Context, professionalID int64) ([]entities.ServiceRequest, error)
	CountPending(ctx context.Context, clientID, professionalID int64) (int, error)
	CountPendingByProfessional(ctx context.Context, professionalID int64) (int, error)
	UpdateState(ctx context.Context, u StateUpdate) (bool, error)
}
