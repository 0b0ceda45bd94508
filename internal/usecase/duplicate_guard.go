package usecase

import (
	"context"

	"contacto_profesionales/internal/usecase/interfaces"
)

// DuplicateGuard refuses a new request while the same client still has an
// active pending request with the same professional.
//
// The check and the subsequent insert are not atomic. Two concurrent creates
// for the same pair can both pass; SQL storage closes that window when it is
// migrated with the strict pending index.
type DuplicateGuard struct {
	repo interfaces.IServiceRequestRepository
}

func NewDuplicateGuard(repo interfaces.IServiceRequestRepository) *DuplicateGuard {
	return &DuplicateGuard{repo: repo}
}

// Check returns ErrDuplicateRequest when the pair already has a pending request.
func (g *DuplicateGuard) Check(ctx context.Context, clientID, professionalID int64) error {
	n, err := g.repo.CountPending(ctx, clientID, professionalID)
	if err != nil {
		return persistenceError("count pending requests", err)
	}
	if n > 0 {
		return ErrDuplicateRequest
	}
	return nil
}
