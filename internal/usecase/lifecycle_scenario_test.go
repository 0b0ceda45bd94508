package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"contacto_profesionales/internal/adapter/persistence/repository"
	"contacto_profesionales/internal/domain/entities"
	"contacto_profesionales/internal/infrastructure/database"
	"contacto_profesionales/internal/platform/logger"
	"contacto_profesionales/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentNotification struct {
	kind      entities.NotificationKind
	requestID string
	state     entities.RequestState
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, kind entities.NotificationKind, r *entities.ServiceRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{kind: kind, requestID: r.ID, state: r.State})
}

func (n *recordingNotifier) kinds() []entities.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]entities.NotificationKind, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.kind)
	}
	return out
}

func newScenarioUseCase(t *testing.T, strict bool) (*usecase.ServiceRequestUseCase, *recordingNotifier) {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewServiceRequestSQLRepository(db, repository.DialectSQLite)
	require.NoError(t, repo.Migrate(context.Background(), strict))

	notifier := &recordingNotifier{}
	return usecase.NewServiceRequestUseCase(repo, notifier, logger.NewNop()), notifier
}

func tomorrow() time.Time {
	return time.Now().UTC().AddDate(0, 0, 1)
}

func scenarioInput(clientID, professionalID int64) usecase.CreateServiceRequestInput {
	return usecase.CreateServiceRequestInput{
		ClientID:       clientID,
		ProfessionalID: professionalID,
		Description:    "Fix leak",
		Address:        "Av X",
		District:       "Lima",
		ServiceDate:    tomorrow(),
	}
}

func TestLifecycleScenarios(t *testing.T) {
	ctx := context.Background()
	uc, notifier := newScenarioUseCase(t, false)

	// A
	created, err := uc.CreateRequest(ctx, scenarioInput(1, 2))
	require.NoError(t, err)
	assert.Equal(t, entities.StatePending, created.State)
	assert.True(t, created.Active)
	assert.True(t, created.RequestedAt.Equal(created.UpdatedAt))
	assert.Nil(t, created.RespondedAt)

	// B
	_, err = uc.CreateRequest(ctx, scenarioInput(1, 2))
	assert.ErrorIs(t, err, usecase.ErrDuplicateRequest)
	list, err := uc.ListByClient(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// E
	_, err = uc.Transition(ctx, usecase.TransitionInput{RequestID: created.ID, ActorID: 99, ActorRole: entities.RoleClient, Event: entities.EventCancel})
	assert.ErrorIs(t, err, usecase.ErrNotOwner)

	// C
	accepted, err := uc.Transition(ctx, usecase.TransitionInput{RequestID: created.ID, ActorID: 2, ActorRole: entities.RoleProfessional, Event: entities.EventAccept})
	require.NoError(t, err)
	assert.Equal(t, entities.StateAccepted, accepted.State)
	require.NotNil(t, accepted.RespondedAt)

	stored, err := uc.GetRequest(ctx, created.ID, 1, entities.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, entities.StateAccepted, stored.State)
	require.NotNil(t, stored.RespondedAt)
	assert.True(t, stored.RespondedAt.Equal(*accepted.RespondedAt))

	// D
	_, err = uc.Transition(ctx, usecase.TransitionInput{RequestID: created.ID, ActorID: 1, ActorRole: entities.RoleClient, Event: entities.EventCancel})
	assert.ErrorIs(t, err, usecase.ErrInvalidTransition)

	// F
	bad := scenarioInput(5, 6)
	bad.Description = ""
	_, err = uc.CreateRequest(ctx, bad)
	var vErr *usecase.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "description", vErr.Field)

	assert.Equal(t, []entities.NotificationKind{entities.NotificationNewRequest, entities.NotificationAccepted}, notifier.kinds())
}

func TestLifecycle_CancelTwice(t *testing.T) {
	ctx := context.Background()
	uc, notifier := newScenarioUseCase(t, false)

	created, err := uc.CreateRequest(ctx, scenarioInput(1, 2))
	require.NoError(t, err)

	cancelled, err := uc.Cancel(ctx, created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.StateCancelled, cancelled.State)
	assert.False(t, cancelled.Active)

	_, err = uc.Cancel(ctx, created.ID, 1)
	assert.Equal(t, usecase.KindInvalidTransition, usecase.KindOf(err))
	assert.Equal(t, []entities.NotificationKind{entities.NotificationNewRequest, entities.NotificationCancelled}, notifier.kinds())

	// a cancelled request no longer blocks a new one for the same pair
	_, err = uc.CreateRequest(ctx, scenarioInput(1, 2))
	assert.NoError(t, err)
}

func TestLifecycle_ListingsSkipInactiveAndAreNewestFirst(t *testing.T) {
	ctx := context.Background()
	uc, _ := newScenarioUseCase(t, false)

	first, err := uc.CreateRequest(ctx, scenarioInput(1, 2))
	require.NoError(t, err)
	second, err := uc.CreateRequest(ctx, scenarioInput(3, 2))
	require.NoError(t, err)
	third, err := uc.CreateRequest(ctx, scenarioInput(4, 2))
	require.NoError(t, err)

	_, err = uc.Cancel(ctx, second.ID, 3)
	require.NoError(t, err)
	_, err = uc.Transition(ctx, usecase.TransitionInput{RequestID: third.ID, ActorID: 2, ActorRole: entities.RoleProfessional, Event: entities.EventReject})
	require.NoError(t, err)

	list, err := uc.ListByProfessional(ctx, 2)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, r := range list {
		assert.True(t, r.Active)
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{third.ID, first.ID}, ids)

	pending, err := uc.CountPendingForProfessional(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	list, err = uc.ListByClient(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLifecycle_StrictUniquenessClosesTheRace(t *testing.T) {
	ctx := context.Background()
	uc, _ := newScenarioUseCase(t, true)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		kinds     []usecase.ErrorKind
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.CreateRequest(ctx, scenarioInput(1, 2))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			kinds = append(kinds, usecase.KindOf(err))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	for _, k := range kinds {
		assert.Equal(t, usecase.KindDuplicateRequest, k)
	}

	list, err := uc.ListByClient(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
