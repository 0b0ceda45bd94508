package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"contacto_profesionales/internal/domain/entities"
	"contacto_profesionales/internal/platform/logger"
	"contacto_profesionales/internal/usecase/interfaces"

	"go.uber.org/zap"
)

const (
	MaxDescriptionLength = 1000
	MaxPhotoURLs         = 3
)

// IServiceRequestUseCase exposes the service request lifecycle.
//
//   - CreateRequest => new pending request (client side)
//   - Transition => accept / reject / complete (professional), cancel (client)
//   - Cancel => shortcut for the client's cancel event
//   - GetRequest, ListByClient, ListByProfessional, CountPendingForProfessional => reads
type IServiceRequestUseCase interface {
	CreateRequest(ctx context.Context, in CreateServiceRequestInput) (entities.ServiceRequest, error)
	GetRequest(ctx context.Context, id string, viewerID int64, viewerRole entities.ActorRole) (entities.ServiceRequest, error)
	ListByClient(ctx context.Context, clientID int64) ([]entities.ServiceRequest, error)
	ListByProfessional(ctx context.Context, professionalID int64) ([]entities.ServiceRequest, error)
	CountPendingForProfessional(ctx context.Context, professionalID int64) (int, error)
	Transition(ctx context.Context, in TransitionInput) (entities.ServiceRequest, error)
	Cancel(ctx context.Context, requestID string, clientID int64) (entities.ServiceRequest, error)
}

// CreateServiceRequestInput holds what a client submits. Modality and Urgency
// default to on_site and normal when empty.
type CreateServiceRequestInput struct {
	ClientID        int64
	ProfessionalID  int64
	Description     string
	EstimatedBudget float64
	Modality        entities.ServiceModality
	Address         string
	District        string
	PostalCode      string
	Reference       string
	ServiceDate     time.Time
	Urgency         entities.Urgency
	AdditionalNotes string
	PhotoURLs       []string
}

// TransitionInput asks for Event to be applied by the actor ActorID acting as ActorRole.
type TransitionInput struct {
	RequestID string
	ActorID   int64
	ActorRole entities.ActorRole
	Event     entities.Event
}

type ServiceRequestUseCase struct {
	repo     interfaces.IServiceRequestRepository
	guard    *DuplicateGuard
	notifier interfaces.INotifier
	logger   *logger.Logger
	now      func() time.Time
	loc      *time.Location
}

var _ IServiceRequestUseCase = (*ServiceRequestUseCase)(nil)

func NewServiceRequestUseCase(repo interfaces.IServiceRequestRepository, notifier interfaces.INotifier, log *logger.Logger) *ServiceRequestUseCase {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ServiceRequestUseCase{
		repo:     repo,
		guard:    NewDuplicateGuard(repo),
		notifier: notifier,
		logger:   log.Named("ServiceRequestUseCase"),
		now:      func() time.Time { return time.Now().UTC() },
		loc:      time.UTC,
	}
}

// WithLocation sets the zone whose calendar decides whether a service date is in the past.
func (u *ServiceRequestUseCase) WithLocation(loc *time.Location) *ServiceRequestUseCase {
	if loc != nil {
		u.loc = loc
	}
	return u
}

func (u *ServiceRequestUseCase) CreateRequest(ctx context.Context, in CreateServiceRequestInput) (entities.ServiceRequest, error) {
	now := u.now()

	r, err := u.validateCreate(in, now)
	if err != nil {
		return entities.ServiceRequest{}, err
	}

	if err := u.guard.Check(ctx, r.ClientID, r.ProfessionalID); err != nil {
		if errors.Is(err, ErrDuplicateRequest) {
			u.logger.Info("Duplicate pending request refused",
				zap.Int64("client_id", r.ClientID),
				zap.Int64("professional_id", r.ProfessionalID))
		}
		return entities.ServiceRequest{}, err
	}

	r.State = entities.StatePending
	r.Active = true
	r.RequestedAt = now
	r.UpdatedAt = now

	created, err := u.repo.Create(ctx, r)
	if err != nil {
		if errors.Is(err, interfaces.ErrPendingRequestExists) {
			return entities.ServiceRequest{}, ErrDuplicateRequest
		}
		u.logger.Error("Failed to store service request", zap.Error(err))
		return entities.ServiceRequest{}, persistenceError("create service request", err)
	}

	u.logger.Info("Service request created",
		zap.String("request_id", created.ID),
		zap.Int64("client_id", created.ClientID),
		zap.Int64("professional_id", created.ProfessionalID))

	u.notifier.Notify(ctx, entities.NotificationNewRequest, &created)
	return created, nil
}

// validateCreate checks the fields in a fixed order and reports the first one that fails.
func (u *ServiceRequestUseCase) validateCreate(in CreateServiceRequestInput, now time.Time) (entities.ServiceRequest, error) {
	if in.ClientID <= 0 {
		return entities.ServiceRequest{}, invalidField("client_id", "must be a positive id")
	}
	if in.ProfessionalID <= 0 {
		return entities.ServiceRequest{}, invalidField("professional_id", "must be a positive id")
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return entities.ServiceRequest{}, invalidField("description", "is required")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return entities.ServiceRequest{}, invalidField("description", "must be at most 1000 characters")
	}

	if in.EstimatedBudget < 0 {
		return entities.ServiceRequest{}, invalidField("estimated_budget", "must not be negative")
	}

	modality := in.Modality
	if modality == "" {
		modality = entities.ModalityOnSite
	}
	if !modality.IsValid() {
		return entities.ServiceRequest{}, invalidField("modality", "must be on_site or remote")
	}

	address := strings.TrimSpace(in.Address)
	district := strings.TrimSpace(in.District)
	if modality.RequiresAddress() {
		if address == "" {
			return entities.ServiceRequest{}, invalidField("address", "is required for on-site services")
		}
		if district == "" {
			return entities.ServiceRequest{}, invalidField("district", "is required for on-site services")
		}
	}

	if in.ServiceDate.IsZero() {
		return entities.ServiceRequest{}, invalidField("service_date", "is required")
	}
	if dayOf(in.ServiceDate, u.loc).Before(dayOf(now, u.loc)) {
		return entities.ServiceRequest{}, invalidField("service_date", "must not be in the past")
	}

	urgency := in.Urgency
	if urgency == "" {
		urgency = entities.UrgencyNormal
	}
	if !urgency.IsValid() {
		return entities.ServiceRequest{}, invalidField("urgency", "must be normal or urgent")
	}

	if len(in.PhotoURLs) > MaxPhotoURLs {
		return entities.ServiceRequest{}, invalidField("photo_urls", "at most 3 photos are allowed")
	}
	photos := make([]string, 0, len(in.PhotoURLs))
	for _, p := range in.PhotoURLs {
		p = strings.TrimSpace(p)
		if p == "" {
			return entities.ServiceRequest{}, invalidField("photo_urls", "must not contain empty urls")
		}
		photos = append(photos, p)
	}

	return entities.ServiceRequest{
		ClientID:        in.ClientID,
		ProfessionalID:  in.ProfessionalID,
		Description:     description,
		EstimatedBudget: in.EstimatedBudget,
		Modality:        modality,
		Address:         address,
		District:        district,
		PostalCode:      strings.TrimSpace(in.PostalCode),
		Reference:       strings.TrimSpace(in.Reference),
		ServiceDate:     in.ServiceDate.UTC(),
		Urgency:         urgency,
		AdditionalNotes: strings.TrimSpace(in.AdditionalNotes),
		PhotoURLs:       photos,
	}, nil
}

func (u *ServiceRequestUseCase) GetRequest(ctx context.Context, id string, viewerID int64, viewerRole entities.ActorRole) (entities.ServiceRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.ServiceRequest{}, invalidField("request_id", "is required")
	}
	if viewerID <= 0 {
		return entities.ServiceRequest{}, invalidField("actor_id", "must be a positive id")
	}
	if !viewerRole.IsValid() {
		return entities.ServiceRequest{}, invalidField("actor_role", "must be client or professional")
	}

	r, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.ServiceRequest{}, persistenceError("get service request", err)
	}
	if r.ID == "" {
		return entities.ServiceRequest{}, ErrServiceRequestNotFound
	}
	if !r.Involves(viewerID, viewerRole) {
		return entities.ServiceRequest{}, ErrNotOwner
	}
	return r, nil
}

func (u *ServiceRequestUseCase) ListByClient(ctx context.Context, clientID int64) ([]entities.ServiceRequest, error) {
	if clientID <= 0 {
		return nil, invalidField("client_id", "must be a positive id")
	}
	items, err := u.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, persistenceError("list client requests", err)
	}
	if items == nil {
		items = []entities.ServiceRequest{}
	}
	return items, nil
}

func (u *ServiceRequestUseCase) ListByProfessional(ctx context.Context, professionalID int64) ([]entities.ServiceRequest, error) {
	if professionalID <= 0 {
		return nil, invalidField("professional_id", "must be a positive id")
	}
	items, err := u.repo.ListByProfessional(ctx, professionalID)
	if err != nil {
		return nil, persistenceError("list professional requests", err)
	}
	if items == nil {
		items = []entities.ServiceRequest{}
	}
	return items, nil
}

func (u *ServiceRequestUseCase) CountPendingForProfessional(ctx context.Context, professionalID int64) (int, error) {
	if professionalID <= 0 {
		return 0, invalidField("professional_id", "must be a positive id")
	}
	n, err := u.repo.CountPendingByProfessional(ctx, professionalID)
	if err != nil {
		return 0, persistenceError("count professional pending requests", err)
	}
	return n, nil
}

// Transition applies one lifecycle event. Checks run in this order: input,
// existence, state (inactive requests accept nothing), role, ownership. The
// store write is conditional on the state read here, so a concurrent change
// surfaces as an error instead of being overwritten.
func (u *ServiceRequestUseCase) Transition(ctx context.Context, in TransitionInput) (entities.ServiceRequest, error) {
	id := strings.TrimSpace(in.RequestID)
	if id == "" {
		return entities.ServiceRequest{}, invalidField("request_id", "is required")
	}
	if in.ActorID <= 0 {
		return entities.ServiceRequest{}, invalidField("actor_id", "must be a positive id")
	}
	if !in.ActorRole.IsValid() {
		return entities.ServiceRequest{}, invalidField("actor_role", "must be client or professional")
	}
	if !in.Event.IsValid() {
		return entities.ServiceRequest{}, invalidField("event", "must be accept, reject, cancel or complete")
	}

	log := u.logger.With(
		zap.String("request_id", id),
		zap.String("event", string(in.Event)),
		zap.Int64("actor_id", in.ActorID),
		zap.String("actor_role", string(in.ActorRole)))

	current, err := u.repo.GetByID(ctx, id)
	if err != nil {
		log.Error("Failed to load service request", zap.Error(err))
		return entities.ServiceRequest{}, persistenceError("get service request", err)
	}
	if current.ID == "" {
		return entities.ServiceRequest{}, ErrServiceRequestNotFound
	}

	if !current.Active {
		return entities.ServiceRequest{}, &TransitionError{From: current.State, Event: in.Event, Detail: "request is no longer active"}
	}
	t, ok := entities.LookupTransition(current.State, in.Event)
	if !ok {
		return entities.ServiceRequest{}, &TransitionError{From: current.State, Event: in.Event}
	}

	if in.ActorRole != t.Actor {
		log.Warn("Actor role cannot fire this event", zap.String("required_role", string(t.Actor)))
		return entities.ServiceRequest{}, ErrNotOwner
	}
	if !current.Involves(in.ActorID, in.ActorRole) {
		log.Warn("Actor is not a party of the service request")
		return entities.ServiceRequest{}, ErrNotOwner
	}

	now := u.now()
	update := interfaces.StateUpdate{
		ID:             id,
		ExpectedState:  current.State,
		NewState:       t.To,
		At:             now,
		SetRespondedAt: t.SetsRespondedAt,
		Deactivate:     t.Deactivates,
	}
	if in.ActorRole == entities.RoleClient {
		update.ExpectedClientID = in.ActorID
	} else {
		update.ExpectedProfessionalID = in.ActorID
	}

	applied, err := u.repo.UpdateState(ctx, update)
	if err != nil {
		log.Error("Failed to update service request state", zap.Error(err))
		return entities.ServiceRequest{}, persistenceError("update service request state", err)
	}
	if !applied {
		return entities.ServiceRequest{}, u.explainLostUpdate(ctx, id, in.Event)
	}

	updated := current.Apply(t, now)
	log.Info("Service request transitioned",
		zap.String("from", string(t.From)),
		zap.String("to", string(t.To)))

	u.notifier.Notify(ctx, t.Notification, &updated)
	return updated, nil
}

// explainLostUpdate re-reads a request whose conditional update matched nothing.
func (u *ServiceRequestUseCase) explainLostUpdate(ctx context.Context, id string, event entities.Event) error {
	latest, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return persistenceError("reload service request", err)
	}
	if latest.ID == "" {
		return ErrServiceRequestNotFound
	}
	return &TransitionError{From: latest.State, Event: event, Detail: "request changed concurrently"}
}

func (u *ServiceRequestUseCase) Cancel(ctx context.Context, requestID string, clientID int64) (entities.ServiceRequest, error) {
	return u.Transition(ctx, TransitionInput{
		RequestID: requestID,
		ActorID:   clientID,
		ActorRole: entities.RoleClient,
		Event:     entities.EventCancel,
	})
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, entities.NotificationKind, *entities.ServiceRequest) {}
