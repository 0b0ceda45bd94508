package entities

import (
	"strings"
	"time"
)

// RequestState represents the lifecycle of a service request.
//
// Domain notes:
//   - pending is the only state a new request can be created in.
//   - rejected, cancelled and completed are final. accepted only moves on to completed.
//   - State is independent from Active: a cancelled request is also deactivated, but
//     "logically removed" and "terminal" are tracked by two different fields.
type RequestState string

const (
	StatePending   RequestState = "pending"
	StateAccepted  RequestState = "accepted"
	StateRejected  RequestState = "rejected"
	StateCancelled RequestState = "cancelled"
	StateCompleted RequestState = "completed"
)

func (s RequestState) IsValid() bool {
	switch s {
	case StatePending, StateAccepted, StateRejected, StateCancelled, StateCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no event can move a request out of s.
func (s RequestState) IsTerminal() bool {
	switch s {
	case StateRejected, StateCancelled, StateCompleted:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyUrgent Urgency = "urgent"
)

func (u Urgency) IsValid() bool {
	return u == UrgencyNormal || u == UrgencyUrgent
}

// ServiceModality tells whether the professional has to show up at an address.
type ServiceModality string

const (
	ModalityOnSite ServiceModality = "on_site"
	ModalityRemote ServiceModality = "remote"
)

func (m ServiceModality) IsValid() bool {
	return m == ModalityOnSite || m == ModalityRemote
}

// RequiresAddress reports whether address and district are mandatory.
func (m ServiceModality) RequiresAddress() bool {
	return m != ModalityRemote
}

// ServiceRequest is a client's request for work from a professional.
//
// Storage model:
//   - PK: id (assigned by the store on creation)
//   - client_id / professional_id listings, most recent requested_at first
//
// Client and professional are referenced by id only; their profiles live elsewhere.
type ServiceRequest struct {
	ID             string `json:"id"`
	ClientID       int64  `json:"client_id"`
	ProfessionalID int64  `json:"professional_id"`

	Description     string          `json:"description"`
	EstimatedBudget float64         `json:"estimated_budget"`
	Modality        ServiceModality `json:"modality"`
	Address         string          `json:"address"`
	District        string          `json:"district"`
	PostalCode      string          `json:"postal_code,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	ServiceDate     time.Time       `json:"service_date"`
	Urgency         Urgency         `json:"urgency"`
	AdditionalNotes string          `json:"additional_notes,omitempty"`
	PhotoURLs       []string        `json:"photo_urls"`

	State       RequestState `json:"state"`
	RequestedAt time.Time    `json:"requested_at"`
	RespondedAt *time.Time   `json:"responded_at,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Active      bool         `json:"active"`
}

// PartyID returns the id of the record's party playing role, or 0 for an unknown role.
func (r ServiceRequest) PartyID(role ActorRole) int64 {
	switch role {
	case RoleClient:
		return r.ClientID
	case RoleProfessional:
		return r.ProfessionalID
	}
	return 0
}

// Involves reports whether actorID is the record's party for role.
func (r ServiceRequest) Involves(actorID int64, role ActorRole) bool {
	return actorID > 0 && r.PartyID(role) == actorID
}

// Apply returns a copy of r with the effects of t applied at the given instant.
// It does not check that t starts from r.State; LookupTransition does that.
func (r ServiceRequest) Apply(t Transition, at time.Time) ServiceRequest {
	out := r
	out.PhotoURLs = append([]string{}, r.PhotoURLs...)
	out.State = t.To
	out.UpdatedAt = at
	if t.SetsRespondedAt {
		respondedAt := at
		out.RespondedAt = &respondedAt
	}
	if t.Deactivates {
		out.Active = false
	}
	return out
}

// DescriptionPreview returns at most n runes of the description, marking truncation.
func (r ServiceRequest) DescriptionPreview(n int) string {
	d := strings.TrimSpace(r.Description)
	runes := []rune(d)
	if n <= 0 || len(runes) <= n {
		return d
	}
	return string(runes[:n]) + "..."
}
