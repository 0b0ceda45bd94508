package entities

import "time"

// NotificationKind identifies the lifecycle event a notification reports.
type NotificationKind string

const (
	NotificationNewRequest NotificationKind = "new_request"
	NotificationAccepted   NotificationKind = "accepted"
	NotificationRejected   NotificationKind = "rejected"
	NotificationCancelled  NotificationKind = "cancelled"
	NotificationCompleted  NotificationKind = "completed"
)

const descriptionPreviewLength = 50

// Notification is the channel-agnostic payload handed to every delivery channel.
type Notification struct {
	Kind               NotificationKind `json:"kind"`
	RequestID          string           `json:"request_id"`
	ClientID           int64            `json:"client_id"`
	ProfessionalID     int64            `json:"professional_id"`
	RecipientRole      ActorRole        `json:"recipient_role"`
	RecipientID        int64            `json:"recipient_id"`
	State              RequestState     `json:"state"`
	ServiceDate        time.Time        `json:"service_date"`
	DescriptionPreview string           `json:"description_preview"`
	OccurredAt         time.Time        `json:"occurred_at"`
}

// RecipientRole returns who is told about an event of kind k: the professional
// hears about new and cancelled requests, the client about everything else.
func (k NotificationKind) RecipientRole() ActorRole {
	switch k {
	case NotificationNewRequest, NotificationCancelled:
		return RoleProfessional
	default:
		return RoleClient
	}
}

// NewNotification builds the payload for kind from the request as it is after the event.
func NewNotification(kind NotificationKind, r ServiceRequest, at time.Time) Notification {
	role := kind.RecipientRole()
	return Notification{
		Kind:               kind,
		RequestID:          r.ID,
		ClientID:           r.ClientID,
		ProfessionalID:     r.ProfessionalID,
		RecipientRole:      role,
		RecipientID:        r.PartyID(role),
		State:              r.State,
		ServiceDate:        r.ServiceDate,
		DescriptionPreview: r.DescriptionPreview(descriptionPreviewLength),
		OccurredAt:         at,
	}
}
