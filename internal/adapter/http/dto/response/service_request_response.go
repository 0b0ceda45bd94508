package response

import (
	"time"

	"contacto_profesionales/internal/domain/entities"
)

type ServiceRequestResponse struct {
	ID              string     `json:"id"`
	ClientID        int64      `json:"client_id"`
	ProfessionalID  int64      `json:"professional_id"`
	Description     string     `json:"description"`
	EstimatedBudget float64    `json:"estimated_budget"`
	Modality        string     `json:"modality"`
	Address         string     `json:"address,omitempty"`
	District        string     `json:"district,omitempty"`
	PostalCode      string     `json:"postal_code,omitempty"`
	Reference       string     `json:"reference,omitempty"`
	ServiceDate     time.Time  `json:"service_date"`
	Urgency         string     `json:"urgency"`
	AdditionalNotes string     `json:"additional_notes,omitempty"`
	PhotoURLs       []string   `json:"photo_urls"`
	State           string     `json:"state"`
	Active          bool       `json:"active"`
	RequestedAt     time.Time  `json:"requested_at"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
	// AvailableEvents lists what can still happen to the request; empty once it is final or inactive.
	AvailableEvents []string `json:"available_events"`
}

type ServiceRequestListResponse struct {
	Items []ServiceRequestResponse `json:"items"`
	Count int                      `json:"count"`
}

type PendingCountResponse struct {
	ProfessionalID int64 `json:"professional_id"`
	Pending        int   `json:"pending"`
}

func FromServiceRequest(r entities.ServiceRequest) ServiceRequestResponse {
	photos := r.PhotoURLs
	if photos == nil {
		photos = []string{}
	}
	events := []string{}
	if r.Active {
		for _, e := range entities.AvailableEvents(r.State) {
			events = append(events, string(e))
		}
	}
	return ServiceRequestResponse{
		ID:              r.ID,
		ClientID:        r.ClientID,
		ProfessionalID:  r.ProfessionalID,
		Description:     r.Description,
		EstimatedBudget: r.EstimatedBudget,
		Modality:        string(r.Modality),
		Address:         r.Address,
		District:        r.District,
		PostalCode:      r.PostalCode,
		Reference:       r.Reference,
		ServiceDate:     r.ServiceDate,
		Urgency:         string(r.Urgency),
		AdditionalNotes: r.AdditionalNotes,
		PhotoURLs:       photos,
		State:           string(r.State),
		Active:          r.Active,
		RequestedAt:     r.RequestedAt,
		RespondedAt:     r.RespondedAt,
		UpdatedAt:       r.UpdatedAt,
		AvailableEvents: events,
	}
}

func FromServiceRequests(items []entities.ServiceRequest) ServiceRequestListResponse {
	out := make([]ServiceRequestResponse, 0, len(items))
	for _, r := range items {
		out = append(out, FromServiceRequest(r))
	}
	return ServiceRequestListResponse{Items: out, Count: len(out)}
}
