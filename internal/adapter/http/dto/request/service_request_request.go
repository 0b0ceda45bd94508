package request

import (
	"errors"
	"strings"
	"time"

	"contacto_profesionales/internal/domain/entities"
	"contacto_profesionales/internal/usecase"
)

const (
	serviceDateLayout = "2006-01-02"
	serviceTimeLayout = "15:04"
)

var (
	ErrInvalidServiceDate = errors.New("service_date must be YYYY-MM-DD")
	ErrInvalidServiceTime = errors.New("service_time must be HH:mm")
)

// CreateServiceRequestRequest is the payload a client posts to open a request.
// The client id is taken from the caller's token, never from the body.
type CreateServiceRequestRequest struct {
	ProfessionalID  int64    `json:"professional_id" binding:"required"`
	Description     string   `json:"description" binding:"required"`
	EstimatedBudget float64  `json:"estimated_budget"`
	Modality        string   `json:"modality" enums:"on_site,remote"`
	Address         string   `json:"address"`
	District        string   `json:"district"`
	PostalCode      string   `json:"postal_code"`
	Reference       string   `json:"reference"`
	ServiceDate     string   `json:"service_date" example:"2026-10-19"`
	ServiceTime     string   `json:"service_time" example:"14:30"`
	Urgency         string   `json:"urgency" enums:"normal,urgent"`
	AdditionalNotes string   `json:"additional_notes"`
	PhotoURLs       []string `json:"photo_urls"`
}

// ResolveServiceDate reads service_date and the optional service_time as wall-clock
// values in loc (UTC when nil) and returns the instant in UTC.
// An empty date resolves to the zero time so the use case reports the missing field.
func (r CreateServiceRequestRequest) ResolveServiceDate(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date := strings.TrimSpace(r.ServiceDate)
	if date == "" {
		return time.Time{}, nil
	}
	day, err := time.ParseInLocation(serviceDateLayout, date, loc)
	if err != nil {
		return time.Time{}, ErrInvalidServiceDate
	}

	clock := strings.TrimSpace(r.ServiceTime)
	if clock == "" {
		return day.UTC(), nil
	}
	tod, err := time.Parse(serviceTimeLayout, clock)
	if err != nil {
		return time.Time{}, ErrInvalidServiceTime
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), 0, 0, loc).UTC(), nil
}

func (r CreateServiceRequestRequest) ToInput(clientID int64, loc *time.Location) (usecase.CreateServiceRequestInput, error) {
	serviceDate, err := r.ResolveServiceDate(loc)
	if err != nil {
		return usecase.CreateServiceRequestInput{}, err
	}
	return usecase.CreateServiceRequestInput{
		ClientID:        clientID,
		ProfessionalID:  r.ProfessionalID,
		Description:     r.Description,
		EstimatedBudget: r.EstimatedBudget,
		Modality:        entities.ServiceModality(strings.ToLower(strings.TrimSpace(r.Modality))),
		Address:         r.Address,
		District:        r.District,
		PostalCode:      r.PostalCode,
		Reference:       r.Reference,
		ServiceDate:     serviceDate,
		Urgency:         entities.Urgency(strings.ToLower(strings.TrimSpace(r.Urgency))),
		AdditionalNotes: r.AdditionalNotes,
		PhotoURLs:       r.PhotoURLs,
	}, nil
}
