package repository

import (
	"fmt"

	"contacto_profesionales/internal/domain/entities"
)

// checkDecoded rejects stored rows whose enumerations are not known to the domain
// and normalises absent photo lists to an empty slice.
func checkDecoded(r *entities.ServiceRequest) error {
	if !r.State.IsValid() {
		return fmt.Errorf("decode state: unknown value %q", r.State)
	}
	if !r.Modality.IsValid() {
		return fmt.Errorf("decode modality: unknown value %q", r.Modality)
	}
	if !r.Urgency.IsValid() {
		return fmt.Errorf("decode urgency: unknown value %q", r.Urgency)
	}
	if r.PhotoURLs == nil {
		r.PhotoURLs = []string{}
	}
	return nil
}
