package response

import (
	"testing"

	"contacto_profesionales/internal/domain/entities"
)

func TestFromServiceRequest(t *testing.T) {
	pending := entities.ServiceRequest{ID: "sr-1", State: entities.StatePending, Active: true}
	res := FromServiceRequest(pending)
	if res.PhotoURLs == nil || len(res.AvailableEvents) != 3 {
		t.Fatalf("unexpected response: %+v", res)
	}

	cancelled := entities.ServiceRequest{ID: "sr-2", State: entities.StateCancelled}
	if got := FromServiceRequest(cancelled).AvailableEvents; got == nil || len(got) != 0 {
		t.Fatalf("expected no events for an inactive request, got %v", got)
	}
}

func TestFromServiceRequests(t *testing.T) {
	list := FromServiceRequests(nil)
	if list.Items == nil || list.Count != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}

	list = FromServiceRequests([]entities.ServiceRequest{{ID: "a"}, {ID: "b"}})
	if list.Count != 2 || list.Items[1].ID != "b" {
		t.Fatalf("unexpected list: %+v", list)
	}
}
