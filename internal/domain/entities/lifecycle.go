package entities

// Event is something an actor asks to happen to a service request.
type Event string

const (
	EventAccept   Event = "accept"
	EventReject   Event = "reject"
	EventCancel   Event = "cancel"
	EventComplete Event = "complete"
)

func (e Event) IsValid() bool {
	switch e {
	case EventAccept, EventReject, EventCancel, EventComplete:
		return true
	}
	return false
}

// ActorRole is the side of the request an actor speaks for. It is passed in
// explicitly by the caller and never derived from the record itself.
type ActorRole string

const (
	RoleClient       ActorRole = "client"
	RoleProfessional ActorRole = "professional"
)

func (r ActorRole) IsValid() bool {
	return r == RoleClient || r == RoleProfessional
}

// Transition is one edge of the lifecycle state machine.
type Transition struct {
	From  RequestState
	Event Event
	To    RequestState
	// Actor is the only role allowed to fire Event from From.
	Actor           ActorRole
	SetsRespondedAt bool
	Deactivates     bool
	Notification    NotificationKind
}

var transitions = []Transition{
	{From: StatePending, Event: EventAccept, To: StateAccepted, Actor: RoleProfessional, SetsRespondedAt: true, Notification: NotificationAccepted},
	{From: StatePending, Event: EventReject, To: StateRejected, Actor: RoleProfessional, SetsRespondedAt: true, Notification: NotificationRejected},
	{From: StatePending, Event: EventCancel, To: StateCancelled, Actor: RoleClient, Deactivates: true, Notification: NotificationCancelled},
	{From: StateAccepted, Event: EventComplete, To: StateCompleted, Actor: RoleProfessional, Notification: NotificationCompleted},
}

// LookupTransition returns the edge leaving from on event, if there is one.
func LookupTransition(from RequestState, event Event) (Transition, bool) {
	for _, t := range transitions {
		if t.From == from && t.Event == event {
			return t, true
		}
	}
	return Transition{}, false
}

// AvailableEvents lists the events that can be fired from state, in table order.
func AvailableEvents(state RequestState) []Event {
	var events []Event
	for _, t := range transitions {
		if t.From == state {
			events = append(events, t.Event)
		}
	}
	return events
}
