package invitation

import (
	"context"
	"time"
)

type EventType string

const (
	EventCreated   EventType = "created"
	EventAccepted  EventType = "accepted"
	EventDeclined  EventType = "declined"
	EventCancelled EventType = "cancelled"
)

// Event describes a committed invitation transition.
type Event struct {
	Type         EventType `json:"type"`
	HouseholdID  int64     `json:"household_id"`
	FromPersonID int64     `json:"from_person_id"`
	ToPersonID   int64     `json:"to_person_id"`
	ActorID      int64     `json:"actor_id"`
	InviteeEmail string    `json:"-"`
	At           time.Time `json:"at"`
}

// Notifier receives events after their transaction has committed. It must
// not block for long; delivery failures are the notifier's to log.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Notifiers fans an event out to several notifiers in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, ev Event) {
	for _, n := range ns {
		n.Notify(ctx, ev)
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) {}
