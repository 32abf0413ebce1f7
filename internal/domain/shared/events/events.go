package events

import "time"

// DomainEvent is anything that can be recorded into the outbox.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Identified events carry their own stable ID so that recording the same
// event twice yields a single outbox record.
type Identified interface {
	EventID() string
}

// BaseEvent carries the envelope fields; embedders add the payload.
type BaseEvent struct {
	ID        string    `json:"event_id,omitempty"`
	Name      string    `json:"-"`
	Aggregate string    `json:"-"`
	Time      time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventID() string {
	return e.ID
}

func (e BaseEvent) EventName() string {
	return e.Name
}

func (e BaseEvent) AggregateID() string {
	return e.Aggregate
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Time
}
