package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stayquote/internal/domain/shared/events"
)

// ContentTypeHeader names the payload encoding on every record.
const ContentTypeHeader = "content-type"

// EventRecord is one encoded domain event waiting for delivery. ID doubles as
// the dedupe key: stores treat a second Add with the same ID as done.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals the event itself as the record payload. Events
// that carry their own ID keep it; others get one from IDGenerator.
type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("encode %s: %w", ev.EventName(), err)
	}
	return EventRecord{
		ID:         e.recordID(ev),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{ContentTypeHeader: "application/json"},
	}, nil
}

func (e JSONEventEncoder) recordID(ev events.DomainEvent) string {
	if identified, ok := ev.(events.Identified); ok {
		if id := identified.EventID(); id != "" {
			return id
		}
	}
	if e.IDGenerator != nil {
		return e.IDGenerator()
	}
	return uuid.NewString()
}

// RecordDomainEvents encodes evs and adds them to box in order. It stops at
// the first failure; events added before it stay recorded.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs ...events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return fmt.Errorf("record %s %s: %w", rec.Name, rec.ID, err)
		}
	}
	return nil
}
