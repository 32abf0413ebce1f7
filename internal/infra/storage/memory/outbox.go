package memory

import (
	"context"
	"sync"

	appoutbox "stayquote/internal/app/outbox"
)

// deliveredLimit bounds the history kept for inspection.
const deliveredLimit = 1024

// Sink receives flushed records, e.g. a logger in local mode.
type Sink func(ctx context.Context, records []appoutbox.EventRecord) error

// Outbox keeps events in memory until flushed to the optional sink.
// Records are deduplicated by ID against pending and retained history.
type Outbox struct {
	mu        sync.Mutex
	pending   []appoutbox.EventRecord
	delivered []appoutbox.EventRecord
	seen      map[string]struct{}
	sink      Sink
}

func NewOutbox(sink Sink) *Outbox {
	return &Outbox{sink: sink, seen: make(map[string]struct{})}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if record.ID != "" {
		if _, dup := o.seen[record.ID]; dup {
			return nil
		}
		o.seen[record.ID] = struct{}{}
	}
	o.pending = append(o.pending, record)
	return nil
}

// Flush hands pending records to the sink. On sink failure they stay pending.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.pending) == 0 {
		return nil
	}
	if o.sink != nil {
		if err := o.sink(ctx, o.pending); err != nil {
			return err
		}
	}
	o.delivered = append(o.delivered, o.pending...)
	if over := len(o.delivered) - deliveredLimit; over > 0 {
		for _, rec := range o.delivered[:over] {
			delete(o.seen, rec.ID)
		}
		o.delivered = append([]appoutbox.EventRecord(nil), o.delivered[over:]...)
	}
	o.pending = nil
	return nil
}

// Delivered returns the most recently flushed records.
func (o *Outbox) Delivered() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.delivered...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
