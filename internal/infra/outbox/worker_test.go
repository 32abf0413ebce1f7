package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	queue  []*EventDocument
	sent   []string
	failed map[string]time.Time
}

func (s *fakeStore) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	if len(s.queue) == 0 {
		return nil, nil
	}
	doc := s.queue[0]
	s.queue = s.queue[1:]
	return doc, nil
}

func (s *fakeStore) MarkSent(ctx context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	if s.failed == nil {
		s.failed = map[string]time.Time{}
	}
	s.failed[id] = next
	return nil
}

type published struct {
	topic, key string
	payload    []byte
	headers    map[string]string
}

type fakeProducer struct {
	err  error
	msgs []published
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func quoteDoc(id string) *EventDocument {
	return &EventDocument{
		ID:         id,
		Name:       "quote.issued",
		Payload:    []byte(`{"quote_id":"` + id + `"}`),
		Aggregate:  id,
		OccurredAt: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}
}

func TestDrainPublishesCloudEvents(t *testing.T) {
	store := &fakeStore{queue: []*EventDocument{quoteDoc("q-1"), quoteDoc("q-2")}}
	prod := &fakeProducer{}
	w := &Worker{Store: store, Producer: prod, TopicPrefix: "dev.", ID: "w1"}

	n, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"q-1", "q-2"}, store.sent)

	require.Len(t, prod.msgs, 2)
	msg := prod.msgs[0]
	assert.Equal(t, "dev.quote.events.v1", msg.topic)
	assert.Equal(t, "q-1", msg.key)
	assert.Equal(t, "application/cloudevents+json", msg.headers["content-type"])

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &envelope))
	assert.Equal(t, "quote.issued.v1", envelope["type"])
	assert.Equal(t, "app://stayquote", envelope["source"])
	assert.Equal(t, "00-abc-def-01", envelope["traceparent"])
	assert.Equal(t, "q-1", envelope["data"].(map[string]any)["quote_id"])
}

func TestDrainReschedulesOnPublishFailure(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	doc := quoteDoc("q-1")
	doc.Attempts = 1
	store := &fakeStore{queue: []*EventDocument{doc}}
	w := &Worker{
		Store:    store,
		Producer: &fakeProducer{err: errors.New("broker down")},
		Backoff:  []time.Duration{time.Second, 5 * time.Second},
		Now:      func() time.Time { return now },
	}

	n, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.sent)
	assert.Equal(t, now.Add(5*time.Second), store.failed["q-1"])
}

func TestRunRequiresDependencies(t *testing.T) {
	err := (&Worker{}).Run(context.Background())
	assert.ErrorIs(t, err, ErrWorkerNotConfigured)
}

func TestNextRetryClampsToLastBackoff(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	w := &Worker{Backoff: []time.Duration{time.Second}, Now: func() time.Time { return now }}
	assert.Equal(t, now.Add(time.Second), w.nextRetry(7))
	w.Backoff = nil
	assert.Equal(t, now.Add(5*time.Second), w.nextRetry(0))
}
