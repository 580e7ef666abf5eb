package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "tripdesk/internal/app/outbox"
	"tripdesk/internal/infra/outbox"
	"tripdesk/internal/infra/storage/memory"
)

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	sent     []published
	failNext int
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.failNext > 0 {
		p.failNext--
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func queued(t *testing.T, box *memory.Outbox, recs ...appoutbox.EventRecord) {
	t.Helper()
	ctx := context.Background()
	for _, rec := range recs {
		require.NoError(t, box.Add(ctx, rec))
	}
	require.NoError(t, box.Flush(ctx))
}

func TestWorkerRelaysCloudEvents(t *testing.T) {
	box := memory.NewOutbox()
	queued(t, box, appoutbox.EventRecord{
		ID:         "evt-1",
		Name:       "booking.requested",
		Payload:    []byte(`{"BookingID":"bk-1","Guests":2}`),
		OccurredAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Aggregate:  "bk-1",
		Headers:    map[string]string{"source": "test"},
	})
	producer := &fakeProducer{}
	w := &outbox.Worker{Queue: box, Producer: producer, TopicPrefix: "tripdesk.", Source: "tripdesk/test"}

	sent, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, producer.sent, 1)

	msg := producer.sent[0]
	assert.Equal(t, "tripdesk.booking.events.v1", msg.topic)
	assert.Equal(t, "bk-1", msg.key)
	assert.Equal(t, "application/cloudevents+json", msg.headers["content-type"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &evt))
	assert.Equal(t, "1.0", evt["specversion"])
	assert.Equal(t, "booking.requested.v1", evt["type"])
	assert.Equal(t, "tripdesk/test", evt["source"])
	assert.Equal(t, "bk-1", evt["subject"])
	assert.Equal(t, map[string]any{"BookingID": "bk-1", "Guests": float64(2)}, evt["data"])

	assert.Empty(t, box.Records(), "sent messages leave the queue")
}

func TestWorkerRetriesFailedMessages(t *testing.T) {
	box := memory.NewOutbox()
	queued(t, box, appoutbox.EventRecord{ID: "evt-1", Name: "listing.published", Payload: []byte(`{}`), Aggregate: "l-1"})
	producer := &fakeProducer{failNext: 1}
	w := &outbox.Worker{Queue: box, Producer: producer, Backoff: []time.Duration{0}}

	sent, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	records := box.Records()
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Attempts)

	sent, err = w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, "listing.events.v1", producer.sent[0].topic)
}

func TestWorkerBacksOffAfterFailure(t *testing.T) {
	box := memory.NewOutbox()
	queued(t, box, appoutbox.EventRecord{ID: "evt-1", Name: "booking.requested", Payload: []byte(`{}`)})
	producer := &fakeProducer{failNext: 1}
	w := &outbox.Worker{Queue: box, Producer: producer, Backoff: []time.Duration{time.Hour}}

	_, err := w.Drain(context.Background())
	require.NoError(t, err)
	sent, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent, "message is not due yet")
}

func TestWorkerRequiresDependencies(t *testing.T) {
	err := (&outbox.Worker{}).Run(context.Background())
	assert.ErrorIs(t, err, outbox.ErrWorkerNotConfigured)
}
