package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "tripdesk/internal/app/outbox"
	"tripdesk/internal/app/uow"
	infraoutbox "tripdesk/internal/infra/outbox"
)

// Outbox buffers records per unit of work and queues them for the relay
// worker once the unit commits. Discard drops the buffer of a failed command.
type Outbox struct {
	mu      sync.Mutex
	pending map[any][]appoutbox.EventRecord
	queue   []*outboxEntry
	now     func() time.Time
}

type outboxEntry struct {
	msg       infraoutbox.Message
	state     string
	nextTry   time.Time
	lastError string
}

func NewOutbox() *Outbox {
	return &Outbox{pending: make(map[any][]appoutbox.EventRecord), now: time.Now}
}

// scope keys the buffer by the unit of work in ctx so concurrent commands
// never flush each other's events.
func scope(ctx context.Context) any {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit
	}
	return struct{}{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := scope(ctx)
	o.pending[key] = append(o.pending[key], record)
	return nil
}

// Flush hands the unit's buffer to the queue. Inside a memory unit the
// records are queued only after Commit applies the writes, so a failed
// version check publishes nothing.
func (o *Outbox) Flush(ctx context.Context) error {
	key := scope(ctx)
	o.mu.Lock()
	records := o.pending[key]
	delete(o.pending, key)
	o.mu.Unlock()
	if len(records) == 0 {
		return nil
	}
	if unit, ok := key.(*Unit); ok {
		return unit.afterCommit(func() { o.enqueue(records) })
	}
	o.enqueue(records)
	return nil
}

func (o *Outbox) enqueue(records []appoutbox.EventRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, rec := range records {
		o.queue = append(o.queue, &outboxEntry{
			msg: infraoutbox.Message{
				ID:         rec.ID,
				Name:       rec.Name,
				Payload:    rec.Payload,
				OccurredAt: rec.OccurredAt,
				Aggregate:  rec.Aggregate,
				Headers:    rec.Headers,
			},
			state:   "NEW",
			nextTry: o.now(),
		})
	}
}

func (o *Outbox) Discard(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, scope(ctx))
}

// Records returns a snapshot of queued messages, oldest first.
func (o *Outbox) Records() []infraoutbox.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]infraoutbox.Message, 0, len(o.queue))
	for _, e := range o.queue {
		out = append(out, e.msg)
	}
	return out
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	for _, e := range o.queue {
		if (e.state == "NEW" || e.state == "FAILED") && !e.nextTry.After(now) {
			e.state = "CLAIMED"
			msg := e.msg
			return &msg, nil
		}
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, e := range o.queue {
		if e.msg.ID == id {
			o.queue = append(o.queue[:i], o.queue[i+1:]...)
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.queue {
		if e.msg.ID == id {
			e.state = "FAILED"
			e.nextTry = next
			e.lastError = errMsg
			e.msg.Attempts++
			return nil
		}
	}
	return nil
}

var _ appoutbox.Outbox = (*Outbox)(nil)
var _ infraoutbox.Queue = (*Outbox)(nil)
