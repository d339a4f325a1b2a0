package memory

import (
	"context"
	"sync"

	"homeport-backend/application/ports"
	"homeport-backend/domain/events"
)

// Notifier records published events in memory. Local development runs on
// it, and tests use it to observe the notification stream.
type Notifier struct {
	mu        sync.Mutex
	published []events.DomainEvent
	failErr   error
}

// NewNotifier creates an empty in-memory notifier
func NewNotifier() *Notifier {
	return &Notifier{}
}

// FailWith makes every subsequent call return err until cleared with nil
func (n *Notifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failErr = err
}

// Published returns a snapshot of everything published so far
func (n *Notifier) Published() []events.DomainEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]events.DomainEvent, len(n.published))
	copy(out, n.published)
	return out
}

// Publish records a single event
func (n *Notifier) Publish(ctx context.Context, event events.DomainEvent) error {
	return n.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch records multiple events
func (n *Notifier) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.failErr != nil {
		return n.failErr
	}

	n.published = append(n.published, batch...)
	return nil
}

var _ ports.Notifier = (*Notifier)(nil)
