package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/utils/logging"
)

// Broadcaster delivers domain events to the connections of a target. Each
// event is stamped with the publish time and a sequence number under one
// mutex, and enqueued to every recipient before the next event is stamped,
// so every connection observes events in publish order.
type Broadcaster struct {
	registry *Registry
	now      func() time.Time

	mu  sync.Mutex
	seq uint64
}

var _ interfaces.EventPublisher = &Broadcaster{}

type BroadcasterOption func(*Broadcaster)

// WithBroadcastClock replaces time.Now, for tests
func WithBroadcastClock(now func() time.Time) BroadcasterOption {
	return func(b *Broadcaster) {
		b.now = now
	}
}

func NewBroadcaster(registry *Registry, opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{
		registry: registry,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish stamps a copy of event and enqueues it for every connection of
// target. A target without live connections is not an error. Per-connection
// delivery failures are logged and skipped.
func (b *Broadcaster) Publish(ctx context.Context, event *model.Event, target policy.Target) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stamped := *event
	b.seq++
	stamped.Seq = b.seq
	stamped.Timestamp = b.now()

	frame, err := stamped.Frame()
	if err != nil {
		return goerr.Wrap(err, "failed to encode event", goerr.V("type", event.Type))
	}

	logger := logging.From(ctx)
	for _, conn := range b.registry.resolve(target) {
		if err := conn.deliver(frame); err != nil {
			if errors.Is(err, ErrQueueFull) {
				logger.Warn("dropped event for slow connection",
					"type", stamped.Type,
					"seq", stamped.Seq,
					model.ConnectionIDKey, conn.ID(),
				)
			}
			continue
		}
	}

	return nil
}
