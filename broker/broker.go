package broker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/transitsim/errors"
	"github.com/c360/transitsim/metric"
)

// pollInterval bounds how long the consumer sleeps between queue checks
// when no publish notification arrives.
const pollInterval = 100 * time.Millisecond

// Handler receives a delivered message. Returning an error marks the
// delivery failed for this subscriber only; other subscribers and later
// messages are unaffected.
type Handler func(Message) error

type subscription struct {
	id      string
	handler Handler
}

// Broker routes messages from publishers to kind-keyed subscribers
// through a single FIFO queue drained by one consumer goroutine.
// The zero value is not usable; construct with NewBroker and inject it
// into every component that needs messaging.
type Broker struct {
	log     *slog.Logger
	metrics *metric.SimMetrics

	mu          sync.Mutex
	subscribers map[Kind][]subscription
	queue       []Message
	started     bool
	stopping    bool
	cancel      context.CancelFunc
	done        chan struct{}

	notify chan struct{}

	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// NewBroker creates a stopped broker. Metrics may be nil.
func NewBroker(log *slog.Logger, metrics *metric.SimMetrics) *Broker {
	if log == nil {
		log = slog.Default()
	}
	return &Broker{
		log:         log.With("component", "broker"),
		metrics:     metrics,
		subscribers: make(map[Kind][]subscription),
		notify:      make(chan struct{}, 1),
	}
}

// Subscribe registers a handler under id for the given kinds. Delivery
// order follows subscription order per kind. Re-subscribing an existing
// id to a kind replaces its handler in place without losing its
// position.
func (b *Broker) Subscribe(id string, handler Handler, kinds ...Kind) error {
	if id == "" || handler == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Broker", "Subscribe", "subscriber registration")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, kind := range kinds {
		if !kind.Valid() {
			return errors.WrapInvalid(errors.ErrUnknownKind,
				"Broker", "Subscribe", "subscriber registration")
		}
		replaced := false
		for i, sub := range b.subscribers[kind] {
			if sub.id == id {
				b.subscribers[kind][i].handler = handler
				replaced = true
				break
			}
		}
		if !replaced {
			b.subscribers[kind] = append(b.subscribers[kind], subscription{id: id, handler: handler})
		}
		b.metrics.SetSubscribers(kind.String(), len(b.subscribers[kind]))
	}
	return nil
}

// Unsubscribe removes id's registrations for the given kinds, or for
// every kind when none are named.
func (b *Broker) Unsubscribe(id string, kinds ...Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(kinds) == 0 {
		kinds = Kinds()
	}
	for _, kind := range kinds {
		subs := b.subscribers[kind]
		for i, sub := range subs {
			if sub.id == id {
				b.subscribers[kind] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		b.metrics.SetSubscribers(kind.String(), len(b.subscribers[kind]))
	}
}

// Publish validates the message and enqueues it without blocking.
// Messages published before Start are held until the consumer runs.
func (b *Broker) Publish(msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	if b.stopping {
		b.mu.Unlock()
		return errors.WrapTransient(errors.ErrShuttingDown,
			"Broker", "Publish", "message enqueue")
	}
	b.queue = append(b.queue, msg)
	depth := len(b.queue)
	b.mu.Unlock()

	b.metrics.RecordPublished(msg.Kind.String())
	b.metrics.SetQueueDepth(depth)

	select {
	case b.notify <- struct{}{}:
	default:
	}
	return nil
}

// Start launches the consumer goroutine. The broker runs until Stop is
// called or ctx is cancelled.
func (b *Broker) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return errors.Wrap(errors.ErrAlreadyStarted, "Broker", "Start", "consumer launch")
	}
	ctx, b.cancel = context.WithCancel(ctx)
	b.done = make(chan struct{})
	b.started = true
	b.stopping = false

	go b.consume(ctx, b.done)

	b.log.Info("broker started")
	return nil
}

// consume drains the queue, delivering messages in publish order. A
// short poll interval keeps cancellation responsive even when the
// notify signal is missed.
func (b *Broker) consume(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		b.drain()

		select {
		case <-ctx.Done():
			return
		case <-b.notify:
		case <-ticker.C:
		}
	}
}

func (b *Broker) drain() {
	for {
		b.mu.Lock()
		if b.stopping || len(b.queue) == 0 {
			b.mu.Unlock()
			return
		}
		msg := b.queue[0]
		b.queue = b.queue[1:]
		subs := make([]subscription, len(b.subscribers[msg.Kind]))
		copy(subs, b.subscribers[msg.Kind])
		depth := len(b.queue)
		b.mu.Unlock()

		b.metrics.SetQueueDepth(depth)
		for _, sub := range subs {
			b.deliver(msg, sub)
		}
	}
}

// deliver invokes one subscriber, isolating its errors and panics from
// the rest of the delivery fanout.
func (b *Broker) deliver(msg Message, sub subscription) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.RecordDeliveryError(msg.Kind.String())
			b.log.Error("subscriber panicked",
				"subscriber", sub.id,
				"kind", msg.Kind,
				"message_id", msg.ID,
				"panic", r)
		}
	}()

	if err := sub.handler(msg); err != nil {
		b.metrics.RecordDeliveryError(msg.Kind.String())
		b.log.Warn("subscriber rejected message",
			"subscriber", sub.id,
			"kind", msg.Kind,
			"message_id", msg.ID,
			"error", err)
		return
	}
	b.delivered.Add(1)
	b.metrics.RecordDelivered(msg.Kind.String())
}

// Stop shuts the consumer down, waiting up to timeout for it to finish
// the message in flight. Undelivered messages are discarded and counted
// as dropped.
func (b *Broker) Stop(timeout time.Duration) error {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return errors.Wrap(errors.ErrNotStarted, "Broker", "Stop", "consumer shutdown")
	}
	b.stopping = true
	cancel, done := b.cancel, b.done
	b.mu.Unlock()

	cancel()

	select {
	case <-done:
	case <-time.After(timeout):
		return errors.WrapTransient(
			errors.New("consumer did not stop in time"),
			"Broker", "Stop", "consumer shutdown")
	}

	b.mu.Lock()
	discarded := len(b.queue)
	b.queue = nil
	b.started = false
	b.mu.Unlock()

	if discarded > 0 {
		b.dropped.Add(uint64(discarded))
		b.metrics.RecordDropped(discarded)
		b.log.Warn("discarded undelivered messages", "count", discarded)
	}
	b.metrics.SetQueueDepth(0)
	b.log.Info("broker stopped", "delivered", b.delivered.Load(), "dropped", b.dropped.Load())
	return nil
}

// Stats is a point-in-time snapshot of broker state.
type Stats struct {
	QueueDepth  int
	Subscribers map[Kind]int
	Delivered   uint64
	Dropped     uint64
}

// Stats reports queue depth, per-kind subscriber counts, and lifetime
// delivery totals.
func (b *Broker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := make(map[Kind]int, len(b.subscribers))
	for kind, list := range b.subscribers {
		if len(list) > 0 {
			subs[kind] = len(list)
		}
	}
	return Stats{
		QueueDepth:  len(b.queue),
		Subscribers: subs,
		Delivered:   b.delivered.Load(),
		Dropped:     b.dropped.Load(),
	}
}
