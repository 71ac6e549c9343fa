package broker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/transitsim/errors"
)

// collector is a test subscriber that records delivered messages.
type collector struct {
	mu   sync.Mutex
	msgs []Message
}

func (c *collector) handle(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func (c *collector) all() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func startedBroker(t *testing.T) *Broker {
	t.Helper()
	b := NewBroker(nil, nil)
	require.NoError(t, b.Start(context.Background()))
	t.Cleanup(func() { _ = b.Stop(2 * time.Second) })
	return b
}

func TestBroker_DeliversToSubscriber(t *testing.T) {
	b := startedBroker(t)
	var c collector
	require.NoError(t, b.Subscribe("c", c.handle, KindBusArrival))

	require.NoError(t, b.Publish(New("bus-1", BusArrival{BusID: "b1", StopID: "s1"})))

	require.Eventually(t, func() bool { return c.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, KindBusArrival, c.all()[0].Kind)
	assert.Equal(t, "bus-1", c.all()[0].Sender)
}

func TestBroker_FIFOAcrossSenders(t *testing.T) {
	b := startedBroker(t)
	var c collector
	require.NoError(t, b.Subscribe("c", c.handle, KindSystemAlert))

	senders := []string{"alpha", "beta", "gamma"}
	var wantIDs []string
	for i := 0; i < 100; i++ {
		msg := New(senders[i%len(senders)], SystemAlert{Severity: "info", Text: fmt.Sprintf("event %d", i)})
		wantIDs = append(wantIDs, msg.ID)
		require.NoError(t, b.Publish(msg))
	}

	require.Eventually(t, func() bool { return c.len() == 100 }, 5*time.Second, 10*time.Millisecond)

	// Global publish order is preserved, each message delivered once
	got := c.all()
	for i, msg := range got {
		assert.Equal(t, wantIDs[i], msg.ID)
	}
}

func TestBroker_SubscriptionOrder(t *testing.T) {
	b := startedBroker(t)

	var mu sync.Mutex
	var order []string
	record := func(id string) Handler {
		return func(Message) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, id)
			return nil
		}
	}

	require.NoError(t, b.Subscribe("first", record("first"), KindStopStatus))
	require.NoError(t, b.Subscribe("second", record("second"), KindStopStatus))

	require.NoError(t, b.Publish(New("stop-1", StopStatus{StopID: "s1"})))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBroker_ResubscribeKeepsPosition(t *testing.T) {
	b := startedBroker(t)

	var mu sync.Mutex
	var order []string
	record := func(id string) Handler {
		return func(Message) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, id)
			return nil
		}
	}

	require.NoError(t, b.Subscribe("a", record("a-old"), KindSystemAlert))
	require.NoError(t, b.Subscribe("z", record("z"), KindSystemAlert))
	// Re-subscribing replaces the handler but keeps first position
	require.NoError(t, b.Subscribe("a", record("a-new"), KindSystemAlert))

	require.NoError(t, b.Publish(New("x", SystemAlert{Text: "hello"})))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a-new", "z"}, order)
}

func TestBroker_SubscriberFailureIsolation(t *testing.T) {
	b := startedBroker(t)

	failing := func(Message) error { return errors.New("handler refused") }
	panicking := func(Message) error { panic("handler exploded") }
	var c collector

	require.NoError(t, b.Subscribe("failing", failing, KindSystemAlert))
	require.NoError(t, b.Subscribe("panicking", panicking, KindSystemAlert))
	require.NoError(t, b.Subscribe("healthy", c.handle, KindSystemAlert))

	require.NoError(t, b.Publish(New("x", SystemAlert{Text: "one"})))
	require.NoError(t, b.Publish(New("x", SystemAlert{Text: "two"})))

	// The healthy subscriber still receives every message
	require.Eventually(t, func() bool { return c.len() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := startedBroker(t)
	var c collector
	require.NoError(t, b.Subscribe("c", c.handle, KindBusArrival, KindBusDeparture))

	b.Unsubscribe("c", KindBusArrival)
	stats := b.Stats()
	assert.Zero(t, stats.Subscribers[KindBusArrival])
	assert.Equal(t, 1, stats.Subscribers[KindBusDeparture])

	// No kinds named: drop every remaining registration
	b.Unsubscribe("c")
	assert.Empty(t, b.Stats().Subscribers)
}

func TestBroker_StartTwice(t *testing.T) {
	b := startedBroker(t)
	err := b.Start(context.Background())
	assert.ErrorIs(t, err, errors.ErrAlreadyStarted)
}

func TestBroker_StopWithoutStart(t *testing.T) {
	b := NewBroker(nil, nil)
	err := b.Stop(time.Second)
	assert.ErrorIs(t, err, errors.ErrNotStarted)
}

func TestBroker_StopDiscardsUndelivered(t *testing.T) {
	b := NewBroker(nil, nil)
	require.NoError(t, b.Start(context.Background()))

	gate := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	blocker := func(Message) error {
		once.Do(func() { close(entered) })
		<-gate
		return nil
	}
	require.NoError(t, b.Subscribe("blocker", blocker, KindSystemAlert))

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Publish(New("x", SystemAlert{Text: "queued"})))
	}

	// First delivery is in flight; the rest sit in the queue
	<-entered

	stopDone := make(chan error, 1)
	go func() { stopDone <- b.Stop(5 * time.Second) }()

	// Publishing during shutdown is refused
	require.Eventually(t, func() bool {
		err := b.Publish(New("x", SystemAlert{Text: "late"}))
		return errors.Is(err, errors.ErrShuttingDown)
	}, 2*time.Second, 10*time.Millisecond)

	close(gate)
	require.NoError(t, <-stopDone)

	stats := b.Stats()
	assert.Equal(t, uint64(2), stats.Dropped)
	assert.Zero(t, stats.QueueDepth)
}

func TestBroker_PublishInvalidMessage(t *testing.T) {
	b := startedBroker(t)
	err := b.Publish(Message{Kind: "bogus", Sender: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownKind)
}

func TestBroker_Stats(t *testing.T) {
	b := startedBroker(t)
	var c collector
	require.NoError(t, b.Subscribe("c", c.handle, KindBusArrival, KindStopStatus))

	require.NoError(t, b.Publish(New("bus-1", BusArrival{BusID: "b1", StopID: "s1"})))
	require.Eventually(t, func() bool { return c.len() == 1 }, 2*time.Second, 10*time.Millisecond)

	stats := b.Stats()
	assert.Equal(t, uint64(1), stats.Delivered)
	assert.Equal(t, 1, stats.Subscribers[KindBusArrival])
	assert.Equal(t, 1, stats.Subscribers[KindStopStatus])
	assert.Zero(t, stats.Dropped)
}
