package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/transitsim/entity"
	"github.com/c360/transitsim/errors"
)

// recordingEvents captures bus events for assertions.
type recordingEvents struct {
	mu        sync.Mutex
	arrivals  []string
	departs   []string
	boards    []string
	alights   []string
	wraps     int
	switches  int
}

func (r *recordingEvents) Arrived(_ *entity.Bus, stop *entity.Stop, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.arrivals = append(r.arrivals, stop.Name)
}

func (r *recordingEvents) Departed(_ *entity.Bus, from, _ *entity.Stop, wrapped bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.departs = append(r.departs, from.Name)
	if wrapped {
		r.wraps++
	}
}

func (r *recordingEvents) Boarded(_ *entity.Bus, _ *entity.Stop, p *entity.Passenger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boards = append(r.boards, p.Name)
}

func (r *recordingEvents) Alighted(_ *entity.Bus, _ *entity.Stop, p *entity.Passenger, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alights = append(r.alights, p.Name)
}

func (r *recordingEvents) RouteSwitched(*entity.Bus, *entity.Route, *entity.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.switches++
}

// routeFixture builds a three-stop route A -> B -> C.
func routeFixture(t *testing.T) (*entity.Route, []*entity.Stop) {
	t.Helper()
	a := entity.NewStop("A")
	b := entity.NewStop("B")
	c := entity.NewStop("C")
	a.AddNeighbor(b)
	b.AddNeighbor(c)

	r, err := entity.NewRoute([]*entity.Stop{a, b, c}, nil, nil)
	require.NoError(t, err)
	return r, []*entity.Stop{a, b, c}
}

func TestBusCycle_SingleHopRide(t *testing.T) {
	route, stops := routeFixture(t)

	bus := entity.NewBus("bus-1", "regular", 20)
	bus.SetRoute(route)

	p := entity.NewPassenger("rider", "Regular", entity.StopDestination(stops[2]))
	require.NoError(t, stops[0].AddPassenger(p))

	events := &recordingEvents{}
	a := NewBus(bus, events, nil, nil, Pacing{})

	// Cycle 1: enter service at the first stop
	require.NoError(t, a.cycle())
	assert.Equal(t, stops[0], bus.CurrentStop())

	// Cycle 2: board the rider, advance to B
	require.NoError(t, a.cycle())
	assert.Equal(t, []string{"rider"}, events.boards)
	assert.Equal(t, entity.StateInBus, p.State())
	assert.Equal(t, stops[1], bus.CurrentStop())

	// Cycle 3: advance to C
	require.NoError(t, a.cycle())
	assert.Equal(t, stops[2], bus.CurrentStop())

	// Cycle 4: alight at the destination
	require.NoError(t, a.cycle())
	assert.Equal(t, []string{"rider"}, events.alights)
	assert.Equal(t, entity.StateArrived, p.State())
	assert.Equal(t, stops[2], p.CurrentStop())
	assert.Empty(t, bus.Passengers())
}

func TestBusCycle_WrapAtRouteEnd(t *testing.T) {
	route, stops := routeFixture(t)
	bus := entity.NewBus("bus-1", "regular", 20)
	bus.SetRoute(route)

	events := &recordingEvents{}
	a := NewBus(bus, events, nil, nil, Pacing{})

	// Enter service, then ride one full lap
	require.NoError(t, a.cycle())
	require.NoError(t, a.cycle())
	require.NoError(t, a.cycle())
	require.NoError(t, a.cycle())

	assert.Equal(t, stops[0], bus.CurrentStop())
	assert.Equal(t, 1, events.wraps)
	assert.Equal(t, []string{"A", "B", "C", "A"}, events.arrivals)
}

func TestBusCycle_NoRouteIsFatal(t *testing.T) {
	bus := entity.NewBus("bus-1", "regular", 20)
	a := NewBus(bus, nil, nil, nil, Pacing{})

	err := a.cycle()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoRouteAssigned)
	assert.True(t, errors.IsFatal(err))
}

func TestBusCycle_OffRouteIsFatal(t *testing.T) {
	route, _ := routeFixture(t)
	bus := entity.NewBus("bus-1", "regular", 20)
	bus.SetRoute(route)
	bus.SetCurrentStop(entity.NewStop("elsewhere"))

	a := NewBus(bus, nil, nil, nil, Pacing{})
	err := a.cycle()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrStopNotOnRoute)
	assert.True(t, errors.IsFatal(err))
}

func TestBusCycle_HoldsWhileQueued(t *testing.T) {
	route, stops := routeFixture(t)

	blocker := entity.NewBus("blocker", "regular", 20)
	require.True(t, stops[1].BusArrival(blocker))

	bus := entity.NewBus("bus-1", "regular", 20)
	bus.SetRoute(route)
	events := &recordingEvents{}
	a := NewBus(bus, events, nil, nil, Pacing{})

	require.NoError(t, a.cycle()) // enter at A
	require.NoError(t, a.cycle()) // advance to B, queued behind blocker
	assert.Equal(t, stops[1], bus.CurrentStop())
	require.False(t, stops[1].IsAdmitted(bus))

	// Queued: the bus holds position instead of advancing
	require.NoError(t, a.cycle())
	assert.Equal(t, stops[1], bus.CurrentStop())

	// Blocker leaves, admission transfers, service resumes
	require.True(t, stops[1].BusDeparture(blocker))
	require.True(t, stops[1].IsAdmitted(bus))
	require.NoError(t, a.cycle())
	assert.Equal(t, stops[2], bus.CurrentStop())
}

func TestBusCycle_SkipsRidersHeadedElsewhere(t *testing.T) {
	route, stops := routeFixture(t)
	bus := entity.NewBus("bus-1", "regular", 20)
	bus.SetRoute(route)

	// Destination behind the bus once it reaches B
	backward := entity.NewPassenger("backward", "Regular", entity.StopDestination(stops[0]))
	require.NoError(t, stops[1].AddPassenger(backward))

	a := NewBus(bus, nil, nil, nil, Pacing{})
	require.NoError(t, a.cycle()) // enter at A
	require.NoError(t, a.cycle()) // advance to B
	require.NoError(t, a.cycle()) // B: no eligible riders, advance to C

	assert.Equal(t, entity.StateWaiting, backward.State())
	assert.Empty(t, bus.Passengers())
}

func TestBusCycle_SwitchesToContinuingRoute(t *testing.T) {
	ix := entity.NewIntersection("X")
	transfer := entity.NewStop("X/transfer")
	ix.AttachStop(transfer)

	a := entity.NewStop("A")
	a.AddNeighbor(transfer)
	leg1, err := entity.NewRoute([]*entity.Stop{a, transfer}, nil, &ix.Node)
	require.NoError(t, err)

	d := entity.NewStop("D")
	transfer.AddNeighbor(d)
	leg2, err := entity.NewRoute([]*entity.Stop{transfer, d}, &ix.Node, nil)
	require.NoError(t, err)

	bus := entity.NewBus("bus-1", "regular", 20)
	bus.SetRoute(leg1)
	events := &recordingEvents{}
	ag := NewBus(bus, events, nil, nil, Pacing{})

	require.NoError(t, ag.cycle()) // enter at A
	require.NoError(t, ag.cycle()) // advance to the transfer stop

	assert.Equal(t, transfer, bus.CurrentStop())
	assert.Equal(t, leg2, bus.Route())
	assert.Equal(t, 1, events.switches)
}

func TestBusRun_StopsOnCancel(t *testing.T) {
	route, _ := routeFixture(t)
	bus := entity.NewBus("bus-1", "regular", 20)
	bus.SetRoute(route)

	a := NewBus(bus, nil, nil, nil, Pacing{Min: time.Millisecond, Max: 2 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bus agent did not stop on cancellation")
	}
}
