package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/transitsim/entity"
)

func TestPassengerCycle_BoardsEligibleBus(t *testing.T) {
	route, stops := routeFixture(t)

	bus := entity.NewBus("bus-1", "regular", 20)
	bus.SetRoute(route)
	require.True(t, stops[0].BusArrival(bus))
	bus.SetCurrentStop(stops[0])

	p := entity.NewPassenger("rider", "Regular", entity.StopDestination(stops[2]))
	require.NoError(t, stops[0].AddPassenger(p))

	a := NewPassenger(p, nil, nil, Pacing{})
	require.NoError(t, a.cycle())

	assert.Equal(t, entity.StateInBus, p.State())
	assert.Equal(t, bus, p.CurrentBus())
}

func TestPassengerCycle_IgnoresWrongDirectionBus(t *testing.T) {
	route, stops := routeFixture(t)

	bus := entity.NewBus("bus-1", "regular", 20)
	bus.SetRoute(route)
	require.True(t, stops[2].BusArrival(bus))
	bus.SetCurrentStop(stops[2])

	// Destination is behind the bus at the terminal
	p := entity.NewPassenger("rider", "Regular", entity.StopDestination(stops[0]))
	require.NoError(t, stops[2].AddPassenger(p))

	a := NewPassenger(p, nil, nil, Pacing{})
	require.NoError(t, a.cycle())

	assert.Equal(t, entity.StateWaiting, p.State())
	assert.Empty(t, bus.Passengers())
}

func TestPassengerCycle_SkipsFullBus(t *testing.T) {
	route, stops := routeFixture(t)

	full := entity.NewBus("full", "mini", 1)
	full.SetRoute(route)
	require.True(t, stops[0].BusArrival(full))
	full.SetCurrentStop(stops[0])

	seated := entity.NewPassenger("seated", "Regular", entity.StopDestination(stops[2]))
	require.NoError(t, stops[0].AddPassenger(seated))
	require.NoError(t, entity.Board(stops[0], full, seated))

	p := entity.NewPassenger("rider", "Regular", entity.StopDestination(stops[2]))
	require.NoError(t, stops[0].AddPassenger(p))

	a := NewPassenger(p, nil, nil, Pacing{})
	require.NoError(t, a.cycle())

	assert.Equal(t, entity.StateWaiting, p.State())
}

func TestPassengerCycle_AlightsAtDestination(t *testing.T) {
	route, stops := routeFixture(t)

	bus := entity.NewBus("bus-1", "regular", 20)
	bus.SetRoute(route)
	require.True(t, stops[0].BusArrival(bus))
	bus.SetCurrentStop(stops[0])

	p := entity.NewPassenger("rider", "Regular", entity.StopDestination(stops[1]))
	require.NoError(t, stops[0].AddPassenger(p))
	require.NoError(t, entity.Board(stops[0], bus, p))

	// Bus reaches the destination stop
	require.True(t, stops[0].BusDeparture(bus))
	require.True(t, stops[1].BusArrival(bus))
	bus.SetCurrentStop(stops[1])

	a := NewPassenger(p, nil, nil, Pacing{})
	require.NoError(t, a.cycle())

	assert.Equal(t, entity.StateArrived, p.State())
	assert.Equal(t, stops[1], p.CurrentStop())
}

func TestPassengerCycle_StaysAboardMidRoute(t *testing.T) {
	route, stops := routeFixture(t)

	bus := entity.NewBus("bus-1", "regular", 20)
	bus.SetRoute(route)
	require.True(t, stops[0].BusArrival(bus))
	bus.SetCurrentStop(stops[0])

	p := entity.NewPassenger("rider", "Regular", entity.StopDestination(stops[2]))
	require.NoError(t, stops[0].AddPassenger(p))
	require.NoError(t, entity.Board(stops[0], bus, p))

	require.True(t, stops[0].BusDeparture(bus))
	require.True(t, stops[1].BusArrival(bus))
	bus.SetCurrentStop(stops[1])

	a := NewPassenger(p, nil, nil, Pacing{})
	require.NoError(t, a.cycle())

	assert.Equal(t, entity.StateInBus, p.State())
}

func TestPassengerRun_ExitsOnArrival(t *testing.T) {
	dest := entity.NewStop("D")
	origin := entity.NewStop("O")
	bus := entity.NewBus("bus-1", "regular", 20)

	// Reach the terminal state through the public exchange path
	p := entity.NewPassenger("rider", "Regular", entity.StopDestination(dest))
	require.NoError(t, origin.AddPassenger(p))
	require.NoError(t, entity.Board(origin, bus, p))
	arrived, err := entity.Alight(dest, bus, p)
	require.NoError(t, err)
	require.True(t, arrived)

	a := NewPassenger(p, nil, nil, Pacing{Min: time.Millisecond, Max: 2 * time.Millisecond})

	done := make(chan struct{})
	go func() {
		a.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("passenger agent did not exit after arrival")
	}
}
