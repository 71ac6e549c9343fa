package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/transitsim/broker"
	"github.com/c360/transitsim/entity"
)

func TestStopAdapter_AttachSubscribesStopKinds(t *testing.T) {
	f := newFixture(t)
	a := NewStop(f.stops[0], f.mb, f.dir, nil)

	require.NoError(t, a.Attach())
	assert.ElementsMatch(t, stopKinds, f.mb.subs[f.stops[0].ID])
}

func TestStopAdapter_CapacityDrivesBoardingRequests(t *testing.T) {
	f := newFixture(t)
	rider := f.addWaiting(t, "rider", entity.StopDestination(f.stops[2]))
	// Destination behind the route start: never requested
	f.addWaiting(t, "backward", entity.StopDestination(entity.NewStop("off-route")))

	a := NewStop(f.stops[0], f.mb, f.dir, nil)

	msg := broker.New(f.bus.ID, broker.CapacityUpdate{BusID: f.bus.ID, Available: 5})
	require.NoError(t, a.handle(msg))

	cached, ok := a.CapacityFor(f.bus.ID)
	require.True(t, ok)
	assert.Equal(t, 5, cached.Available)

	requests := f.mb.byKind(broker.KindPassengerBoarding)
	require.Len(t, requests, 1)
	payload := requests[0].Payload.(broker.PassengerBoarding)
	assert.Equal(t, rider.ID, payload.PassengerID)
	assert.Equal(t, broker.BoardingRequested, payload.Status)
	assert.Equal(t, f.stops[0].ID, requests[0].Sender)

	// A second snapshot does not duplicate the pending request
	require.NoError(t, a.handle(broker.New(f.bus.ID, broker.CapacityUpdate{BusID: f.bus.ID, Available: 5})))
	assert.Len(t, f.mb.byKind(broker.KindPassengerBoarding), 1)
}

func TestStopAdapter_FullBusRequestsNothing(t *testing.T) {
	f := newFixture(t)
	f.addWaiting(t, "rider", entity.StopDestination(f.stops[2]))
	a := NewStop(f.stops[0], f.mb, f.dir, nil)

	msg := broker.New(f.bus.ID, broker.CapacityUpdate{BusID: f.bus.ID, Available: 0, Full: true})
	require.NoError(t, a.handle(msg))

	assert.Empty(t, f.mb.byKind(broker.KindPassengerBoarding))
}

func TestStopAdapter_ConfirmationClearsPending(t *testing.T) {
	f := newFixture(t)
	rider := f.addWaiting(t, "rider", entity.StopDestination(f.stops[2]))
	a := NewStop(f.stops[0], f.mb, f.dir, nil)

	require.NoError(t, a.handle(broker.New(f.bus.ID, broker.CapacityUpdate{BusID: f.bus.ID, Available: 5})))
	require.Len(t, f.mb.byKind(broker.KindPassengerBoarding), 1)

	confirm := broker.New(f.bus.ID, broker.PassengerBoarding{
		PassengerID: rider.ID,
		BusID:       f.bus.ID,
		StopID:      f.stops[0].ID,
		Status:      broker.BoardingConfirmed,
	})
	require.NoError(t, a.handle(confirm))

	// Pending cleared: the rider is eligible for a new request again
	require.NoError(t, a.handle(broker.New(f.bus.ID, broker.CapacityUpdate{BusID: f.bus.ID, Available: 5})))
	assert.Len(t, f.mb.byKind(broker.KindPassengerBoarding), 2)
}

func TestStopAdapter_DepartureClearsPendingAndPublishesStatus(t *testing.T) {
	f := newFixture(t)
	f.addWaiting(t, "rider", entity.StopDestination(f.stops[2]))
	a := NewStop(f.stops[0], f.mb, f.dir, nil)

	require.NoError(t, a.handle(broker.New(f.bus.ID, broker.CapacityUpdate{BusID: f.bus.ID, Available: 5})))
	require.Len(t, f.mb.byKind(broker.KindPassengerBoarding), 1)

	departure := broker.New(f.bus.ID, broker.BusDeparture{
		BusID:  f.bus.ID,
		StopID: f.stops[0].ID,
	})
	require.NoError(t, a.handle(departure))

	statuses := f.mb.byKind(broker.KindStopStatus)
	require.Len(t, statuses, 1)
	status := statuses[0].Payload.(broker.StopStatus)
	assert.Equal(t, f.stops[0].ID, status.StopID)
	assert.Equal(t, 1, status.Waiting)

	// Pending cleared: a fresh capacity snapshot re-requests boarding
	require.True(t, f.stops[0].BusDeparture(f.bus))
	require.True(t, f.stops[0].BusArrival(f.bus))
	require.NoError(t, a.handle(broker.New(f.bus.ID, broker.CapacityUpdate{BusID: f.bus.ID, Available: 5})))
	assert.Len(t, f.mb.byKind(broker.KindPassengerBoarding), 2)
}

func TestStopAdapter_ArrivalPublishesStatusAndRequests(t *testing.T) {
	f := newFixture(t)
	f.addWaiting(t, "rider", entity.StopDestination(f.stops[2]))
	a := NewStop(f.stops[0], f.mb, f.dir, nil)

	arrival := broker.New(f.bus.ID, broker.BusArrival{
		BusID:    f.bus.ID,
		StopID:   f.stops[0].ID,
		Admitted: true,
	})
	require.NoError(t, a.handle(arrival))

	assert.Len(t, f.mb.byKind(broker.KindStopStatus), 1)
	assert.Len(t, f.mb.byKind(broker.KindPassengerBoarding), 1)
}

func TestStopAdapter_IgnoresOtherStopsTraffic(t *testing.T) {
	f := newFixture(t)
	a := NewStop(f.stops[1], f.mb, f.dir, nil)

	arrival := broker.New(f.bus.ID, broker.BusArrival{
		BusID:    f.bus.ID,
		StopID:   f.stops[0].ID,
		Admitted: true,
	})
	require.NoError(t, a.handle(arrival))
	assert.Empty(t, f.mb.published)
}
