package adapter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/c360/transitsim/broker"
	"github.com/c360/transitsim/entity"
)

// fakeBus captures publishes and subscriptions synchronously.
type fakeBus struct {
	mu        sync.Mutex
	published []broker.Message
	subs      map[string][]broker.Kind
}

func newFakeBus() *fakeBus {
	return &fakeBus{subs: make(map[string][]broker.Kind)}
}

func (f *fakeBus) Subscribe(id string, _ broker.Handler, kinds ...broker.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[id] = append(f.subs[id], kinds...)
	return nil
}

func (f *fakeBus) Unsubscribe(id string, _ ...broker.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, id)
}

func (f *fakeBus) Publish(msg broker.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeBus) byKind(kind broker.Kind) []broker.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []broker.Message
	for _, msg := range f.published {
		if msg.Kind == kind {
			out = append(out, msg)
		}
	}
	return out
}

// fakeDirectory resolves the entities registered in the fixture.
type fakeDirectory struct {
	stops      map[string]*entity.Stop
	buses      map[string]*entity.Bus
	routes     map[string]*entity.Route
	passengers map[string]*entity.Passenger
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		stops:      make(map[string]*entity.Stop),
		buses:      make(map[string]*entity.Bus),
		routes:     make(map[string]*entity.Route),
		passengers: make(map[string]*entity.Passenger),
	}
}

func (d *fakeDirectory) StopByID(id string) (*entity.Stop, bool) {
	s, ok := d.stops[id]
	return s, ok
}

func (d *fakeDirectory) BusByID(id string) (*entity.Bus, bool) {
	b, ok := d.buses[id]
	return b, ok
}

func (d *fakeDirectory) RouteByID(id string) (*entity.Route, bool) {
	r, ok := d.routes[id]
	return r, ok
}

func (d *fakeDirectory) PassengerByID(id string) (*entity.Passenger, bool) {
	p, ok := d.passengers[id]
	return p, ok
}

// fixture wires a bus admitted at the first stop of an A -> B -> C
// route, with the entities registered in a directory.
type fixture struct {
	dir   *fakeDirectory
	mb    *fakeBus
	route *entity.Route
	stops []*entity.Stop
	bus   *entity.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	a := entity.NewStop("A")
	b := entity.NewStop("B")
	c := entity.NewStop("C")
	a.AddNeighbor(b)
	b.AddNeighbor(c)

	route, err := entity.NewRoute([]*entity.Stop{a, b, c}, nil, nil)
	require.NoError(t, err)

	bus := entity.NewBus("bus-1", "regular", 20)
	bus.SetRoute(route)
	require.True(t, a.BusArrival(bus))
	bus.SetCurrentStop(a)

	dir := newFakeDirectory()
	for _, s := range []*entity.Stop{a, b, c} {
		dir.stops[s.ID] = s
	}
	dir.buses[bus.ID] = bus
	dir.routes[route.ID] = route

	return &fixture{
		dir:   dir,
		mb:    newFakeBus(),
		route: route,
		stops: []*entity.Stop{a, b, c},
		bus:   bus,
	}
}

func (f *fixture) addWaiting(t *testing.T, name string, dest entity.Destination) *entity.Passenger {
	t.Helper()
	p := entity.NewPassenger(name, "Regular", dest)
	require.NoError(t, f.stops[0].AddPassenger(p))
	f.dir.passengers[p.ID] = p
	return p
}
