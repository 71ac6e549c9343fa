package seed

import (
	"fmt"

	"github.com/c360/transitsim/entity"
	"github.com/c360/transitsim/errors"
)

// Network is a fully built scenario topology, indexed by entity id.
// It implements the adapter.Directory interface.
type Network struct {
	Scenario string

	Stations      map[string]*entity.Station
	Stops         map[string]*entity.Stop
	Intersections map[string]*entity.Intersection
	Routes        map[string]*entity.Route
	Lines         map[string]*entity.Line
	Buses         map[string]*entity.Bus
	Passengers    map[string]*entity.Passenger
}

func newNetwork(scenario string) *Network {
	return &Network{
		Scenario:      scenario,
		Stations:      make(map[string]*entity.Station),
		Stops:         make(map[string]*entity.Stop),
		Intersections: make(map[string]*entity.Intersection),
		Routes:        make(map[string]*entity.Route),
		Lines:         make(map[string]*entity.Line),
		Buses:         make(map[string]*entity.Bus),
		Passengers:    make(map[string]*entity.Passenger),
	}
}

// StopByID implements the directory lookup for stops
func (n *Network) StopByID(id string) (*entity.Stop, bool) {
	s, ok := n.Stops[id]
	return s, ok
}

// BusByID implements the directory lookup for buses
func (n *Network) BusByID(id string) (*entity.Bus, bool) {
	b, ok := n.Buses[id]
	return b, ok
}

// RouteByID implements the directory lookup for routes
func (n *Network) RouteByID(id string) (*entity.Route, bool) {
	r, ok := n.Routes[id]
	return r, ok
}

// PassengerByID implements the directory lookup for passengers
func (n *Network) PassengerByID(id string) (*entity.Passenger, bool) {
	p, ok := n.Passengers[id]
	return p, ok
}

// TotalPassengers returns the number of seeded passengers
func (n *Network) TotalPassengers() int {
	return len(n.Passengers)
}

// Validate checks the structural invariants the agents rely on: every
// station owns at least one stop, every bus has a route, and every
// passenger has a destination and a starting stop.
func (n *Network) Validate() error {
	for _, st := range n.Stations {
		if len(st.Stops()) == 0 {
			return errors.WrapFatal(
				fmt.Errorf("station %q owns no stops: %w", st.Name, errors.ErrInvalidTopology),
				"Network", "Validate", "station check")
		}
	}
	for _, b := range n.Buses {
		if b.Route() == nil {
			return errors.WrapFatal(
				fmt.Errorf("bus %q: %w", b.Name, errors.ErrNoRouteAssigned),
				"Network", "Validate", "bus check")
		}
	}
	for _, p := range n.Passengers {
		if p.Destination.IsZero() {
			return errors.WrapFatal(
				fmt.Errorf("passenger %q has no destination: %w", p.Name, errors.ErrInvalidTopology),
				"Network", "Validate", "passenger check")
		}
		if p.CurrentStop() == nil {
			return errors.WrapFatal(
				fmt.Errorf("passenger %q placed at no stop: %w", p.Name, errors.ErrInvalidTopology),
				"Network", "Validate", "passenger check")
		}
	}
	for _, r := range n.Routes {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	for _, l := range n.Lines {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (n *Network) addStation(st *entity.Station) *entity.Station {
	n.Stations[st.ID] = st
	return st
}

func (n *Network) addStop(s *entity.Stop) *entity.Stop {
	n.Stops[s.ID] = s
	return s
}

func (n *Network) addIntersection(ix *entity.Intersection) *entity.Intersection {
	n.Intersections[ix.ID] = ix
	return ix
}

func (n *Network) addRoute(r *entity.Route) *entity.Route {
	n.Routes[r.ID] = r
	return r
}

func (n *Network) addLine(l *entity.Line) *entity.Line {
	n.Lines[l.ID] = l
	return l
}

func (n *Network) addBus(b *entity.Bus) *entity.Bus {
	n.Buses[b.ID] = b
	return b
}

func (n *Network) addPassenger(p *entity.Passenger) *entity.Passenger {
	n.Passengers[p.ID] = p
	return p
}
