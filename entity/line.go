package entity

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/c360/transitsim/errors"
)

// Line groups an ordered list of routes chained head-to-tail through
// intersections, running between two stations. Buses are assigned to a
// line and rotate over its routes.
type Line struct {
	ID   string
	Name string

	routes []*Route
	start  *Station
	end    *Station

	mu    sync.Mutex
	buses map[*Bus]struct{}
}

// NewLine creates and validates a line over the given route chain
func NewLine(name string, routes []*Route, start, end *Station) (*Line, error) {
	l := &Line{
		ID:     uuid.NewString(),
		Name:   name,
		routes: make([]*Route, len(routes)),
		start:  start,
		end:    end,
		buses:  make(map[*Bus]struct{}),
	}
	copy(l.routes, routes)

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks that the routes chain head-to-tail
func (l *Line) Validate() error {
	if len(l.routes) == 0 {
		return errors.WrapFatal(
			fmt.Errorf("line %q has no routes: %w", l.Name, errors.ErrInvalidTopology),
			"Line", "Validate", "route chain")
	}
	for i := 0; i < len(l.routes)-1; i++ {
		if l.routes[i].End() != l.routes[i+1].Start() {
			return errors.WrapFatal(
				fmt.Errorf("line %q: route %d does not chain into route %d: %w",
					l.Name, i, i+1, errors.ErrInvalidTopology),
				"Line", "Validate", "route chain")
		}
	}
	if l.start != nil && l.routes[0].Start() != &l.start.Node {
		return errors.WrapFatal(
			fmt.Errorf("line %q does not start at station %q: %w",
				l.Name, l.start.Name, errors.ErrInvalidTopology),
			"Line", "Validate", "start station")
	}
	if l.end != nil && l.routes[len(l.routes)-1].End() != &l.end.Node {
		return errors.WrapFatal(
			fmt.Errorf("line %q does not end at station %q: %w",
				l.Name, l.end.Name, errors.ErrInvalidTopology),
			"Line", "Validate", "end station")
	}
	return nil
}

// Routes returns the ordered route chain
func (l *Line) Routes() []*Route {
	out := make([]*Route, len(l.routes))
	copy(out, l.routes)
	return out
}

// Start returns the line's first station
func (l *Line) Start() *Station {
	return l.start
}

// End returns the line's last station
func (l *Line) End() *Station {
	return l.end
}

// AssignBus adds a bus to the line's fleet
func (l *Line) AssignBus(b *Bus) {
	if b == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buses[b] = struct{}{}
}

// Buses returns the buses assigned to the line
func (l *Line) Buses() []*Bus {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Bus, 0, len(l.buses))
	for b := range l.buses {
		out = append(out, b)
	}
	return out
}
