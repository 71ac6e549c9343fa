package entity

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/c360/transitsim/errors"
)

// Route is an ordered sequence of at least two stops between a start and
// an end node. The stop sequence is immutable after construction; every
// adjacent pair of stops must be mutual neighbors.
//
// A bus reaching the last stop wraps back to the first: routes are
// circular services, not out-and-back runs. This is deliberate policy,
// not an artifact.
type Route struct {
	ID string

	stops  []*Stop
	start  *Node
	end    *Node
	active atomic.Bool
}

// NewRoute creates and validates a route, registering it with its start
// and end nodes.
func NewRoute(stops []*Stop, start, end *Node) (*Route, error) {
	r := &Route{
		ID:    uuid.NewString(),
		stops: make([]*Stop, len(stops)),
		start: start,
		end:   end,
	}
	copy(r.stops, stops)
	r.active.Store(true)

	if err := r.Validate(); err != nil {
		return nil, err
	}

	if start != nil {
		start.registerRouteStart(r)
	}
	if end != nil {
		end.registerRouteEnd(r)
	}
	return r, nil
}

// Validate checks route geometry: length and stop adjacency
func (r *Route) Validate() error {
	if len(r.stops) < 2 {
		return errors.WrapFatal(errors.ErrRouteTooShort, "Route", "Validate", "stop sequence")
	}
	for i := 0; i < len(r.stops)-1; i++ {
		if !r.stops[i].IsNeighbor(r.stops[i+1]) {
			return errors.WrapFatal(
				fmt.Errorf("stops %q and %q: %w",
					r.stops[i].Name, r.stops[i+1].Name, errors.ErrStopsNotLinked),
				"Route", "Validate", "stop adjacency")
		}
	}
	return nil
}

// Stops returns a copy of the ordered stop sequence
func (r *Route) Stops() []*Stop {
	out := make([]*Stop, len(r.stops))
	copy(out, r.stops)
	return out
}

// Start returns the node the route starts from
func (r *Route) Start() *Node {
	return r.start
}

// End returns the node the route ends at
func (r *Route) End() *Node {
	return r.end
}

// First returns the first stop of the route
func (r *Route) First() *Stop {
	return r.stops[0]
}

// Terminal returns the last stop of the route
func (r *Route) Terminal() *Stop {
	return r.stops[len(r.stops)-1]
}

// Len returns the number of stops on the route
func (r *Route) Len() int {
	return len(r.stops)
}

// IndexOf returns the position of a stop on the route
func (r *Route) IndexOf(s *Stop) (int, bool) {
	for i, stop := range r.stops {
		if stop == s {
			return i, true
		}
	}
	return -1, false
}

// Contains reports whether the route serves the stop
func (r *Route) Contains(s *Stop) bool {
	_, ok := r.IndexOf(s)
	return ok
}

// RemainingFrom returns the stops from current (inclusive) to the end of
// the route. Returns nil when current is not on the route.
func (r *Route) RemainingFrom(current *Stop) []*Stop {
	i, ok := r.IndexOf(current)
	if !ok {
		return nil
	}
	out := make([]*Stop, len(r.stops)-i)
	copy(out, r.stops[i:])
	return out
}

// NextStop returns the stop after current. At the end of the route the
// service wraps to the first stop; wrapped reports when that happened.
func (r *Route) NextStop(current *Stop) (next *Stop, wrapped bool, err error) {
	i, ok := r.IndexOf(current)
	if !ok {
		return nil, false, errors.ErrStopNotOnRoute
	}
	if i == len(r.stops)-1 {
		return r.stops[0], true, nil
	}
	return r.stops[i+1], false, nil
}

// ServesAhead reports whether dest intersects the stops strictly after
// current on the route. Boarding decisions use this so a passenger never
// boards a bus that already passed their destination.
func (r *Route) ServesAhead(current *Stop, dest Destination) bool {
	remaining := r.RemainingFrom(current)
	if len(remaining) <= 1 {
		return false
	}
	for _, s := range remaining[1:] {
		if dest.Contains(s) {
			return true
		}
	}
	return false
}

// Active reports whether the route is in service
func (r *Route) Active() bool {
	return r.active.Load()
}

// SetActive flips the route in or out of service
func (r *Route) SetActive(active bool) {
	r.active.Store(active)
}

// String implements fmt.Stringer
func (r *Route) String() string {
	from, to := "?", "?"
	if r.start != nil {
		from = r.start.Name
	}
	if r.end != nil {
		to = r.end.Name
	}
	return fmt.Sprintf("Route %s: %s -> %s (%d stops)", r.ID[:8], from, to, len(r.stops))
}
