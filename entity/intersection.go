package entity

// Intersection is a junction owning transfer stops. Routes chain through
// intersections, and passengers transfer between routes at their stops.
type Intersection struct {
	Node
}

// NewIntersection creates a named intersection with no stops attached yet
func NewIntersection(name string) *Intersection {
	return &Intersection{Node: newNode(name, KindIntersection)}
}

// BusesPresent counts the buses admitted across the intersection's stops
func (ix *Intersection) BusesPresent() int {
	total := 0
	for _, s := range ix.Stops() {
		total += len(s.Admitted())
	}
	return total
}

// ContinuingRoutes returns the routes starting at this intersection whose
// first stop is from, excluding the given route. These are the candidates
// a bus may switch onto after arriving at from.
func (ix *Intersection) ContinuingRoutes(from *Stop, exclude *Route) []*Route {
	return ContinuingRoutesAt(&ix.Node, from, exclude)
}

// RouteToDestination looks for an alternate active route from this
// intersection that reaches the destination. Used for transfer decisions.
func (ix *Intersection) RouteToDestination(dest Destination, exclude *Route) (*Route, bool) {
	return RouteToDestinationAt(&ix.Node, dest, exclude)
}

// ContinuingRoutesAt is ContinuingRoutes for a bare node, used by agents
// that only hold a stop's parent. Non-intersection nodes yield nothing
// useful since routes start where chains begin.
func ContinuingRoutesAt(n *Node, from *Stop, exclude *Route) []*Route {
	if n == nil {
		return nil
	}
	var out []*Route
	for _, r := range n.RoutesFrom() {
		if r == exclude || !r.Active() {
			continue
		}
		if r.First() == from {
			out = append(out, r)
		}
	}
	return out
}

// RouteToDestinationAt is RouteToDestination for a bare node
func RouteToDestinationAt(n *Node, dest Destination, exclude *Route) (*Route, bool) {
	if n == nil {
		return nil, false
	}
	for _, r := range n.RoutesFrom() {
		if r == exclude || !r.Active() {
			continue
		}
		for _, s := range dest.ResolvedStops() {
			if r.Contains(s) {
				return r, true
			}
		}
	}
	return nil, false
}
