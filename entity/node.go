package entity

import (
	"sync"

	"github.com/google/uuid"
)

// Kind identifies the role of a graph node in the network.
type Kind int

const (
	// KindStation is a terminal grouping of stops where lines begin and end
	KindStation Kind = iota
	// KindStop is a served bus stop
	KindStop
	// KindIntersection is a junction owning transfer stops between routes
	KindIntersection
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindStation:
		return "station"
	case KindStop:
		return "stop"
	case KindIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// Node is the base graph element embedded by Station, Stop, and
// Intersection. It holds the relational side of the model: symmetric
// connections to other nodes, owned stops, and the routes that start or
// end here.
type Node struct {
	ID   string
	Name string
	Kind Kind

	mu         sync.Mutex
	connected  map[*Node]struct{}
	stops      []*Stop
	routesFrom []*Route
	routesTo   []*Route
}

func newNode(name string, kind Kind) Node {
	return Node{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      kind,
		connected: make(map[*Node]struct{}),
	}
}

// Connect creates a symmetric connection between two nodes.
// Connecting a node to itself is a no-op.
func (n *Node) Connect(other *Node) {
	if other == nil || other == n {
		return
	}

	first, second := n, other
	if second.ID < first.ID {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	n.connected[other] = struct{}{}
	other.connected[n] = struct{}{}
}

// Disconnect removes the connection in both directions
func (n *Node) Disconnect(other *Node) {
	if other == nil || other == n {
		return
	}

	first, second := n, other
	if second.ID < first.ID {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	delete(n.connected, other)
	delete(other.connected, n)
}

// ConnectedTo reports whether a direct connection to other exists
func (n *Node) ConnectedTo(other *Node) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.connected[other]
	return ok
}

// Connected returns the set of directly connected nodes
func (n *Node) Connected() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Node, 0, len(n.connected))
	for node := range n.connected {
		out = append(out, node)
	}
	return out
}

// AttachStop adds a stop to this node's owned stop list and records the
// ownership on the stop.
func (n *Node) AttachStop(s *Stop) {
	if s == nil {
		return
	}
	n.mu.Lock()
	for _, existing := range n.stops {
		if existing == s {
			n.mu.Unlock()
			return
		}
	}
	n.stops = append(n.stops, s)
	n.mu.Unlock()

	s.setParent(n)
}

// Stops returns the stops owned by this node
func (n *Node) Stops() []*Stop {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Stop, len(n.stops))
	copy(out, n.stops)
	return out
}

// RoutesFrom returns the routes starting at this node
func (n *Node) RoutesFrom() []*Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Route, len(n.routesFrom))
	copy(out, n.routesFrom)
	return out
}

// RoutesTo returns the routes ending at this node
func (n *Node) RoutesTo() []*Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Route, len(n.routesTo))
	copy(out, n.routesTo)
	return out
}

func (n *Node) registerRouteStart(r *Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routesFrom = append(n.routesFrom, r)
}

func (n *Node) registerRouteEnd(r *Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routesTo = append(n.routesTo, r)
}
