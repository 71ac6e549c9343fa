package entity

import (
	"fmt"
	"sync"

	"github.com/c360/transitsim/errors"
)

// DefaultStopCapacity is the passenger capacity of a stop unless overridden.
const DefaultStopCapacity = 50

// Stop is a served bus stop. It tracks the passengers present and
// waiting, the buses currently admitted for service, and a FIFO queue of
// buses waiting for admission.
//
// The waiting list doubles as the boarding priority: passengers board in
// arrival order.
type Stop struct {
	Node

	// Capacity bounds the passengers present at the stop
	Capacity int
	// AdmitCapacity is the number of buses served concurrently
	AdmitCapacity int

	smu       sync.Mutex
	present   []*Passenger
	waiting   []*Passenger
	queue     []*Bus
	admitted  map[*Bus]struct{}
	neighbors map[*Stop]struct{}
	parent    *Node
}

// NewStop creates a stop with the default capacities
func NewStop(name string) *Stop {
	return &Stop{
		Node:          newNode(name, KindStop),
		Capacity:      DefaultStopCapacity,
		AdmitCapacity: 1,
		admitted:      make(map[*Bus]struct{}),
		neighbors:     make(map[*Stop]struct{}),
	}
}

// String implements fmt.Stringer
func (s *Stop) String() string {
	s.smu.Lock()
	defer s.smu.Unlock()
	return fmt.Sprintf("Stop %s: passengers %d/%d, waiting %d, admitted %d, queued %d",
		s.Name, len(s.present), s.Capacity, len(s.waiting), len(s.admitted), len(s.queue))
}

// Parent returns the station or intersection node owning this stop, if any
func (s *Stop) Parent() *Node {
	s.smu.Lock()
	defer s.smu.Unlock()
	return s.parent
}

func (s *Stop) setParent(n *Node) {
	s.smu.Lock()
	defer s.smu.Unlock()
	s.parent = n
}

// AddNeighbor creates a bidirectional neighbor relation between two stops
func (s *Stop) AddNeighbor(other *Stop) bool {
	if other == nil || other == s {
		return false
	}

	first, second := s, other
	if second.ID < first.ID {
		first, second = second, first
	}
	first.smu.Lock()
	defer first.smu.Unlock()
	second.smu.Lock()
	defer second.smu.Unlock()

	if _, ok := s.neighbors[other]; ok {
		return false
	}
	s.neighbors[other] = struct{}{}
	other.neighbors[s] = struct{}{}
	return true
}

// IsNeighbor reports whether other is directly reachable from this stop
func (s *Stop) IsNeighbor(other *Stop) bool {
	s.smu.Lock()
	defer s.smu.Unlock()
	_, ok := s.neighbors[other]
	return ok
}

// Neighbors returns the neighboring stops
func (s *Stop) Neighbors() []*Stop {
	s.smu.Lock()
	defer s.smu.Unlock()
	out := make([]*Stop, 0, len(s.neighbors))
	for stop := range s.neighbors {
		out = append(out, stop)
	}
	return out
}

// AddPassenger places a passenger at this stop: present and waiting.
// Used at seed time and when a passenger alights for a transfer.
func (s *Stop) AddPassenger(p *Passenger) error {
	if p == nil {
		return errors.ErrNotPresent
	}
	s.smu.Lock()
	defer s.smu.Unlock()

	if len(s.present)+1 > s.Capacity {
		return errors.ErrStopFull
	}
	s.present = append(s.present, p)
	s.waiting = append(s.waiting, p)
	p.setStop(s)
	return nil
}

// RemovePassenger removes a passenger from both the present and waiting lists
func (s *Stop) RemovePassenger(p *Passenger) bool {
	s.smu.Lock()
	defer s.smu.Unlock()
	return s.removePassengerLocked(p)
}

func (s *Stop) removePassengerLocked(p *Passenger) bool {
	removed := false
	s.present, removed = removeFromSlice(s.present, p)
	s.waiting, _ = removeFromSlice(s.waiting, p)
	return removed
}

// Present returns a snapshot of the passengers at the stop
func (s *Stop) Present() []*Passenger {
	s.smu.Lock()
	defer s.smu.Unlock()
	out := make([]*Passenger, len(s.present))
	copy(out, s.present)
	return out
}

// Waiting returns a snapshot of the waiting passengers in arrival order
func (s *Stop) Waiting() []*Passenger {
	s.smu.Lock()
	defer s.smu.Unlock()
	out := make([]*Passenger, len(s.waiting))
	copy(out, s.waiting)
	return out
}

// WaitingCount returns the number of waiting passengers
func (s *Stop) WaitingCount() int {
	s.smu.Lock()
	defer s.smu.Unlock()
	return len(s.waiting)
}

// Occupied reports whether the stop is serving at full bus capacity
func (s *Stop) Occupied() bool {
	s.smu.Lock()
	defer s.smu.Unlock()
	return len(s.admitted) >= s.AdmitCapacity
}

// BusArrival handles a bus reaching this stop. The bus is admitted when
// service capacity allows, otherwise appended to the FIFO wait queue.
// Returns true when the bus was admitted immediately.
func (s *Stop) BusArrival(b *Bus) bool {
	if b == nil {
		return false
	}
	s.smu.Lock()
	defer s.smu.Unlock()

	if _, ok := s.admitted[b]; ok {
		return true
	}
	if len(s.admitted) >= s.AdmitCapacity {
		for _, queued := range s.queue {
			if queued == b {
				return false
			}
		}
		s.queue = append(s.queue, b)
		return false
	}
	s.admitted[b] = struct{}{}
	return true
}

// BusDeparture removes a bus from the admitted set. When capacity frees
// up, the next queued bus is admitted immediately in FIFO order.
func (s *Stop) BusDeparture(b *Bus) bool {
	s.smu.Lock()
	defer s.smu.Unlock()

	if _, ok := s.admitted[b]; !ok {
		return false
	}
	delete(s.admitted, b)

	if len(s.admitted) < s.AdmitCapacity && len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.admitted[next] = struct{}{}
	}
	return true
}

// AdmitNext dequeues and admits the next waiting bus if capacity allows.
// Used by the stop agent to drain backlog.
func (s *Stop) AdmitNext() (*Bus, bool) {
	s.smu.Lock()
	defer s.smu.Unlock()

	if len(s.admitted) >= s.AdmitCapacity || len(s.queue) == 0 {
		return nil, false
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	s.admitted[next] = struct{}{}
	return next, true
}

// IsAdmitted reports whether the bus is currently being served here.
// A bus sitting in the wait queue is present but not admitted.
func (s *Stop) IsAdmitted(b *Bus) bool {
	s.smu.Lock()
	defer s.smu.Unlock()
	_, ok := s.admitted[b]
	return ok
}

// Admitted returns the buses currently being served
func (s *Stop) Admitted() []*Bus {
	s.smu.Lock()
	defer s.smu.Unlock()
	out := make([]*Bus, 0, len(s.admitted))
	for b := range s.admitted {
		out = append(out, b)
	}
	return out
}

// Queued returns the buses waiting for admission in FIFO order
func (s *Stop) Queued() []*Bus {
	s.smu.Lock()
	defer s.smu.Unlock()
	out := make([]*Bus, len(s.queue))
	copy(out, s.queue)
	return out
}

func removeFromSlice[T comparable](list []T, item T) ([]T, bool) {
	for i, v := range list {
		if v == item {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}
