package entity

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/c360/transitsim/errors"
)

// State is a passenger's position in its trip state machine.
type State int

const (
	// StateWaiting means the passenger is at a stop waiting for a bus
	StateWaiting State = iota
	// StateBoarding is the transient state while stepping onto a bus
	StateBoarding
	// StateInBus means the passenger is riding
	StateInBus
	// StateAlighting is the transient state while stepping off a bus
	StateAlighting
	// StateArrived is terminal: the trip is complete
	StateArrived
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateBoarding:
		return "boarding"
	case StateInBus:
		return "in_bus"
	case StateAlighting:
		return "alighting"
	case StateArrived:
		return "arrived"
	default:
		return "unknown"
	}
}

// validTransitions encodes the only reachable state changes:
// WAITING -> BOARDING -> IN_BUS -> ALIGHTING -> WAITING | ARRIVED
var validTransitions = map[State][]State{
	StateWaiting:   {StateBoarding},
	StateBoarding:  {StateInBus},
	StateInBus:     {StateAlighting},
	StateAlighting: {StateWaiting, StateArrived},
	StateArrived:   {},
}

// Passenger is a transient actor travelling toward a destination.
// Exactly one of current stop / current bus is set until the passenger
// arrives.
type Passenger struct {
	ID   string
	Name string
	// Category tags the rider class (Regular, Senior, Student)
	Category    string
	Destination Destination

	mu      sync.Mutex
	state   State
	stop    *Stop
	bus     *Bus
	origin  *Stop
	visited []*Stop
}

// NewPassenger creates a waiting passenger with no stop assigned yet
func NewPassenger(name, category string, dest Destination) *Passenger {
	return &Passenger{
		ID:          uuid.NewString(),
		Name:        name,
		Category:    category,
		Destination: dest,
		state:       StateWaiting,
	}
}

// String implements fmt.Stringer
func (p *Passenger) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("Passenger %s (%s): %s, destination %s",
		p.Name, p.Category, p.state, p.Destination.Name())
}

// State returns the passenger's current state
func (p *Passenger) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// CurrentStop returns the stop the passenger is at, nil while riding
func (p *Passenger) CurrentStop() *Stop {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop
}

// CurrentBus returns the bus the passenger rides, nil while at a stop
func (p *Passenger) CurrentBus() *Bus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bus
}

// Origin returns the stop the trip started from
func (p *Passenger) Origin() *Stop {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.origin
}

// Visited returns the stops the passenger has passed through
func (p *Passenger) Visited() []*Stop {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Stop, len(p.visited))
	copy(out, p.visited)
	return out
}

// AtDestination reports whether the current stop completes the trip
func (p *Passenger) AtDestination() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Destination.Contains(p.stop)
}

// setStop records initial or post-alight placement at a stop
func (p *Passenger) setStop(s *Stop) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stop = s
	p.bus = nil
	if p.origin == nil {
		p.origin = s
	}
}

// transitionLocked advances the state machine; p.mu must be held
func (p *Passenger) transitionLocked(to State) error {
	for _, allowed := range validTransitions[p.state] {
		if allowed == to {
			p.state = to
			return nil
		}
	}
	return errors.WrapInvalid(
		fmt.Errorf("%s -> %s: %w", p.state, to, errors.ErrInvalidTransition),
		"Passenger", "transition", "state change")
}
