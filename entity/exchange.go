package entity

import (
	"github.com/c360/transitsim/errors"
)

// Board moves a waiting passenger from a stop onto a bus. The passenger
// leaves the stop's present and waiting lists, joins the bus in boarding
// order, and transitions WAITING -> BOARDING -> IN_BUS.
//
// Lock order: stop, bus, passenger.
func Board(s *Stop, b *Bus, p *Passenger) error {
	if s == nil || b == nil || p == nil {
		return errors.ErrNotPresent
	}

	s.smu.Lock()
	defer s.smu.Unlock()
	b.mu.Lock()
	defer b.mu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateWaiting {
		return errors.WrapInvalid(errors.ErrInvalidTransition,
			"entity", "Board", "passenger not waiting")
	}
	if len(b.passengers) >= b.Capacity {
		return errors.ErrBusFull
	}

	found := false
	for _, waiting := range s.waiting {
		if waiting == p {
			found = true
			break
		}
	}
	if !found {
		return errors.ErrNotPresent
	}

	if err := p.transitionLocked(StateBoarding); err != nil {
		return err
	}

	s.removePassengerLocked(p)
	b.passengers = append(b.passengers, p)
	p.bus = b
	p.stop = nil
	p.visited = append(p.visited, s)

	return p.transitionLocked(StateInBus)
}

// Alight moves a riding passenger off a bus onto a stop. The passenger
// transitions IN_BUS -> ALIGHTING, then either ARRIVED (trip complete) or
// WAITING (transfer: rejoins the stop's waiting list). Reports whether
// the passenger arrived.
//
// Lock order: stop, bus, passenger.
func Alight(s *Stop, b *Bus, p *Passenger) (arrived bool, err error) {
	if s == nil || b == nil || p == nil {
		return false, errors.ErrNotPresent
	}

	s.smu.Lock()
	defer s.smu.Unlock()
	b.mu.Lock()
	defer b.mu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateInBus {
		return false, errors.WrapInvalid(errors.ErrInvalidTransition,
			"entity", "Alight", "passenger not riding")
	}

	var removed bool
	b.passengers, removed = removeFromSlice(b.passengers, p)
	if !removed {
		return false, errors.ErrNotPresent
	}

	if err := p.transitionLocked(StateAlighting); err != nil {
		return false, err
	}

	p.bus = nil
	p.stop = s
	p.visited = append(p.visited, s)
	s.present = append(s.present, p)

	if p.Destination.Contains(s) {
		return true, p.transitionLocked(StateArrived)
	}

	// Transfer: back to waiting, at the tail of the boarding order
	s.waiting = append(s.waiting, p)
	return false, p.transitionLocked(StateWaiting)
}
