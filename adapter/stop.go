package adapter

import (
	"log/slog"
	"sync"

	"github.com/c360/transitsim/broker"
	"github.com/c360/transitsim/entity"
	"github.com/c360/transitsim/errors"
)

// stopKinds are the message kinds a stop adapter subscribes to.
var stopKinds = []broker.Kind{
	broker.KindBusArrival,
	broker.KindBusDeparture,
	broker.KindPassengerBoarding,
	broker.KindPassengerAlighting,
	broker.KindCapacityUpdate,
	broker.KindSystemAlert,
}

// Stop is the broker adapter for one stop. It publishes the stop's
// status, caches per-bus capacity snapshots, and turns free seats on an
// admitted bus into boarding requests for its waiting passengers.
//
// Stop implements the agent.StopEvents interface.
type Stop struct {
	stop *entity.Stop
	mb   MessageBus
	dir  Directory
	log  *slog.Logger

	mu        sync.Mutex
	capacity  map[string]broker.CapacityUpdate
	requested map[string]string
}

// NewStop creates the adapter for a stop
func NewStop(s *entity.Stop, mb MessageBus, dir Directory, log *slog.Logger) *Stop {
	if log == nil {
		log = slog.Default()
	}
	return &Stop{
		stop:      s,
		mb:        mb,
		dir:       dir,
		log:       log.With("adapter", "stop", "stop", s.Name),
		capacity:  make(map[string]broker.CapacityUpdate),
		requested: make(map[string]string),
	}
}

// Attach subscribes the adapter under the stop's entity id
func (a *Stop) Attach() error {
	return a.mb.Subscribe(a.stop.ID, a.handle, stopKinds...)
}

// Detach removes every subscription of this adapter
func (a *Stop) Detach() {
	a.mb.Unsubscribe(a.stop.ID)
}

func (a *Stop) handle(msg broker.Message) error {
	if msg.Sender == a.stop.ID {
		return nil
	}

	switch msg.Kind {
	case broker.KindBusArrival:
		p, ok := msg.Payload.(broker.BusArrival)
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidPayload, "StopAdapter", "handle", "payload shape")
		}
		return a.handleArrival(p)
	case broker.KindBusDeparture:
		p, ok := msg.Payload.(broker.BusDeparture)
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidPayload, "StopAdapter", "handle", "payload shape")
		}
		return a.handleDeparture(p)
	case broker.KindPassengerBoarding:
		p, ok := msg.Payload.(broker.PassengerBoarding)
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidPayload, "StopAdapter", "handle", "payload shape")
		}
		if p.Status == broker.BoardingConfirmed {
			a.mu.Lock()
			delete(a.requested, p.PassengerID)
			a.mu.Unlock()
		}
		return nil
	case broker.KindPassengerAlighting:
		p, ok := msg.Payload.(broker.PassengerAlighting)
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidPayload, "StopAdapter", "handle", "payload shape")
		}
		if p.StopID == a.stop.ID {
			a.PublishStatus()
		}
		return nil
	case broker.KindCapacityUpdate:
		p, ok := msg.Payload.(broker.CapacityUpdate)
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidPayload, "StopAdapter", "handle", "payload shape")
		}
		return a.handleCapacity(p)
	case broker.KindSystemAlert:
		p, ok := msg.Payload.(broker.SystemAlert)
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidPayload, "StopAdapter", "handle", "payload shape")
		}
		a.log.Info("system alert", "severity", p.Severity, "text", p.Text)
		return nil
	}
	return nil
}

func (a *Stop) handleArrival(p broker.BusArrival) error {
	if p.StopID != a.stop.ID {
		return nil
	}
	a.PublishStatus()
	if p.Admitted {
		a.requestBoarding(p.BusID)
	}
	return nil
}

func (a *Stop) handleDeparture(p broker.BusDeparture) error {
	if p.StopID != a.stop.ID {
		return nil
	}

	// Requests addressed to a departed bus will never be honored
	a.mu.Lock()
	for passengerID, busID := range a.requested {
		if busID == p.BusID {
			delete(a.requested, passengerID)
		}
	}
	a.mu.Unlock()

	a.PublishStatus()
	return nil
}

func (a *Stop) handleCapacity(p broker.CapacityUpdate) error {
	a.mu.Lock()
	a.capacity[p.BusID] = p
	a.mu.Unlock()

	if !p.Full && p.Available > 0 {
		a.requestBoarding(p.BusID)
	}
	return nil
}

// requestBoarding publishes boarding requests to an admitted bus for
// waiting passengers whose destination lies ahead on the bus's route,
// bounded by the last known free seats.
func (a *Stop) requestBoarding(busID string) {
	bus, ok := a.dir.BusByID(busID)
	if !ok || !a.stop.IsAdmitted(bus) {
		return
	}
	route := bus.Route()
	if route == nil {
		return
	}

	available := bus.AvailableSeats()
	if cached, ok := a.CapacityFor(busID); ok && cached.Available < available {
		available = cached.Available
	}

	for _, p := range a.stop.Waiting() {
		if available <= 0 {
			return
		}
		if !route.ServesAhead(a.stop, p.Destination) {
			continue
		}

		a.mu.Lock()
		if _, pending := a.requested[p.ID]; pending {
			a.mu.Unlock()
			continue
		}
		a.requested[p.ID] = busID
		a.mu.Unlock()

		a.publish(broker.PassengerBoarding{
			PassengerID:   p.ID,
			PassengerName: p.Name,
			BusID:         busID,
			StopID:        a.stop.ID,
			Status:        broker.BoardingRequested,
		})
		available--
	}
}

// CapacityFor returns the last cached capacity snapshot for a bus
func (a *Stop) CapacityFor(busID string) (broker.CapacityUpdate, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.capacity[busID]
	return c, ok
}

// PublishStatus publishes the stop's current occupancy and counts
func (a *Stop) PublishStatus() {
	a.publish(broker.StopStatus{
		StopID:   a.stop.ID,
		StopName: a.stop.Name,
		Occupied: a.stop.Occupied(),
		Waiting:  a.stop.WaitingCount(),
		Queued:   len(a.stop.Queued()),
	})
}

// BacklogAdmitted implements agent.StopEvents
func (a *Stop) BacklogAdmitted(_ *entity.Stop, bus *entity.Bus) {
	a.PublishStatus()
	a.requestBoarding(bus.ID)
}

// StatusChanged implements agent.StopEvents
func (a *Stop) StatusChanged(*entity.Stop) {
	a.PublishStatus()
}

func (a *Stop) publish(p broker.Payload) {
	if err := a.mb.Publish(broker.New(a.stop.ID, p)); err != nil {
		a.log.Warn("publish failed", "kind", p.Kind(), "error", err)
	}
}
