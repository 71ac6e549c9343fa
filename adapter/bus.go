package adapter

import (
	"log/slog"
	"sync"

	"github.com/c360/transitsim/broker"
	"github.com/c360/transitsim/entity"
	"github.com/c360/transitsim/errors"
	"github.com/c360/transitsim/metric"
)

// busKinds are the message kinds a bus adapter subscribes to.
var busKinds = []broker.Kind{
	broker.KindPassengerBoarding,
	broker.KindPassengerAlighting,
	broker.KindRouteUpdate,
	broker.KindScheduleUpdate,
	broker.KindStopStatus,
	broker.KindSystemAlert,
}

// Bus is the broker adapter for one bus. It publishes the bus's
// movements and exchanges, answers boarding requests addressed to it,
// applies schedule and route updates, and caches peer stop status.
//
// Bus implements the agent.BusEvents interface.
type Bus struct {
	bus     *entity.Bus
	mb      MessageBus
	dir     Directory
	log     *slog.Logger
	metrics *metric.SimMetrics

	mu         sync.Mutex
	stopStatus map[string]broker.StopStatus
}

// NewBus creates the adapter for a bus
func NewBus(b *entity.Bus, mb MessageBus, dir Directory, log *slog.Logger, metrics *metric.SimMetrics) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{
		bus:        b,
		mb:         mb,
		dir:        dir,
		log:        log.With("adapter", "bus", "bus", b.Name),
		metrics:    metrics,
		stopStatus: make(map[string]broker.StopStatus),
	}
}

// Attach subscribes the adapter under the bus's entity id
func (a *Bus) Attach() error {
	return a.mb.Subscribe(a.bus.ID, a.handle, busKinds...)
}

// Detach removes every subscription of this adapter
func (a *Bus) Detach() {
	a.mb.Unsubscribe(a.bus.ID)
}

func (a *Bus) handle(msg broker.Message) error {
	if msg.Sender == a.bus.ID {
		return nil
	}

	switch msg.Kind {
	case broker.KindPassengerBoarding:
		p, ok := msg.Payload.(broker.PassengerBoarding)
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidPayload, "BusAdapter", "handle", "payload shape")
		}
		return a.handleBoarding(p)
	case broker.KindPassengerAlighting:
		p, ok := msg.Payload.(broker.PassengerAlighting)
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidPayload, "BusAdapter", "handle", "payload shape")
		}
		a.log.Debug("peer alighting observed", "passenger", p.PassengerID, "stop", p.StopID)
		return nil
	case broker.KindRouteUpdate:
		p, ok := msg.Payload.(broker.RouteUpdate)
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidPayload, "BusAdapter", "handle", "payload shape")
		}
		return a.handleRouteUpdate(p)
	case broker.KindScheduleUpdate:
		p, ok := msg.Payload.(broker.ScheduleUpdate)
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidPayload, "BusAdapter", "handle", "payload shape")
		}
		return a.handleScheduleUpdate(p)
	case broker.KindStopStatus:
		p, ok := msg.Payload.(broker.StopStatus)
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidPayload, "BusAdapter", "handle", "payload shape")
		}
		a.mu.Lock()
		a.stopStatus[p.StopID] = p
		a.mu.Unlock()
		return nil
	case broker.KindSystemAlert:
		p, ok := msg.Payload.(broker.SystemAlert)
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidPayload, "BusAdapter", "handle", "payload shape")
		}
		a.log.Info("system alert", "severity", p.Severity, "text", p.Text)
		return nil
	}
	return nil
}

// handleBoarding answers a boarding request addressed to this bus by
// performing the boarding and publishing the confirmation.
func (a *Bus) handleBoarding(p broker.PassengerBoarding) error {
	if p.Status != broker.BoardingRequested || p.BusID != a.bus.ID {
		return nil
	}

	passenger, ok := a.dir.PassengerByID(p.PassengerID)
	if !ok {
		return errors.WrapInvalid(errors.ErrUnknownEntity, "BusAdapter", "handleBoarding", "passenger lookup")
	}
	stop, ok := a.dir.StopByID(p.StopID)
	if !ok {
		return errors.WrapInvalid(errors.ErrUnknownEntity, "BusAdapter", "handleBoarding", "stop lookup")
	}
	if a.bus.CurrentStop() != stop || !stop.IsAdmitted(a.bus) {
		a.log.Debug("boarding request for a stop the bus is not serving", "stop", stop.Name)
		return nil
	}

	if err := entity.Board(stop, a.bus, passenger); err != nil {
		if errors.Is(err, errors.ErrBusFull) || errors.Is(err, errors.ErrNotPresent) ||
			errors.Is(err, errors.ErrInvalidTransition) {
			// The request raced a direct boarding or a full bus; not a fault
			a.log.Debug("boarding request not honored", "passenger", passenger.Name, "error", err)
			return nil
		}
		return err
	}
	a.metrics.RecordBoarding()
	a.log.Info("boarding request honored", "passenger", passenger.Name, "stop", stop.Name)

	a.publish(broker.PassengerBoarding{
		PassengerID:   passenger.ID,
		PassengerName: passenger.Name,
		BusID:         a.bus.ID,
		StopID:        stop.ID,
		Status:        broker.BoardingConfirmed,
	})
	a.publishCapacity(stop.ID)
	return nil
}

func (a *Bus) handleRouteUpdate(p broker.RouteUpdate) error {
	route, ok := a.dir.RouteByID(p.RouteID)
	if !ok {
		return errors.WrapInvalid(errors.ErrUnknownEntity, "BusAdapter", "handleRouteUpdate", "route lookup")
	}
	route.SetActive(p.Active)
	if current := a.bus.Route(); current != nil && current.ID == p.RouteID && !p.Active {
		a.log.Warn("current route taken out of service", "route", p.RouteID, "reason", p.Reason)
	}
	return nil
}

func (a *Bus) handleScheduleUpdate(p broker.ScheduleUpdate) error {
	if p.BusID != a.bus.ID {
		return nil
	}
	if p.StopID != "" {
		a.bus.SetStopSchedule(p.StopID, entity.StopTimes{Arrival: p.Arrival, Departure: p.Departure})
	}
	if p.Frequency > 0 {
		a.bus.SetFrequency(p.Frequency)
	}
	a.log.Info("schedule updated", "stop", p.StopID, "frequency", p.Frequency)
	return nil
}

// StopStatusFor returns the last cached status for a stop
func (a *Bus) StopStatusFor(stopID string) (broker.StopStatus, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.stopStatus[stopID]
	return s, ok
}

// Arrived implements agent.BusEvents
func (a *Bus) Arrived(bus *entity.Bus, stop *entity.Stop, admitted bool) {
	a.publish(broker.BusArrival{
		BusID:      bus.ID,
		BusName:    bus.Name,
		StopID:     stop.ID,
		StopName:   stop.Name,
		RouteID:    routeID(bus),
		Admitted:   admitted,
		Passengers: bus.PassengerCount(),
	})
	a.publishCapacity(stop.ID)
}

// Departed implements agent.BusEvents
func (a *Bus) Departed(bus *entity.Bus, from, to *entity.Stop, wrapped bool) {
	a.publish(broker.BusDeparture{
		BusID:      bus.ID,
		BusName:    bus.Name,
		StopID:     from.ID,
		StopName:   from.Name,
		RouteID:    routeID(bus),
		NextStopID: to.ID,
		Wrapped:    wrapped,
	})
}

// Boarded implements agent.BusEvents
func (a *Bus) Boarded(bus *entity.Bus, stop *entity.Stop, p *entity.Passenger) {
	a.publish(broker.PassengerBoarding{
		PassengerID:   p.ID,
		PassengerName: p.Name,
		BusID:         bus.ID,
		StopID:        stop.ID,
		Status:        broker.BoardingConfirmed,
	})
	a.publishCapacity(stop.ID)
}

// Alighted implements agent.BusEvents
func (a *Bus) Alighted(bus *entity.Bus, stop *entity.Stop, p *entity.Passenger, arrived bool) {
	a.publish(broker.PassengerAlighting{
		PassengerID:   p.ID,
		PassengerName: p.Name,
		BusID:         bus.ID,
		StopID:        stop.ID,
		Arrived:       arrived,
	})
	a.publishCapacity(stop.ID)
}

// RouteSwitched implements agent.BusEvents
func (a *Bus) RouteSwitched(bus *entity.Bus, from, to *entity.Route) {
	a.log.Info("route switch", "from", from.ID, "to", to.ID)
}

func (a *Bus) publishCapacity(stopID string) {
	a.publish(broker.CapacityUpdate{
		BusID:     a.bus.ID,
		StopID:    stopID,
		Available: a.bus.AvailableSeats(),
		Full:      a.bus.IsFull(),
	})
}

func (a *Bus) publish(p broker.Payload) {
	if err := a.mb.Publish(broker.New(a.bus.ID, p)); err != nil {
		a.log.Warn("publish failed", "kind", p.Kind(), "error", err)
	}
}

func routeID(bus *entity.Bus) string {
	if r := bus.Route(); r != nil {
		return r.ID
	}
	return ""
}
