package agent

import (
	"context"
	"log/slog"

	"github.com/c360/transitsim/entity"
	"github.com/c360/transitsim/errors"
	"github.com/c360/transitsim/metric"
)

// Bus drives one bus along its route: alight, board, advance, and
// switch routes where the route chain continues through an
// intersection.
type Bus struct {
	bus     *entity.Bus
	events  BusEvents
	log     *slog.Logger
	metrics *metric.SimMetrics
	pacing  Pacing
}

// NewBus creates the control loop for a bus. A nil events sink disables
// event reporting.
func NewBus(b *entity.Bus, events BusEvents, log *slog.Logger, metrics *metric.SimMetrics, pacing Pacing) *Bus {
	if events == nil {
		events = noopBusEvents{}
	}
	return &Bus{
		bus:     b,
		events:  events,
		log:     ensureLogger(log).With("agent", "bus", "bus", b.Name),
		metrics: metrics,
		pacing:  pacing,
	}
}

// Name implements Agent
func (a *Bus) Name() string {
	return "bus/" + a.bus.Name
}

// Run implements Agent. A fatal precondition (no route, parked off the
// route) stops this agent only; transient cycle errors are logged and
// the loop continues.
func (a *Bus) Run(ctx context.Context) {
	a.log.Info("bus agent started")
	defer a.log.Info("bus agent stopped")

	for {
		if !a.pacing.sleep(ctx) {
			return
		}
		if err := a.cycle(); err != nil {
			if errors.IsFatal(err) {
				a.metrics.RecordAgentError(a.Name())
				a.log.Error("bus agent halted", "error", err)
				return
			}
			a.metrics.RecordAgentError(a.Name())
			a.log.Warn("bus cycle failed", "error", err)
			continue
		}
		a.metrics.RecordAgentCycle(a.Name())
	}
}

// cycle performs one service step at the current stop and advances.
func (a *Bus) cycle() error {
	route := a.bus.Route()
	if route == nil {
		return errors.WrapFatal(errors.ErrNoRouteAssigned, "BusAgent", "cycle", "route check")
	}
	if !route.Active() {
		a.log.Debug("route out of service, holding")
		return nil
	}

	stop := a.bus.CurrentStop()
	if stop == nil {
		// Enter service at the first stop of the route
		first := route.First()
		admitted := first.BusArrival(a.bus)
		a.bus.SetCurrentStop(first)
		a.events.Arrived(a.bus, first, admitted)
		a.log.Info("entered service", "stop", first.Name, "admitted", admitted)
		return nil
	}
	if !route.Contains(stop) {
		return errors.WrapFatal(errors.ErrStopNotOnRoute, "BusAgent", "cycle", "position check")
	}
	if !stop.IsAdmitted(a.bus) {
		// Still queued for service at this stop
		a.log.Debug("waiting for admission", "stop", stop.Name)
		return nil
	}

	a.alight(stop, route)
	a.board(stop, route)

	return a.advance(stop, route)
}

// alight lets out every passenger whose trip or transfer is served by
// this stop.
func (a *Bus) alight(stop *entity.Stop, route *entity.Route) {
	for _, p := range a.bus.Passengers() {
		if !shouldAlight(p, stop, route) {
			continue
		}
		arrived, err := entity.Alight(stop, a.bus, p)
		if err != nil {
			a.log.Warn("alight failed", "passenger", p.Name, "error", err)
			continue
		}
		a.metrics.RecordAlighting()
		a.events.Alighted(a.bus, stop, p, arrived)
		a.log.Info("passenger alighted", "passenger", p.Name, "stop", stop.Name, "arrived", arrived)
	}
}

// shouldAlight reports whether the stop completes or advances p's trip:
// the destination itself, the terminal of the route, or an intersection
// with an alternate route reaching the destination.
func shouldAlight(p *entity.Passenger, stop *entity.Stop, route *entity.Route) bool {
	if p.Destination.Contains(stop) {
		return true
	}
	if stop == route.Terminal() {
		return true
	}
	if _, ok := entity.RouteToDestinationAt(stop.Parent(), p.Destination, route); ok {
		return true
	}
	return false
}

// board takes waiting passengers in arrival order while seats remain,
// skipping anyone whose destination is not ahead on the route.
func (a *Bus) board(stop *entity.Stop, route *entity.Route) {
	for _, p := range stop.Waiting() {
		if a.bus.IsFull() {
			return
		}
		if !route.ServesAhead(stop, p.Destination) {
			continue
		}
		if err := entity.Board(stop, a.bus, p); err != nil {
			if !errors.Is(err, errors.ErrBusFull) && !errors.Is(err, errors.ErrNotPresent) {
				a.log.Warn("board failed", "passenger", p.Name, "error", err)
			}
			continue
		}
		a.metrics.RecordBoarding()
		a.events.Boarded(a.bus, stop, p)
		a.log.Info("passenger boarded", "passenger", p.Name, "stop", stop.Name)
	}
}

// advance departs the current stop and arrives at the next one, then
// considers switching onto a continuing route at an intersection.
func (a *Bus) advance(stop *entity.Stop, route *entity.Route) error {
	next, wrapped, err := route.NextStop(stop)
	if err != nil {
		return errors.Wrap(err, "BusAgent", "advance", "next stop lookup")
	}

	stop.BusDeparture(a.bus)
	a.events.Departed(a.bus, stop, next, wrapped)

	admitted := next.BusArrival(a.bus)
	a.bus.SetCurrentStop(next)
	a.metrics.RecordBusAdvance()
	a.events.Arrived(a.bus, next, admitted)
	a.log.Info("advanced", "from", stop.Name, "to", next.Name, "wrapped", wrapped, "admitted", admitted)

	// At an intersection a continuing route takes over the service
	if continuing := entity.ContinuingRoutesAt(next.Parent(), next, route); len(continuing) > 0 {
		a.bus.SetRoute(continuing[0])
		a.events.RouteSwitched(a.bus, route, continuing[0])
		a.log.Info("switched route", "from", route.ID, "to", continuing[0].ID)
	}
	return nil
}
