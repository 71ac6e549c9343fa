package agent

import (
	"context"
	"log/slog"

	"github.com/c360/transitsim/entity"
	"github.com/c360/transitsim/errors"
	"github.com/c360/transitsim/metric"
)

// Passenger drives one passenger toward its destination: board an
// admitted bus heading the right way, ride, and step off where the trip
// completes or a transfer improves it. The loop exits once the
// passenger arrives.
type Passenger struct {
	p       *entity.Passenger
	log     *slog.Logger
	metrics *metric.SimMetrics
	pacing  Pacing
}

// NewPassenger creates the control loop for a passenger
func NewPassenger(p *entity.Passenger, log *slog.Logger, metrics *metric.SimMetrics, pacing Pacing) *Passenger {
	return &Passenger{
		p:       p,
		log:     ensureLogger(log).With("agent", "passenger", "passenger", p.Name),
		metrics: metrics,
		pacing:  pacing,
	}
}

// Name implements Agent
func (a *Passenger) Name() string {
	return "passenger/" + a.p.Name
}

// Run implements Agent
func (a *Passenger) Run(ctx context.Context) {
	a.log.Info("passenger agent started", "destination", a.p.Destination.Name())
	defer a.log.Info("passenger agent stopped")

	for {
		if !a.pacing.sleep(ctx) {
			return
		}
		if a.p.State() == entity.StateArrived {
			a.log.Info("trip complete",
				"origin", stopName(a.p.Origin()),
				"stops_visited", len(a.p.Visited()))
			return
		}
		if err := a.cycle(); err != nil {
			a.metrics.RecordAgentError(a.Name())
			a.log.Warn("passenger cycle failed", "error", err)
			continue
		}
		a.metrics.RecordAgentCycle(a.Name())
	}
}

func (a *Passenger) cycle() error {
	switch a.p.State() {
	case entity.StateWaiting:
		a.tryBoard()
	case entity.StateInBus:
		a.tryAlight()
	}
	return nil
}

// tryBoard boards the first admitted bus at the passenger's stop whose
// route still has the destination ahead.
func (a *Passenger) tryBoard() {
	stop := a.p.CurrentStop()
	if stop == nil {
		return
	}
	for _, bus := range stop.Admitted() {
		route := bus.Route()
		if route == nil || !route.ServesAhead(stop, a.p.Destination) {
			continue
		}
		err := entity.Board(stop, bus, a.p)
		if err == nil {
			a.metrics.RecordBoarding()
			a.log.Info("boarded", "bus", bus.Name, "stop", stop.Name)
			return
		}
		if errors.Is(err, errors.ErrBusFull) {
			// Try the next admitted bus
			continue
		}
		a.log.Debug("board attempt failed", "bus", bus.Name, "error", err)
		return
	}
}

// tryAlight steps off when the bus is serving a stop that completes the
// trip, ends the route, or offers a transfer toward the destination.
func (a *Passenger) tryAlight() {
	bus := a.p.CurrentBus()
	if bus == nil {
		return
	}
	stop := bus.CurrentStop()
	route := bus.Route()
	if stop == nil || route == nil || !stop.IsAdmitted(bus) {
		return
	}
	if !shouldAlight(a.p, stop, route) {
		return
	}

	arrived, err := entity.Alight(stop, bus, a.p)
	if err != nil {
		a.log.Debug("alight attempt failed", "stop", stop.Name, "error", err)
		return
	}
	a.metrics.RecordAlighting()
	if arrived {
		a.log.Info("arrived", "stop", stop.Name)
	} else {
		a.log.Info("transferred", "stop", stop.Name)
	}
}

func stopName(s *entity.Stop) string {
	if s == nil {
		return ""
	}
	return s.Name
}
