package agent

import (
	"context"
	"log/slog"

	"github.com/c360/transitsim/entity"
	"github.com/c360/transitsim/metric"
)

// Stop clears the bus admission backlog and reports waiting-passenger
// counts. Admission on arrival happens synchronously in the bus agents;
// this loop only drains the queue when capacity frees out of band.
type Stop struct {
	stop    *entity.Stop
	events  StopEvents
	log     *slog.Logger
	metrics *metric.SimMetrics
	pacing  Pacing
}

// NewStop creates the control loop for a stop. A nil events sink
// disables event reporting.
func NewStop(s *entity.Stop, events StopEvents, log *slog.Logger, metrics *metric.SimMetrics, pacing Pacing) *Stop {
	if events == nil {
		events = noopStopEvents{}
	}
	return &Stop{
		stop:    s,
		events:  events,
		log:     ensureLogger(log).With("agent", "stop", "stop", s.Name),
		metrics: metrics,
		pacing:  pacing,
	}
}

// Name implements Agent
func (a *Stop) Name() string {
	return "stop/" + a.stop.Name
}

// Run implements Agent
func (a *Stop) Run(ctx context.Context) {
	a.log.Debug("stop agent started")
	defer a.log.Debug("stop agent stopped")

	for {
		if !a.pacing.sleep(ctx) {
			return
		}
		a.cycle()
		a.metrics.RecordAgentCycle(a.Name())
	}
}

func (a *Stop) cycle() {
	admittedAny := false
	for {
		bus, ok := a.stop.AdmitNext()
		if !ok {
			break
		}
		admittedAny = true
		a.events.BacklogAdmitted(a.stop, bus)
		a.log.Info("admitted queued bus", "bus", bus.Name)
	}
	if admittedAny {
		a.events.StatusChanged(a.stop)
	}

	if waiting := a.stop.WaitingCount(); waiting > 0 {
		a.log.Debug("passengers waiting", "count", waiting, "occupied", a.stop.Occupied())
	}
}
