package agent

import (
	"context"
	"log/slog"

	"github.com/c360/transitsim/broker"
	"github.com/c360/transitsim/entity"
	"github.com/c360/transitsim/metric"
)

// Publisher is the slice of the broker the monitors need.
type Publisher interface {
	Publish(broker.Message) error
}

// Station is an observability-only monitor logging aggregate passenger
// counts across a station's stops and, when messaging is enabled,
// publishing station status.
type Station struct {
	station *entity.Station
	pub     Publisher
	log     *slog.Logger
	metrics *metric.SimMetrics
	pacing  Pacing
}

// NewStation creates the monitor loop for a station. pub may be nil.
func NewStation(st *entity.Station, pub Publisher, log *slog.Logger, metrics *metric.SimMetrics, pacing Pacing) *Station {
	return &Station{
		station: st,
		pub:     pub,
		log:     ensureLogger(log).With("agent", "station", "station", st.Name),
		metrics: metrics,
		pacing:  pacing,
	}
}

// Name implements Agent
func (a *Station) Name() string {
	return "station/" + a.station.Name
}

// Run implements Agent
func (a *Station) Run(ctx context.Context) {
	a.log.Debug("station monitor started")
	defer a.log.Debug("station monitor stopped")

	for {
		if !a.pacing.sleep(ctx) {
			return
		}

		passengers := a.station.TotalPassengers()
		waiting := a.station.TotalWaiting()
		a.log.Info("station status", "passengers", passengers, "waiting", waiting)

		if a.pub != nil {
			msg := broker.New(a.station.ID, broker.StationStatus{
				StationID:   a.station.ID,
				StationName: a.station.Name,
				Passengers:  passengers,
				Waiting:     waiting,
			})
			if err := a.pub.Publish(msg); err != nil {
				a.log.Warn("status publish failed", "error", err)
			}
		}
		a.metrics.RecordAgentCycle(a.Name())
	}
}

// Intersection is an observability-only monitor logging the buses
// present across an intersection's transfer stops.
type Intersection struct {
	ix      *entity.Intersection
	log     *slog.Logger
	metrics *metric.SimMetrics
	pacing  Pacing
}

// NewIntersection creates the monitor loop for an intersection
func NewIntersection(ix *entity.Intersection, log *slog.Logger, metrics *metric.SimMetrics, pacing Pacing) *Intersection {
	return &Intersection{
		ix:      ix,
		log:     ensureLogger(log).With("agent", "intersection", "intersection", ix.Name),
		metrics: metrics,
		pacing:  pacing,
	}
}

// Name implements Agent
func (a *Intersection) Name() string {
	return "intersection/" + a.ix.Name
}

// Run implements Agent
func (a *Intersection) Run(ctx context.Context) {
	a.log.Debug("intersection monitor started")
	defer a.log.Debug("intersection monitor stopped")

	for {
		if !a.pacing.sleep(ctx) {
			return
		}
		if buses := a.ix.BusesPresent(); buses > 0 {
			a.log.Info("intersection status", "buses", buses)
		}
		a.metrics.RecordAgentCycle(a.Name())
	}
}
