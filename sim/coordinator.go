package sim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/transitsim/adapter"
	"github.com/c360/transitsim/agent"
	"github.com/c360/transitsim/broker"
	"github.com/c360/transitsim/entity"
	"github.com/c360/transitsim/errors"
	"github.com/c360/transitsim/metric"
	"github.com/c360/transitsim/seed"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBroker enables messaging: the coordinator owns the broker's
// lifecycle and attaches a bus adapter and a stop adapter per entity.
func WithBroker(b *broker.Broker) Option {
	return func(c *Coordinator) { c.broker = b }
}

// WithLogger sets the logger shared by the coordinator and its agents
func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// WithMetrics sets the metrics sink shared by agents and the broker
func WithMetrics(m *metric.SimMetrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithPacing overrides the agents' randomized think-time bounds
func WithPacing(p agent.Pacing) Option {
	return func(c *Coordinator) { c.pacing = p }
}

// Coordinator runs one simulation over a seeded network. It builds one
// agent per bus, stop, station, intersection, and passenger, starts
// them on a shared cancellable context, and joins them all on Stop.
type Coordinator struct {
	network *seed.Network
	broker  *broker.Broker
	log     *slog.Logger
	metrics *metric.SimMetrics
	pacing  agent.Pacing

	agents       []agent.Agent
	busAdapters  []*adapter.Bus
	stopAdapters []*adapter.Stop

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a coordinator for the network
func New(network *seed.Network, opts ...Option) *Coordinator {
	c := &Coordinator{network: network}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.log = c.log.With("component", "coordinator", "scenario", network.Scenario)
	c.build()
	return c
}

// build constructs adapters and agents for every seeded entity.
func (c *Coordinator) build() {
	messaging := c.broker != nil

	for _, b := range c.network.Buses {
		var events agent.BusEvents
		if messaging {
			ba := adapter.NewBus(b, c.broker, c.network, c.log, c.metrics)
			c.busAdapters = append(c.busAdapters, ba)
			events = ba
		}
		c.agents = append(c.agents, agent.NewBus(b, events, c.log, c.metrics, c.pacing))
	}

	for _, s := range c.network.Stops {
		var events agent.StopEvents
		if messaging {
			sa := adapter.NewStop(s, c.broker, c.network, c.log)
			c.stopAdapters = append(c.stopAdapters, sa)
			events = sa
		}
		c.agents = append(c.agents, agent.NewStop(s, events, c.log, c.metrics, c.pacing))
	}

	for _, st := range c.network.Stations {
		var pub agent.Publisher
		if messaging {
			pub = c.broker
		}
		c.agents = append(c.agents, agent.NewStation(st, pub, c.log, c.metrics, c.pacing))
	}

	for _, ix := range c.network.Intersections {
		c.agents = append(c.agents, agent.NewIntersection(ix, c.log, c.metrics, c.pacing))
	}

	for _, p := range c.network.Passengers {
		c.agents = append(c.agents, agent.NewPassenger(p, c.log, c.metrics, c.pacing))
	}
}

// Agents returns the number of agents the coordinator manages
func (c *Coordinator) Agents() int {
	return len(c.agents)
}

// Start launches the broker (when messaging is enabled), the adapters,
// and every agent goroutine.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return errors.Wrap(errors.ErrAlreadyStarted, "Coordinator", "Start", "simulation launch")
	}

	ctx, c.cancel = context.WithCancel(ctx)

	if c.broker != nil {
		if err := c.broker.Start(ctx); err != nil {
			c.cancel()
			return err
		}
		for _, ba := range c.busAdapters {
			if err := ba.Attach(); err != nil {
				c.cancel()
				return err
			}
		}
		for _, sa := range c.stopAdapters {
			if err := sa.Attach(); err != nil {
				c.cancel()
				return err
			}
		}
	}

	for _, a := range c.agents {
		c.wg.Add(1)
		go func(a agent.Agent) {
			defer c.wg.Done()
			a.Run(ctx)
		}(a)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.observe(ctx)
	}()

	c.started = true
	c.log.Info("simulation started", "agents", len(c.agents), "messaging", c.broker != nil)
	return nil
}

// observe refreshes the passenger-state gauge while the run lasts.
func (c *Coordinator) observe(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			counts := make(map[entity.State]int)
			for _, p := range c.network.Passengers {
				counts[p.State()]++
			}
			for state, count := range counts {
				c.metrics.SetPassengerState(state.String(), count)
			}
		}
	}
}

// Stop cancels the run, joins every agent unconditionally, and shuts
// the broker down within the timeout.
func (c *Coordinator) Stop(timeout time.Duration) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return errors.Wrap(errors.ErrNotStarted, "Coordinator", "Stop", "simulation shutdown")
	}
	c.started = false
	cancel := c.cancel
	c.mu.Unlock()

	cancel()
	c.wg.Wait()

	if c.broker != nil {
		for _, ba := range c.busAdapters {
			ba.Detach()
		}
		for _, sa := range c.stopAdapters {
			sa.Detach()
		}
		if err := c.broker.Stop(timeout); err != nil {
			return err
		}
	}

	c.log.Info("simulation stopped", "arrived", c.Arrived())
	return nil
}

// Arrived counts the passengers that completed their trip
func (c *Coordinator) Arrived() int {
	arrived := 0
	for _, p := range c.network.Passengers {
		if p.State() == entity.StateArrived {
			arrived++
		}
	}
	return arrived
}
