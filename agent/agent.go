package agent

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Agent is one autonomous control loop. Run blocks until the context is
// cancelled or the agent's work is done.
type Agent interface {
	Name() string
	Run(ctx context.Context)
}

// Default pacing bounds for the randomized think-time between cycles.
const (
	DefaultPacingMin = 1 * time.Second
	DefaultPacingMax = 5 * time.Second
)

// Pacing bounds the randomized sleep separating agent cycles. The sleep
// is the only suspension point in an agent loop and always observes the
// context.
type Pacing struct {
	Min time.Duration
	Max time.Duration
}

func (p Pacing) normalized() Pacing {
	if p.Min <= 0 {
		p.Min = DefaultPacingMin
	}
	if p.Max <= 0 {
		p.Max = DefaultPacingMax
	}
	if p.Max < p.Min {
		p.Max = p.Min
	}
	return p
}

// sleep pauses for a random duration within the pacing bounds. Returns
// false when the context was cancelled during the pause.
func (p Pacing) sleep(ctx context.Context) bool {
	p = p.normalized()
	d := p.Min
	if p.Max > p.Min {
		d += rand.N(p.Max - p.Min)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func ensureLogger(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
