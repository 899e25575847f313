package matchmaking

import (
	"context"
	"time"
)

const DefaultReaperInterval = 30 * time.Second

// Reaper calls Engine.Tick on a fixed interval until its context ends.
type Reaper struct {
	engine    *Engine
	interval  time.Duration
	onExpired func([]Pair)
}

// NewReaper returns a Reaper for engine. onExpired receives every non-empty
// batch of dissolved pairs and may be nil.
func NewReaper(engine *Engine, interval time.Duration, onExpired func([]Pair)) *Reaper {
	if interval <= 0 {
		interval = DefaultReaperInterval
	}
	return &Reaper{
		engine:    engine,
		interval:  interval,
		onExpired: onExpired,
	}
}

// Run blocks until ctx is done and returns ctx.Err().
func (r *Reaper) Run(ctx context.Context) error {
	ticker := r.engine.clock.NewTicker(r.interval)
	defer ticker.Stop()

	r.engine.log.Infow("Inactivity reaper started",
		"interval", r.interval,
		"threshold", r.engine.threshold,
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pairs := r.engine.Tick()
			if len(pairs) > 0 && r.onExpired != nil {
				r.onExpired(pairs)
			}
		}
	}
}
