// ABOUTME: Fixed-cadence control loop driving aggregation and dispatch
// ABOUTME: Ends when the relay reports end-of-stream, stopping every endpoint once
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Goonfreq/subwoofer/internal/relay"
)

const (
	// DefaultInterval is the actuation cadence. Coarse enough to be
	// perceptible, fine enough to track the music.
	DefaultInterval = 35 * time.Millisecond

	// DefaultCommandTimeout bounds one tick's worth of device commands so
	// an unresponsive device cannot stall the loop indefinitely.
	DefaultCommandTimeout = 2 * time.Second
)

// State describes the driver's lifecycle.
type State int32

const (
	// StateRunning means the producer side is live and ticks are flowing.
	StateRunning State = iota
	// StateDraining means the producer closed and buffered samples are
	// being flushed.
	StateDraining
	// StateStopped means the loop has exited and endpoints were stopped.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config holds driver configuration.
type Config struct {
	Relay     *relay.Relay
	Endpoints []Endpoint

	// Interval is the tick period; zero means DefaultInterval.
	Interval time.Duration

	// CommandTimeout bounds dispatch per tick; zero means
	// DefaultCommandTimeout.
	CommandTimeout time.Duration

	// OnIntensity, when set, observes each dispatched intensity. Used to
	// feed the live meter. Must not block.
	OnIntensity func(intensity float64)

	Logger zerolog.Logger
}

// Driver consumes the relay on a fixed cadence: drain, aggregate, dispatch,
// wait for the tick. Slow device I/O stretches the effective period rather
// than overlapping ticks.
type Driver struct {
	cfg   Config
	state atomic.Int32
}

// NewDriver creates a driver. The endpoint set is fixed for the driver's
// lifetime.
func NewDriver(cfg Config) *Driver {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = DefaultCommandTimeout
	}
	return &Driver{cfg: cfg}
}

// State reports the driver's current lifecycle state.
func (d *Driver) State() State {
	return State(d.state.Load())
}

// Run executes the control loop until the relay signals end-of-stream, then
// stops every endpoint exactly once and returns. Blocks the calling
// goroutine.
func (d *Driver) Run() error {
	log := d.cfg.Logger
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()
	defer d.stopEndpoints()

	for {
		samples, open := d.cfg.Relay.Drain(relay.SampleLimit)

		if !open {
			if len(samples) == 0 {
				log.Info().Msg("Sample stream ended")
				d.state.Store(int32(StateStopped))
				return nil
			}
			// Producer closed but samples remain: flush them.
			d.state.Store(int32(StateDraining))
		}

		if len(samples) == 0 {
			// Spurious wakeup: nothing to dispatch this tick.
			<-ticker.C
			continue
		}

		intensity := Aggregate(samples)
		if d.cfg.OnIntensity != nil {
			d.cfg.OnIntensity(intensity)
		}

		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.CommandTimeout)
		Dispatch(ctx, log, d.cfg.Endpoints, intensity)
		cancel()

		<-ticker.C
	}
}

// stopEndpoints issues a final stop to every endpoint.
func (d *Driver) stopEndpoints() {
	d.state.Store(int32(StateStopped))
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.CommandTimeout)
	defer cancel()

	for _, ep := range d.cfg.Endpoints {
		if err := ep.Stop(ctx); err != nil {
			d.cfg.Logger.Warn().Err(err).Str("device", ep.Name()).
				Msg("Failed to stop device")
		}
	}
}
