// ABOUTME: Bounded drop-on-full relay between the audio callback and control loop
// ABOUTME: The single synchronization point crossing the two timing domains
package relay

import (
	"errors"
	"sync"
)

// SampleLimit is the relay's default capacity. A handful of recent samples
// is all the aggregator needs; anything older is stale by the next tick.
const SampleLimit = 16

// ErrClosed is returned by TryEmit once the relay has been closed.
var ErrClosed = errors.New("relay: closed")

// Relay carries intensity samples from the audio callback context to the
// control loop. The producer side never blocks: when the buffer is full the
// incoming sample is dropped so a slow consumer can never stall the audio
// thread. The consumer side blocks until samples arrive or the relay closes.
type Relay struct {
	ch     chan float64
	mu     sync.RWMutex
	closed bool
}

// New creates a relay with the given capacity. Non-positive capacities fall
// back to SampleLimit.
func New(capacity int) *Relay {
	if capacity <= 0 {
		capacity = SampleLimit
	}
	return &Relay{ch: make(chan float64, capacity)}
}

// TryEmit offers a sample to the relay without blocking. A full buffer drops
// the sample and still reports success. Returns ErrClosed once Close has been
// called. Safe for concurrent producers.
func (r *Relay) TryEmit(v float64) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrClosed
	}

	select {
	case r.ch <- v:
	default:
		// Buffer full: drop rather than block the audio callback.
	}
	return nil
}

// Drain blocks until at least one sample is buffered or the relay is closed,
// then returns up to max samples in insertion order. The second return value
// is false once the producer side has closed; buffered samples are still
// returned until exhausted, after which Drain returns an empty slice.
func (r *Relay) Drain(max int) ([]float64, bool) {
	if max <= 0 {
		max = SampleLimit
	}

	v, ok := <-r.ch
	if !ok {
		return nil, false
	}

	out := make([]float64, 1, max)
	out[0] = v
	for len(out) < max {
		select {
		case v, ok := <-r.ch:
			if !ok {
				return out, false
			}
			out = append(out, v)
		default:
			return out, true
		}
	}
	return out, true
}

// Close shuts the producer side. Subsequent TryEmit calls fail with
// ErrClosed; Drain keeps returning buffered samples until none remain and
// then signals end-of-stream. Idempotent.
func (r *Relay) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.closed {
		r.closed = true
		close(r.ch)
	}
}
