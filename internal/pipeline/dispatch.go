// ABOUTME: Actuation dispatch across the connected endpoint set
// ABOUTME: Per-endpoint failures are isolated, logged, and never fatal
package pipeline

import (
	"context"

	"github.com/rs/zerolog"
)

// Endpoint is a connected actuator device. Implementations must be safe to
// call from the control loop; commands are idempotent.
type Endpoint interface {
	// Name returns the device's human-readable name.
	Name() string

	// SetIntensity commands the device to the given scalar level in [0, 1].
	SetIntensity(ctx context.Context, level float64) error

	// Stop halts actuation on the device. Issued once during shutdown.
	Stop(ctx context.Context) error
}

// Dispatch issues intensity to every endpoint independently. The returned
// slice holds one result per endpoint, index-aligned with endpoints; a
// failure on one device never prevents attempts on the rest.
func Dispatch(ctx context.Context, log zerolog.Logger, endpoints []Endpoint, intensity float64) []error {
	results := make([]error, len(endpoints))
	for i, ep := range endpoints {
		if err := ep.SetIntensity(ctx, intensity); err != nil {
			log.Warn().Err(err).Str("device", ep.Name()).
				Float64("intensity", intensity).
				Msg("Failed to send intensity to device")
			results[i] = err
		}
	}
	return results
}
