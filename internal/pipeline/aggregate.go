// ABOUTME: Intensity aggregation for the control loop
// ABOUTME: Averages drained samples and clamps into actuation range
package pipeline

// Aggregate computes the arithmetic mean of samples clamped into [0, 1].
// An empty input yields 0; callers should skip dispatch for empty drains.
func Aggregate(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(len(samples))

	// Samples are non-negative by construction, but don't rely on it.
	if mean < 0 {
		return 0
	}
	if mean > 1 {
		return 1
	}
	return mean
}
