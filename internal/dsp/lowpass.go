// ABOUTME: First-order low-pass filter for raw audio frames
// ABOUTME: Operates in place so the audio callback never allocates
package dsp

import "math"

// Lowpass applies a single-pole RC low-pass filter to samples in place.
// The filter state starts at zero for each frame, matching a per-frame
// smoothing pass rather than a stateful streaming filter.
func Lowpass(samples []float32, sampleRate, cutoff float32) {
	if len(samples) == 0 || sampleRate <= 0 || cutoff <= 0 {
		return
	}

	rc := 1.0 / (2.0 * math.Pi * float64(cutoff))
	dt := 1.0 / float64(sampleRate)
	alpha := float32(dt / (rc + dt))

	samples[0] = alpha * samples[0]
	for i := 1; i < len(samples); i++ {
		samples[i] = samples[i-1] + alpha*(samples[i]-samples[i-1])
	}
}
