// ABOUTME: Signal conditioner run inside the audio callback
// ABOUTME: Filters a frame and derives one intensity scalar from it
package dsp

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultCutoff keeps only the low-frequency content that should
	// translate into actuation.
	DefaultCutoff = 80.0

	// DefaultGain rescales the filtered amplitude into a usable
	// intensity range. Unbounded above; the aggregator clamps later.
	DefaultGain = 10.0
)

// ErrEmptyFrame is returned when a callback delivers a frame with no samples.
var ErrEmptyFrame = errors.New("dsp: empty audio frame")

// Conditioner turns raw audio frames into intensity samples. It is safe to
// call from a real-time audio callback: no allocation, no I/O, no blocking.
type Conditioner struct {
	Cutoff float32
	Gain   float64
}

// NewConditioner returns a conditioner with the default cutoff and gain.
func NewConditioner() *Conditioner {
	return &Conditioner{Cutoff: DefaultCutoff, Gain: DefaultGain}
}

// Condition low-pass filters frame in place and extracts an intensity scalar
// from it. The filtered frame is returned for display use; the intensity is
// the absolute value of the frame's most recent sample scaled by Gain, so it
// is always >= 0. An empty frame or non-positive sample rate is rejected.
func (c *Conditioner) Condition(frame []float32, sampleRate float32) ([]float32, float64, error) {
	if len(frame) == 0 {
		return nil, 0, ErrEmptyFrame
	}
	if sampleRate <= 0 {
		return nil, 0, fmt.Errorf("dsp: invalid sample rate %v", sampleRate)
	}

	Lowpass(frame, sampleRate, c.Cutoff)

	// Frames arrive in chronological order, so the last sample is the
	// most recent point of the filtered signal.
	intensity := math.Abs(float64(frame[len(frame)-1])) * c.Gain

	return frame, intensity, nil
}
