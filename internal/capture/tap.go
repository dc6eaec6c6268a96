// ABOUTME: PortAudio stream tap invoking a per-frame transform callback
// ABOUTME: The callback runs on the audio thread and must never block
package capture

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 512

// TransformFunc receives one audio frame and its sampling rate, and returns
// the (possibly filtered) frame for display use. It runs on the audio thread:
// it must not block, perform I/O, or retain the frame slice.
type TransformFunc func(frame []float32, sampleRate float32) []float32

// Tap captures a device's stream and feeds every frame through a transform.
type Tap struct {
	stream  *portaudio.Stream
	scratch []float32

	// OnFrame, when set, observes the transformed frame. Audio-thread
	// constraints apply; the slice is reused across callbacks.
	OnFrame func(frame []float32)
}

// OpenTap opens a mono capture stream on device. Callbacks begin on Start;
// set OnFrame before starting. Close stops the stream.
func OpenTap(device Device, transform TransformFunc) (*Tap, error) {
	if device.info == nil {
		return nil, fmt.Errorf("capture: device %q has no backing stream", device.Name)
	}

	t := &Tap{scratch: make([]float32, framesPerBuffer)}
	rate := float32(device.SampleRate)

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device.info,
			Channels: 1,
			Latency:  device.info.DefaultLowInputLatency,
		},
		SampleRate:      device.SampleRate,
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, func(in []float32) {
		// Copy into the reusable scratch buffer so the transform can
		// filter in place without touching PortAudio's buffer.
		frame := t.scratch[:len(in)]
		copy(frame, in)

		out := transform(frame, rate)
		if t.OnFrame != nil && len(out) > 0 {
			t.OnFrame(out)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("capture: failed to open stream on %q: %w", device.Name, err)
	}

	t.stream = stream
	return t, nil
}

// Start begins delivering frames to the transform.
func (t *Tap) Start() error {
	if err := t.stream.Start(); err != nil {
		return fmt.Errorf("capture: failed to start stream: %w", err)
	}
	return nil
}

// Close stops and releases the stream. After Close returns no further
// callbacks fire, so the owner may safely close the relay.
func (t *Tap) Close() error {
	if t.stream == nil {
		return nil
	}
	if err := t.stream.Stop(); err != nil {
		return err
	}
	return t.stream.Close()
}
