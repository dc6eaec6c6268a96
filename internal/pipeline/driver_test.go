// ABOUTME: Tests for the pipeline driver control loop
// ABOUTME: Covers end-to-end aggregation, clamping, and shutdown behavior
package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Goonfreq/subwoofer/internal/relay"
)

func runDriver(t *testing.T, d *Driver) chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- d.Run() }()
	return done
}

func waitDriver(t *testing.T, done chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("driver returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop after relay close")
	}
}

func TestDriverDispatchesMeanToAllEndpoints(t *testing.T) {
	r := relay.New(relay.SampleLimit)
	a := &fakeEndpoint{name: "a"}
	b := &fakeEndpoint{name: "b"}

	for i := 0; i < 4; i++ {
		if err := r.TryEmit(0.2); err != nil {
			t.Fatalf("TryEmit failed: %v", err)
		}
	}

	d := NewDriver(Config{
		Relay:     r,
		Endpoints: []Endpoint{a, b},
		Interval:  time.Millisecond,
		Logger:    zerolog.Nop(),
	})
	done := runDriver(t, d)

	r.Close()
	waitDriver(t, done)

	for _, ep := range []*fakeEndpoint{a, b} {
		got := ep.received()
		if len(got) == 0 {
			t.Fatalf("endpoint %s received no commands", ep.name)
		}
		if got[0] != 0.2 {
			t.Errorf("endpoint %s: expected intensity 0.2, got %v", ep.name, got[0])
		}
	}
}

func TestDriverClampsLargeSamples(t *testing.T) {
	r := relay.New(relay.SampleLimit)
	ep := &fakeEndpoint{name: "a"}

	if err := r.TryEmit(2.0); err != nil {
		t.Fatalf("TryEmit failed: %v", err)
	}

	d := NewDriver(Config{
		Relay:     r,
		Endpoints: []Endpoint{ep},
		Interval:  time.Millisecond,
		Logger:    zerolog.Nop(),
	})
	done := runDriver(t, d)

	r.Close()
	waitDriver(t, done)

	got := ep.received()
	if len(got) == 0 {
		t.Fatal("endpoint received no commands")
	}
	if got[0] != 1.0 {
		t.Errorf("expected clamped intensity 1.0, got %v", got[0])
	}
}

func TestDriverStopsEndpointsExactlyOnce(t *testing.T) {
	r := relay.New(relay.SampleLimit)
	a := &fakeEndpoint{name: "a", failWith: errors.New("flaky")}
	b := &fakeEndpoint{name: "b"}

	d := NewDriver(Config{
		Relay:     r,
		Endpoints: []Endpoint{a, b},
		Interval:  time.Millisecond,
		Logger:    zerolog.Nop(),
	})

	if got := d.State(); got != StateRunning {
		t.Errorf("expected initial state running, got %v", got)
	}

	done := runDriver(t, d)

	// A dispatch failure mid-run must not affect shutdown behavior.
	_ = r.TryEmit(0.5)
	time.Sleep(20 * time.Millisecond)

	r.Close()
	waitDriver(t, done)

	if got := d.State(); got != StateStopped {
		t.Errorf("expected state stopped, got %v", got)
	}
	for _, ep := range []*fakeEndpoint{a, b} {
		if n := ep.stopCount(); n != 1 {
			t.Errorf("endpoint %s: expected exactly 1 stop, got %d", ep.name, n)
		}
	}
}

func TestDriverObservesIntensity(t *testing.T) {
	r := relay.New(relay.SampleLimit)
	ep := &fakeEndpoint{name: "a"}

	seen := make(chan float64, 16)
	d := NewDriver(Config{
		Relay:     r,
		Endpoints: []Endpoint{ep},
		Interval:  time.Millisecond,
		Logger:    zerolog.Nop(),
		OnIntensity: func(v float64) {
			select {
			case seen <- v:
			default:
			}
		},
	})
	done := runDriver(t, d)

	_ = r.TryEmit(0.4)

	select {
	case v := <-seen:
		if v != 0.4 {
			t.Errorf("expected observed intensity 0.4, got %v", v)
		}
	case <-time.After(time.Second):
		t.Fatal("OnIntensity was never called")
	}

	r.Close()
	waitDriver(t, done)
}

func TestDriverFlushesBufferedSamplesAfterClose(t *testing.T) {
	r := relay.New(relay.SampleLimit)
	ep := &fakeEndpoint{name: "a"}

	// Fill the relay, then close before the driver starts: the driver
	// must still flush the buffered samples before stopping.
	for i := 0; i < 8; i++ {
		_ = r.TryEmit(0.2)
	}
	r.Close()

	d := NewDriver(Config{
		Relay:     r,
		Endpoints: []Endpoint{ep},
		Interval:  time.Millisecond,
		Logger:    zerolog.Nop(),
	})
	done := runDriver(t, d)
	waitDriver(t, done)

	got := ep.received()
	if len(got) != 1 || got[0] != 0.2 {
		t.Errorf("expected one flushed dispatch of 0.2, got %v", got)
	}
	if ep.stopCount() != 1 {
		t.Errorf("expected exactly 1 stop, got %d", ep.stopCount())
	}
}

func TestStateString(t *testing.T) {
	if StateRunning.String() != "running" ||
		StateDraining.String() != "draining" ||
		StateStopped.String() != "stopped" {
		t.Error("unexpected state names")
	}
}
