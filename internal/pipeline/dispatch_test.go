// ABOUTME: Tests for actuation dispatch
// ABOUTME: Verifies per-endpoint isolation of failures
package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// fakeEndpoint records commands and optionally fails them.
type fakeEndpoint struct {
	mu          sync.Mutex
	name        string
	failWith    error
	intensities []float64
	stops       int
}

func (f *fakeEndpoint) Name() string { return f.name }

func (f *fakeEndpoint) SetIntensity(ctx context.Context, level float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.intensities = append(f.intensities, level)
	return nil
}

func (f *fakeEndpoint) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeEndpoint) received() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.intensities...)
}

func (f *fakeEndpoint) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func TestDispatchIsolatesFailures(t *testing.T) {
	broken := &fakeEndpoint{name: "broken", failWith: errors.New("device unreachable")}
	working := &fakeEndpoint{name: "working"}

	results := Dispatch(context.Background(), zerolog.Nop(),
		[]Endpoint{broken, working}, 0.6)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0] == nil {
		t.Error("expected failure result for broken endpoint")
	}
	if results[1] != nil {
		t.Errorf("expected success for working endpoint, got %v", results[1])
	}

	got := working.received()
	if len(got) != 1 || got[0] != 0.6 {
		t.Errorf("expected working endpoint to receive [0.6], got %v", got)
	}
}

func TestDispatchEmptyEndpointSet(t *testing.T) {
	results := Dispatch(context.Background(), zerolog.Nop(), nil, 0.5)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
