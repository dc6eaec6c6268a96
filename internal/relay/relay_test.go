// ABOUTME: Tests for the bounded drop-on-full relay
// ABOUTME: Covers ordering, overflow, close semantics, and end-of-stream
package relay

import (
	"testing"
	"time"
)

func TestEmitThenDrainPreservesOrder(t *testing.T) {
	r := New(SampleLimit)

	want := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	for _, v := range want {
		if err := r.TryEmit(v); err != nil {
			t.Fatalf("TryEmit(%v) failed: %v", v, err)
		}
	}

	got, open := r.Drain(SampleLimit)
	if !open {
		t.Fatal("expected relay still open")
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestOverflowDropsWithoutError(t *testing.T) {
	r := New(SampleLimit)

	for i := 0; i < SampleLimit+8; i++ {
		if err := r.TryEmit(float64(i)); err != nil {
			t.Fatalf("TryEmit(%d) failed: %v", i, err)
		}
	}

	got, open := r.Drain(SampleLimit + 8)
	if !open {
		t.Fatal("expected relay still open")
	}
	if len(got) != SampleLimit {
		t.Fatalf("expected %d buffered samples, got %d", SampleLimit, len(got))
	}

	// No duplication or reorder among the survivors.
	for i, v := range got {
		if v != float64(i) {
			t.Errorf("sample %d: expected %v, got %v", i, float64(i), v)
		}
	}
}

func TestDrainRespectsMax(t *testing.T) {
	r := New(SampleLimit)
	for i := 0; i < 10; i++ {
		_ = r.TryEmit(float64(i))
	}

	got, open := r.Drain(4)
	if !open || len(got) != 4 {
		t.Fatalf("expected 4 samples from open relay, got %d (open=%v)", len(got), open)
	}

	rest, open := r.Drain(SampleLimit)
	if !open || len(rest) != 6 {
		t.Fatalf("expected remaining 6 samples, got %d (open=%v)", len(rest), open)
	}
	if rest[0] != 4 {
		t.Errorf("expected drain to resume at 4, got %v", rest[0])
	}
}

func TestEmitAfterCloseFails(t *testing.T) {
	r := New(SampleLimit)
	r.Close()

	if err := r.TryEmit(1.0); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Close is idempotent.
	r.Close()
}

func TestDrainAfterCloseFlushesThenEnds(t *testing.T) {
	r := New(SampleLimit)
	_ = r.TryEmit(0.7)
	_ = r.TryEmit(0.9)
	r.Close()

	got, open := r.Drain(SampleLimit)
	if open {
		t.Error("expected closed relay to report end-of-stream")
	}
	if len(got) != 2 || got[0] != 0.7 || got[1] != 0.9 {
		t.Errorf("expected buffered samples [0.7 0.9], got %v", got)
	}

	got, open = r.Drain(SampleLimit)
	if open || len(got) != 0 {
		t.Errorf("expected empty end-of-stream result, got %v (open=%v)", got, open)
	}
}

func TestDrainBlocksUntilEmit(t *testing.T) {
	r := New(SampleLimit)

	done := make(chan []float64, 1)
	go func() {
		got, _ := r.Drain(SampleLimit)
		done <- got
	}()

	select {
	case <-done:
		t.Fatal("Drain returned before any sample was emitted")
	case <-time.After(20 * time.Millisecond):
	}

	if err := r.TryEmit(0.5); err != nil {
		t.Fatalf("TryEmit failed: %v", err)
	}

	select {
	case got := <-done:
		if len(got) != 1 || got[0] != 0.5 {
			t.Errorf("expected [0.5], got %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Drain did not return after emit")
	}
}

func TestDrainBlocksUntilClose(t *testing.T) {
	r := New(SampleLimit)

	done := make(chan bool, 1)
	go func() {
		_, open := r.Drain(SampleLimit)
		done <- open
	}()

	r.Close()

	select {
	case open := <-done:
		if open {
			t.Error("expected end-of-stream after close")
		}
	case <-time.After(time.Second):
		t.Fatal("Drain did not return after close")
	}
}

func TestConcurrentEmittersDoNotBlock(t *testing.T) {
	r := New(SampleLimit)

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			for j := 0; j < 1000; j++ {
				_ = r.TryEmit(float64(j))
			}
			done <- struct{}{}
		}()
	}

	for i := 0; i < 4; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("emitters blocked; TryEmit must never wait")
		}
	}
}
