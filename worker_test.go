package nbody

import "testing"

func newTestSingleCPUWorker(t *testing.T, n int) *singleCPUWorker {
	t.Helper()
	w := newSingleCPUWorker()
	opts := WorkerOptions{N: n, MinIndex: 0, MaxIndex: n, Params: DefaultParams()}
	if err := w.Initialize(opts); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := w.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWorkerStartStopState(t *testing.T) {
	w := newTestSingleCPUWorker(t, 8)
	if w.IsStopped() {
		t.Fatalf("freshly initialized worker reports stopped")
	}
	w.Start(false)
	if w.IsPaused() || w.IsStopped() {
		t.Fatalf("started worker paused=%v stopped=%v, want false,false", w.IsPaused(), w.IsStopped())
	}
	w.Stop()
	if !w.IsStopped() {
		t.Fatalf("Stop() did not set stopped")
	}
}

func TestWorkerPauseIdempotent(t *testing.T) {
	w := newTestSingleCPUWorker(t, 8)
	w.Start(false)
	w.Pause()
	w.Pause()
	if !w.IsPaused() {
		t.Fatalf("expected paused after two Pause() calls")
	}
	w.Unpause()
	w.Unpause()
	if w.IsPaused() {
		t.Fatalf("expected unpaused after two Unpause() calls")
	}
}

func TestWorkerStepSkippedWhilePaused(t *testing.T) {
	w := newTestSingleCPUWorker(t, 4)
	w.Start(true)

	before := make([]float32, bufLen(4))
	w.Position(before)

	w.Step()

	after := make([]float32, bufLen(4))
	w.Position(after)

	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("Step() while paused mutated position at index %d", i)
		}
	}
}

func TestWorkerStepAdvancesWhileRunning(t *testing.T) {
	w := newTestSingleCPUWorker(t, 4)
	w.Start(false)
	w.Step()

	if w.Year() <= 0 {
		t.Fatalf("Year() = %v after one Step(), want > 0", w.Year())
	}
	if w.Updates() < 0 {
		t.Fatalf("Updates() = %v, want >= 0", w.Updates())
	}
}

// TestRoleSwapAtomicity exercises spec.md section 8 property 4: a reader
// calling Position concurrently with Step always observes a complete
// (never torn) buffer, because publish() swaps the atomic role index only
// after a step has finished writing.
func TestRoleSwapAtomicity(t *testing.T) {
	w := newTestSingleCPUWorker(t, 64)
	w.Start(false)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			w.Step()
		}
	}()

	dst := make([]float32, bufLen(64))
	for i := 0; i < 200; i++ {
		n := w.Position(dst)
		if n != 64 {
			t.Errorf("Position returned n=%d, want 64", n)
		}
	}
	<-done
}

func TestWorkerHandoffPositionRejectsWrongSize(t *testing.T) {
	w := newTestSingleCPUWorker(t, 4)
	if err := w.SetPosition(make([]float32, 3)); err != ErrSize {
		t.Fatalf("SetPosition(wrong size) = %v, want ErrSize", err)
	}
}

func TestWorkerHandoffPositionRoundTrip(t *testing.T) {
	w := newTestSingleCPUWorker(t, 2)
	src := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	if err := w.SetPosition(src); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	dst := make([]float32, bufLen(2))
	w.Position(dst)
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], src[i])
		}
	}
}
