package nbody

import "testing"

// TestSingleAndMultiCPUAgree exercises spec.md section 8 property 2 for the
// two CPU backends: given the same seed, one step must agree to within an
// absolute tolerance of 1e-3 per component (the two backends run
// byte-identical kernel code, so in practice they agree exactly).
func TestSingleAndMultiCPUAgree(t *testing.T) {
	const n = 128
	p := DefaultParams()
	p.Config = ConfigShell

	single := newSingleCPUWorker()
	if err := single.Initialize(WorkerOptions{N: n, MinIndex: 0, MaxIndex: n, Params: p}); err != nil {
		t.Fatalf("single Initialize: %v", err)
	}
	if err := single.Reset(); err != nil {
		t.Fatalf("single Reset: %v", err)
	}

	multi := newMultiCPUWorker()
	if err := multi.Initialize(WorkerOptions{N: n, MinIndex: 0, MaxIndex: n, Params: p}); err != nil {
		t.Fatalf("multi Initialize: %v", err)
	}
	if err := multi.Reset(); err != nil {
		t.Fatalf("multi Reset: %v", err)
	}

	singlePos := make([]float32, bufLen(n))
	multiPos := make([]float32, bufLen(n))
	single.Position(singlePos)
	multi.Position(multiPos)
	for i := range singlePos {
		if singlePos[i] != multiPos[i] {
			t.Fatalf("seed mismatch at %d: %v != %v", i, singlePos[i], multiPos[i])
		}
	}

	// Deliberately not Start()'ed: a freshly Reset() worker is already
	// unpaused/unstopped (the atomic flags default false), and driving
	// Step() by hand here keeps the comparison pinned to exactly one step
	// each rather than racing each worker's own run-loop goroutine.
	single.Step()
	multi.Step()

	single.Position(singlePos)
	multi.Position(multiPos)
	for i := range singlePos {
		if diff := float64(singlePos[i] - multiPos[i]); diff > 1e-3 || diff < -1e-3 {
			t.Fatalf("backend divergence at %d: single=%v multi=%v", i, singlePos[i], multiPos[i])
		}
	}
}

func TestMultiCPUPoolSizeHasFloor(t *testing.T) {
	w := newMultiCPUWorker()
	if w.poolSize < minMultiCPUWorkers {
		t.Fatalf("poolSize = %d, want >= %d", w.poolSize, minMultiCPUWorkers)
	}
}
