package nbody

import "testing"

func newTestMediator(t *testing.T, n int) *Mediator {
	t.Helper()
	m, err := NewMediator(n, DefaultParams(), false)
	if err != nil {
		t.Fatalf("NewMediator: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestMediatorStartsOnSingleCPU(t *testing.T) {
	m := newTestMediator(t, 32)

	if m.Active().Kind != ComputeSingleCPU {
		t.Fatalf("Active().Kind = %v, want ComputeSingleCPU", m.Active().Kind)
	}
}

func TestMediatorSelectIsNoOpForActiveKind(t *testing.T) {
	m := newTestMediator(t, 32)

	if err := m.Select(ComputeSingleCPU); err != nil {
		t.Fatalf("Select(already active) = %v, want nil", err)
	}
}

func TestMediatorSelectRejectsUnavailableKind(t *testing.T) {
	m := newTestMediator(t, 32)

	if err := m.Select(ComputeGPUSecondary); err == nil {
		t.Fatalf("Select(ComputeGPUSecondary) with dualGPU=false = nil, want error")
	}
}

// TestHandoffContinuity exercises spec.md section 8 property 3: switching
// the active backend must preserve positions bit-exactly, since Select
// copies through host scratch before the new facade's first step. The
// mediator is paused first, and a Step() on the paused worker waits out any
// step already in flight, so the "before" snapshot isn't racing the active
// facade's own run-loop goroutine, which otherwise would keep stepping in
// the background between this read and Select's internal one.
func TestHandoffContinuity(t *testing.T) {
	m := newTestMediator(t, 32)
	m.Pause()
	m.Active().Worker().Step()

	before := make([]float32, bufLen(32))
	m.Active().Position(before)

	if err := m.Select(ComputeMultiCPU); err != nil {
		t.Fatalf("Select(ComputeMultiCPU): %v", err)
	}
	if m.Active().Kind != ComputeMultiCPU {
		t.Fatalf("Active().Kind = %v, want ComputeMultiCPU", m.Active().Kind)
	}
	// Select unpauses the new active facade as part of the hand-off; pause
	// it straight back so its run loop can't sneak a step in before the
	// snapshot below is taken.
	m.Pause()

	after := make([]float32, bufLen(32))
	m.Active().Position(after)

	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("hand-off changed position at index %d: %v != %v", i, before[i], after[i])
		}
	}
}

func TestMediatorResetReseedsActiveWorker(t *testing.T) {
	m := newTestMediator(t, 16)
	// Pause first: the active facade's own run loop would otherwise race
	// the direct Worker().Reset() call below against its reload-triggered
	// internal Reset() (Mediator.Reset sets the reload flag on every
	// facade; the run loop consumes it on its own next step).
	m.Pause()

	before := make([]float32, bufLen(16))
	m.Active().Position(before)

	p := DefaultParams()
	p.Config = ConfigExpand
	m.Reset(p)
	m.Active().Worker().Reset()

	after := make([]float32, bufLen(16))
	m.Active().Position(after)

	same := true
	for i := range before {
		if before[i] != after[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("Reset with a different Config produced identical seed state")
	}
}

func TestMediatorCloseTerminatesFacades(t *testing.T) {
	m := newTestMediator(t, 8)
	m.Close()
	if !m.Active().IsStopped() {
		t.Fatalf("facade not stopped after Mediator.Close()")
	}
	// Close's Terminate call joins each worker's run-loop goroutine before
	// returning (workerBase.exit waits on its WaitGroup), so IsStopped
	// above is checking a fully quiesced worker, not a flag that merely
	// got set.
}
