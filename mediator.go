// mediator.go - Mediator (C5): owns all facades, selects the active one,
// performs hand-off on switch, services position queries from the
// renderer (spec.md section 4.5).
// License: GPLv3 or later

package nbody

import "sync"

// Mediator owns the ordered facade set and routes the active computation
// between devices. Lock order is always mediator.active -> worker.run ->
// worker.clock (spec.md section 5); Mediator never takes a worker's clock
// lock directly - it goes through the Facade/Worker API, which does.
type Mediator struct {
	activeMu sync.Mutex // "mediator.active": guards active, Select, and Update's read of it

	facades []*Facade
	active  ComputeKind

	n      int
	params Params
	bridge *ScriptBridge

	scratchPos []float32
	scratchVel []float32

	hasPosition bool
	closeOnce   sync.Once
}

// NewMediator constructs a mediator for n bodies with dualGPU controlling
// whether a GPU-secondary facade is attempted. SingleCPU and MultiCPU
// facades always succeed; a GPU facade that fails Initialize with
// ErrDevice is kept in the slice but marked unavailable and excluded from
// selection (spec.md section 7).
func NewMediator(n int, params Params, dualGPU bool) (*Mediator, error) {
	m := &Mediator{
		n:          n,
		params:     params,
		bridge:     NewScriptBridge(),
		scratchPos: make([]float32, bufLen(n)),
		scratchVel: make([]float32, bufLen(n)),
	}

	kinds := []ComputeKind{ComputeSingleCPU, ComputeMultiCPU, ComputeGPUPrimary}
	if dualGPU {
		kinds = append(kinds, ComputeGPUSecondary)
	}

	for _, kind := range kinds {
		f := NewFacade(kind)
		opts := WorkerOptions{N: n, MinIndex: 0, MaxIndex: n, Params: params, Bridge: m.bridge}
		err := f.Initialize(opts)
		if err != nil && (kind == ComputeSingleCPU) {
			return nil, err // SingleCPU must always be available
		}
		m.facades = append(m.facades, f)
	}

	// Activate SingleCPU by default; it is always index 0 and always
	// available.
	m.facades[0].selected = true
	m.active = ComputeSingleCPU
	if err := m.facades[0].worker.Reset(); err != nil {
		return nil, err
	}

	// Every available facade gets its own run loop started now, not just
	// the active one: Select's hand-off only unpauses the incoming facade,
	// it never starts one, so a facade nobody ever Start()'ed would sit
	// unpaused-but-loopless forever (spec.md section 4.5.1: "old remains
	// started-but-paused so switching back is cheap").
	for _, f := range m.facades {
		if f.Unavailable() {
			continue
		}
		f.Start(f.Kind != ComputeSingleCPU)
	}

	return m, nil
}

func (m *Mediator) facadeFor(kind ComputeKind) *Facade {
	for _, f := range m.facades {
		if f.Kind == kind {
			return f
		}
	}
	return nil
}

// Active returns the currently active facade.
func (m *Mediator) Active() *Facade {
	m.activeMu.Lock()
	defer m.activeMu.Unlock()
	return m.facadeFor(m.active)
}

// Facades returns the ordered facade set (read-only use expected).
func (m *Mediator) Facades() []*Facade { return m.facades }

// Select performs the hand-off protocol from spec.md section 4.5.1:
// pause old, drain its in-flight step, copy position+velocity into host
// scratch, push into new (which swaps its own roles), reset new's meters,
// mark new active, unpause new. old remains started-but-paused.
//
// The activeMu lock spans the whole protocol, so Update (which also takes
// activeMu) can never observe a state between steps 1 and 5: it always
// sees either the pre-switch snapshot from old or the post-switch snapshot
// from new, never a torn mix (spec.md section 4.5.1's invariant).
func (m *Mediator) Select(kind ComputeKind) error {
	m.activeMu.Lock()
	defer m.activeMu.Unlock()

	if kind == m.active {
		return nil
	}
	newFacade := m.facadeFor(kind)
	if newFacade == nil || newFacade.Unavailable() {
		return ErrDevice
	}
	oldFacade := m.facadeFor(m.active)

	// 1. Pause old and let its in-flight step complete. Pause is
	// cooperative (spec.md section 5): old's own goroutine only observes
	// the flag at its next step boundary. A Step() call on the now-paused
	// worker waits on stepMu for any in-flight step to finish and then
	// returns without stepping, so the copy below sees old's final state.
	oldFacade.Pause()
	oldFacade.worker.Step()

	// 2. Copy old's positions+velocities into host scratch.
	oldFacade.Position(m.scratchPos)
	oldFacade.Velocity(m.scratchVel)

	// 3. Push into new; SetPosition/SetVelocity swap new's roles so the
	// next read returns the incoming state.
	if err := newFacade.SetPosition(m.scratchPos); err != nil {
		oldFacade.Unpause()
		return err
	}
	if err := newFacade.SetVelocity(m.scratchVel); err != nil {
		oldFacade.Unpause()
		return err
	}

	// 4. The hand-off is not a measured step - reset new's meters.
	newFacade.worker.Invalidate(true)
	var meters []*meter
	switch w := newFacade.worker.(type) {
	case *singleCPUWorker:
		meters = []*meter{w.perf, w.updates}
	case *multiCPUWorker:
		meters = []*meter{w.perf, w.updates}
	case *gpuWorker:
		meters = []*meter{w.perf, w.updates}
	}
	for _, mt := range meters {
		mt.reset()
	}

	// 5. Mark new active, unpause it. old stays started-but-paused.
	m.active = kind
	newFacade.selected = true
	oldFacade.selected = false
	newFacade.Unpause()

	return nil
}

// LoadScript runs src against the mediator's Script Bridge. The script
// populates the bridge's seed buffers via points[]/velocities[]; callers
// typically follow with Reset(params) with Config set to ConfigScript so
// the Script Configurator (C2) copies the freshly seeded buffers into the
// active worker.
func (m *Mediator) LoadScript(src string) error {
	return m.bridge.DoString(src)
}

// Reset broadcasts resetParams to every worker, preserving the active one,
// per spec.md section 4.5.
func (m *Mediator) Reset(params Params) {
	m.activeMu.Lock()
	m.params = params
	m.bridge.Reset(m.n, params)
	m.activeMu.Unlock()

	for _, f := range m.facades {
		if f.Unavailable() {
			continue
		}
		f.ResetParams(params)
	}
}

// Update polls the active worker for the latest position snapshot into the
// shared host array and sets hasPosition true on first success. Called
// from the render thread (spec.md section 5).
func (m *Mediator) Update() {
	m.activeMu.Lock()
	active := m.facadeFor(m.active)
	m.activeMu.Unlock()

	if active == nil {
		return
	}
	n := active.Position(m.scratchPos)
	if n > 0 {
		m.hasPosition = true
	}

	// Device-loss failover (spec.md section 7): ERR_LOST stops the worker
	// and the mediator fails over to SingleCPU on the next Update.
	if active.IsStopped() && active.Kind != ComputeSingleCPU {
		_ = m.Select(ComputeSingleCPU)
		m.facadeFor(ComputeSingleCPU).Unpause()
	}
}

func (m *Mediator) Pause()   { m.Active().Pause() }
func (m *Mediator) Unpause() { m.Active().Unpause() }

func (m *Mediator) Performance() float64 { return m.Active().Performance() }
func (m *Mediator) Updates() float64     { return m.Active().Updates() }

// Position returns the mediator's shared host scratch array, last filled
// by Update.
func (m *Mediator) Position() []float32 { return m.scratchPos }

func (m *Mediator) IsCPUSingleCore() bool { return m.Active().IsCPUSingleCore() }
func (m *Mediator) IsCPUMultiCore() bool  { return m.Active().IsCPUMultiCore() }
func (m *Mediator) IsGPUPrimary() bool    { return m.Active().IsGPUPrimary() }
func (m *Mediator) IsGPUSecondary() bool  { return m.Active().IsGPUSecondary() }

func (m *Mediator) HasPosition() bool { return m.hasPosition }

// Count returns the number of facades the mediator owns.
func (m *Mediator) Count() int { return len(m.facades) }

// Close terminates every facade's worker and releases the script bridge.
// Safe to call more than once (tests both rely on an explicit Close to
// assert post-close state and register it again via t.Cleanup).
func (m *Mediator) Close() {
	m.closeOnce.Do(func() {
		for _, f := range m.facades {
			f.worker.Terminate()
		}
		m.bridge.Close()
	})
}
