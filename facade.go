// facade.go - Simulator Facade (C4): couples one Worker to a UI label and
// button hit-test, per spec.md section 4.4.
// License: GPLv3 or later

package nbody

// Button is a pure hit-test data struct for the facade's selector control.
// The HUD that actually draws it is out of scope; only the geometry and
// hit-test live here.
type Button struct {
	X, Y, Width, Height float64
}

// Hit reports whether (px, py) falls within the button's bounds.
func (b Button) Hit(px, py float64) bool {
	return px >= b.X && px <= b.X+b.Width && py >= b.Y && py <= b.Y+b.Height
}

// Facade wraps one Worker plus the UI affordances described in spec.md
// section 4.4: a button derived from the device name, and a "selected"
// flag the mediator toggles on switch.
type Facade struct {
	Kind   ComputeKind
	Label  string
	Button Button

	worker      Worker
	selected    bool
	unavailable bool // permanently disabled after ErrDevice at Initialize (spec.md section 7)
}

// NewFacade constructs a facade around a freshly created (but not yet
// Initialize'd) worker for the given kind.
func NewFacade(kind ComputeKind) *Facade {
	var w Worker
	switch kind {
	case ComputeSingleCPU:
		w = newSingleCPUWorker()
	case ComputeMultiCPU:
		w = newMultiCPUWorker()
	case ComputeGPUPrimary, ComputeGPUSecondary:
		w = newGPUWorker()
	}
	return &Facade{Kind: kind, worker: w}
}

// Initialize acquires the device and derives the button label from the
// worker's device name once known. A GPU facade that fails to acquire its
// device is marked permanently unavailable (spec.md section 7) and its
// worker reference is kept only for accessor queries that must not panic.
func (f *Facade) Initialize(opts WorkerOptions) error {
	opts.DeviceIndex = 0
	if f.Kind == ComputeGPUSecondary {
		opts.DeviceIndex = 1
	}
	if err := f.worker.Initialize(opts); err != nil {
		f.unavailable = true
		f.Label = f.Kind.String() + " (unavailable)"
		return err
	}
	f.Label = f.worker.Name()
	return nil
}

func (f *Facade) Unavailable() bool { return f.unavailable }

func (f *Facade) Start(paused bool) { f.worker.Start(paused) }
func (f *Facade) Stop()             { f.worker.Stop() }
func (f *Facade) Pause()            { f.worker.Pause() }
func (f *Facade) Unpause()          { f.worker.Unpause() }

func (f *Facade) Worker() Worker { return f.worker }

func (f *Facade) ResetParams(p Params) { f.worker.ResetParams(p) }
func (f *Facade) SetParams(p Params)   { f.worker.SetParams(p) }
func (f *Facade) Invalidate(v bool)    { f.worker.Invalidate(v) }

func (f *Facade) IsCPUSingleCore() bool { return f.Kind == ComputeSingleCPU }
func (f *Facade) IsCPUMultiCore() bool  { return f.Kind == ComputeMultiCPU }
func (f *Facade) IsGPUPrimary() bool    { return f.Kind == ComputeGPUPrimary }
func (f *Facade) IsGPUSecondary() bool  { return f.Kind == ComputeGPUSecondary }

func (f *Facade) IsActive() bool   { return f.selected }
func (f *Facade) IsAcquired() bool { return f.worker.IsAcquired() }
func (f *Facade) IsPaused() bool   { return f.worker.IsPaused() }
func (f *Facade) IsStopped() bool  { return f.worker.IsStopped() }

func (f *Facade) Performance() float64 { return f.worker.Performance() }
func (f *Facade) Updates() float64     { return f.worker.Updates() }
func (f *Facade) Year() float64        { return f.worker.Year() }
func (f *Facade) Size() int            { return f.worker.Size() }

func (f *Facade) PositionInRange(dst []float32) int { return f.worker.PositionInRange(dst) }
func (f *Facade) Position(dst []float32) int        { return f.worker.Position(dst) }
func (f *Facade) Velocity(dst []float32) int        { return f.worker.Velocity(dst) }
func (f *Facade) SetPosition(src []float32) error   { return f.worker.SetPosition(src) }
func (f *Facade) SetVelocity(src []float32) error   { return f.worker.SetVelocity(src) }

// HitTest reports whether (px, py) hits this facade's button (spec.md
// section 4.4: "button operation is a pure UI query"). It does not report
// whether the facade is selected, and Engine.Dispatch has no click command
// that calls it.
func (f *Facade) HitTest(px, py float64) bool {
	return f.Button.Hit(px, py)
}
