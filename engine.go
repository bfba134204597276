// engine.go - Engine (C6): top-level coordinator translating user commands
// into Mediator/Visualizer calls (spec.md section 4.6).
// License: GPLv3 or later

package nbody

// Visualizer is the out-of-scope external collaborator's interface as seen
// by the core (spec.md section 1: "only their interface with the core is
// specified"). cmd/nbodysim's ebiten adapter implements this.
type Visualizer interface {
	Reparameterize(p Params)
	SetRotation(enabled bool)
}

// Command is the single-byte command-channel vocabulary from spec.md
// section 6. Exact byte values are an implementation detail there; this
// type gives them names.
type Command byte

const (
	CommandNextDemo Command = iota
	CommandPrevDemo
	CommandTogglePause
	CommandToggleHUD
	CommandToggleDock
	CommandCycleSimulator
	CommandToggleRotation
	CommandToggleEarthView
	CommandReset
)

// Engine owns the Mediator and Visualizer and translates user input into
// calls on them. Only demo cycling and simulator cycling are non-trivial
// per spec.md section 4.6; everything else is a direct delegation.
type Engine struct {
	mediator   *Mediator
	visualizer Visualizer

	presetIndex int
	rotating    bool
	paused      bool
}

// NewEngine wires a Mediator to a Visualizer. visualizer may be nil in
// headless/test contexts; Engine no-ops the visualizer calls in that case.
func NewEngine(mediator *Mediator, visualizer Visualizer) *Engine {
	return &Engine{mediator: mediator, visualizer: visualizer}
}

func (e *Engine) Mediator() *Mediator { return e.mediator }

// Dispatch routes one command-channel byte to the mediator/visualizer.
func (e *Engine) Dispatch(cmd Command) {
	switch cmd {
	case CommandNextDemo:
		e.cycleDemo(1)
	case CommandPrevDemo:
		e.cycleDemo(-1)
	case CommandTogglePause:
		e.togglePause()
	case CommandCycleSimulator:
		e.cycleSimulator()
	case CommandToggleRotation:
		e.rotating = !e.rotating
		if e.visualizer != nil {
			e.visualizer.SetRotation(e.rotating)
		}
	case CommandReset:
		e.mediator.Reset(Preset(e.presetIndex))
	case CommandToggleHUD, CommandToggleDock, CommandToggleEarthView:
		// Pure UI toggles with no core-side effect; out of scope.
	}
}

// cycleDemo advances the current Parameter Record to the next/previous
// preset, broadcasts reset(params) to the mediator, and reparameterizes
// the visualizer (rotation, star scale, view distance) - spec.md section
// 4.6's "Demo cycling" responsibility.
func (e *Engine) cycleDemo(delta int) {
	e.presetIndex = ((e.presetIndex+delta)%PresetCount + PresetCount) % PresetCount
	p := Preset(e.presetIndex)
	e.mediator.Reset(p)
	if e.visualizer != nil {
		e.visualizer.Reparameterize(p)
	}
}

// cycleSimulator iterates Select(kind) across the available facades,
// skipping any whose worker is in STOPPED (spec.md section 4.6's
// "Simulator cycling" responsibility).
func (e *Engine) cycleSimulator() {
	facades := e.mediator.Facades()
	if len(facades) == 0 {
		return
	}
	current := e.mediator.Active().Kind
	start := 0
	for i, f := range facades {
		if f.Kind == current {
			start = i
			break
		}
	}
	for i := 1; i <= len(facades); i++ {
		idx := (start + i) % len(facades)
		f := facades[idx]
		if f.Unavailable() || f.IsStopped() {
			continue
		}
		if e.mediator.Select(f.Kind) == nil {
			return
		}
	}
}

func (e *Engine) togglePause() {
	e.paused = !e.paused
	if e.paused {
		e.mediator.Pause()
	} else {
		e.mediator.Unpause()
	}
}

// IsPaused reports the engine's current pause toggle state.
func (e *Engine) IsPaused() bool { return e.paused }
