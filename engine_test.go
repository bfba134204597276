package nbody

import "testing"

type fakeVisualizer struct {
	reparameterized Params
	rotating        bool
	reparamCalls    int
}

func (f *fakeVisualizer) Reparameterize(p Params) {
	f.reparameterized = p
	f.reparamCalls++
}
func (f *fakeVisualizer) SetRotation(enabled bool) { f.rotating = enabled }

func newTestEngine(t *testing.T) (*Engine, *Mediator, *fakeVisualizer) {
	t.Helper()
	m := newTestMediator(t, 32) // t.Cleanup(m.Close) already registered
	vis := &fakeVisualizer{}
	return NewEngine(m, vis), m, vis
}

func TestEngineCycleDemoAdvancesPresetAndVisualizer(t *testing.T) {
	e, _, vis := newTestEngine(t)
	e.Dispatch(CommandNextDemo)

	if e.presetIndex != 1 {
		t.Fatalf("presetIndex = %d, want 1", e.presetIndex)
	}
	if vis.reparamCalls != 1 {
		t.Fatalf("visualizer reparameterized %d times, want 1", vis.reparamCalls)
	}
	if vis.reparameterized != Preset(1) {
		t.Fatalf("visualizer got wrong preset")
	}
}

func TestEngineCycleDemoWrapsAround(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.Dispatch(CommandPrevDemo)
	if e.presetIndex != PresetCount-1 {
		t.Fatalf("presetIndex = %d, want %d after wrapping back", e.presetIndex, PresetCount-1)
	}
}

func TestEngineToggleRotation(t *testing.T) {
	e, _, vis := newTestEngine(t)
	e.Dispatch(CommandToggleRotation)
	if !vis.rotating {
		t.Fatalf("rotating = false after toggle, want true")
	}
	e.Dispatch(CommandToggleRotation)
	if vis.rotating {
		t.Fatalf("rotating = true after second toggle, want false")
	}
}

func TestEngineTogglePause(t *testing.T) {
	e, m, _ := newTestEngine(t)

	e.Dispatch(CommandTogglePause)
	if !e.IsPaused() || !m.Active().IsPaused() {
		t.Fatalf("expected engine and active facade paused")
	}
	e.Dispatch(CommandTogglePause)
	if e.IsPaused() || m.Active().IsPaused() {
		t.Fatalf("expected engine and active facade unpaused")
	}
}

func TestEngineCycleSimulatorSkipsUnavailable(t *testing.T) {
	e, m, _ := newTestEngine(t)

	e.Dispatch(CommandCycleSimulator)
	if m.Active().Unavailable() {
		t.Fatalf("cycled onto an unavailable facade")
	}
}
