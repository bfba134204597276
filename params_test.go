package nbody

import "testing"

func TestPresetCount(t *testing.T) {
	if PresetCount != 10 {
		t.Fatalf("PresetCount = %d, want 10", PresetCount)
	}
}

func TestPresetPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Preset(PresetCount) did not panic")
		}
	}()
	Preset(PresetCount)
}

func TestDefaultParamsIsPresetZero(t *testing.T) {
	if DefaultParams() != Preset(0) {
		t.Fatalf("DefaultParams() != Preset(0)")
	}
}

func TestParamsEqual(t *testing.T) {
	a := DefaultParams()
	b := a
	if !a.Equal(b) {
		t.Fatalf("Equal(copy) = false, want true")
	}
	b.TimeStep += 1
	if a.Equal(b) {
		t.Fatalf("Equal(mutated) = true, want false")
	}
}

func TestComputeKindString(t *testing.T) {
	cases := map[ComputeKind]string{
		ComputeSingleCPU:    "CPU single-core",
		ComputeMultiCPU:     "CPU multi-core",
		ComputeGPUPrimary:   "GPU primary",
		ComputeGPUSecondary: "GPU secondary",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}
