// params.go - Parameter Record (C1): immutable-per-step kernel tunables
// License: GPLv3 or later

package nbody

// Config selects the initial body-configuration generator (C2).
type Config int

const (
	ConfigRandom Config = iota
	ConfigShell
	ConfigExpand
	ConfigMWM31
	ConfigScript
	configCount
)

func (c Config) String() string {
	switch c {
	case ConfigRandom:
		return "Random"
	case ConfigShell:
		return "Shell"
	case ConfigExpand:
		return "Expand"
	case ConfigMWM31:
		return "MW-M31"
	case ConfigScript:
		return "Script"
	default:
		return "Unknown"
	}
}

// ComputeKind identifies one of the worker backends the mediator can route
// the active computation to.
type ComputeKind int

const (
	ComputeSingleCPU ComputeKind = iota
	ComputeMultiCPU
	ComputeGPUPrimary
	ComputeGPUSecondary
	computeMax
)

func (k ComputeKind) String() string {
	switch k {
	case ComputeSingleCPU:
		return "CPU single-core"
	case ComputeMultiCPU:
		return "CPU multi-core"
	case ComputeGPUPrimary:
		return "GPU primary"
	case ComputeGPUSecondary:
		return "GPU secondary"
	default:
		return "Unknown"
	}
}

// Params is the Parameter Record: a value type copied by value into workers
// on reset. TimeStep and Softening are stored already multiplied by
// scaleTime/scaleSoftening (as in the preset table below); the kernel uses
// them as they are and applies no further scaling.
type Params struct {
	TimeStep      float64
	ClusterScale  float64
	VelocityScale float64
	Softening     float64
	Damping       float64
	PointSize     float64
	RotateX       float64
	RotateY       float64
	ViewDistance  float64
	Config        Config
}

// Equal reports whether p and other hold the same field values.
func (p Params) Equal(other Params) bool {
	return p == other
}

// presets is the ten-entry demo table, column order and values as specified
// in spec.md section 6. TimeStep and Softening here are already multiplied
// by scaleTime/scaleSoftening, matching the "timeStep * Scale::kTime" /
// "softening * Scale::kSoftening" columns of the original table - a second,
// conflicting preset table exists in the source under a different build
// target; this one is the table that ships with the default release build
// and is the one this implementation follows (see DESIGN.md Open Questions).
var presets = [10]Params{
	{TimeStep: 0.016 * scaleTime, ClusterScale: 1.54, VelocityScale: 8.0, Softening: 0.1 * scaleSoftening, Damping: 1.0, PointSize: 1.0, RotateX: 0, RotateY: 0, ViewDistance: 30, Config: ConfigShell},
	{TimeStep: 0.016 * scaleTime, ClusterScale: 0.68, VelocityScale: 20.0, Softening: 0.1 * scaleSoftening, Damping: 1.0, PointSize: 0.8, RotateX: 0, RotateY: 0, ViewDistance: 25, Config: ConfigShell},
	{TimeStep: 0.0006 * scaleTime, ClusterScale: 0.16, VelocityScale: 1000.0, Softening: 1.0 * scaleSoftening, Damping: 1.0, PointSize: 0.5, RotateX: 0, RotateY: 0, ViewDistance: 10, Config: ConfigExpand},
	{TimeStep: 0.0016 * scaleTime, ClusterScale: 0.68, VelocityScale: 8.0, Softening: 0.1 * scaleSoftening, Damping: 1.0, PointSize: 0.8, RotateX: 0, RotateY: 0, ViewDistance: 25, Config: ConfigMWM31},
	{TimeStep: 0.016 * scaleTime, ClusterScale: 0.16, VelocityScale: 1000.0, Softening: 1.0 * scaleSoftening, Damping: 1.0, PointSize: 0.5, RotateX: 0, RotateY: 0, ViewDistance: 15, Config: ConfigRandom},
	{TimeStep: 0.016 * scaleTime, ClusterScale: 0.32, VelocityScale: 276.0, Softening: 1.0 * scaleSoftening, Damping: 1.0, PointSize: 0.5, RotateX: 0, RotateY: 0, ViewDistance: 20, Config: ConfigRandom},
	{TimeStep: 0.0016 * scaleTime, ClusterScale: 6.04, VelocityScale: 0.0, Softening: 1.0 * scaleSoftening, Damping: 1.0, PointSize: 1.0, RotateX: 0, RotateY: 0, ViewDistance: 50, Config: ConfigShell},
	{TimeStep: 0.016 * scaleTime, ClusterScale: 0.32, VelocityScale: 272.0, Softening: 0.145 * scaleSoftening, Damping: 1.0, PointSize: 0.5, RotateX: 0, RotateY: 0, ViewDistance: 20, Config: ConfigShell},
	{TimeStep: 0.016 * scaleTime, ClusterScale: 0.32, VelocityScale: 269.0, Softening: 0.145 * scaleSoftening, Damping: 1.0, PointSize: 0.5, RotateX: 0, RotateY: 0, ViewDistance: 20, Config: ConfigShell},
	{TimeStep: 0.016 * scaleTime, ClusterScale: 1.0, VelocityScale: 1.0, Softening: 0.1 * scaleSoftening, Damping: 0.995, PointSize: 1.0, RotateX: 0, RotateY: 0, ViewDistance: 30, Config: ConfigScript},
}

// PresetCount is the number of built-in demo presets.
const PresetCount = len(presets)

// Preset returns a copy of the i'th built-in demo Params. It panics for an
// out-of-range index, matching spec.md section 7's treatment of programmer
// errors (no automatic recovery, propagated to the caller).
func Preset(i int) Params {
	return presets[i]
}

// DefaultParams returns the first preset, used when the caller does not
// pick one explicitly.
func DefaultParams() Params {
	return presets[0]
}
