// constants.go - tunable constants shared across the simulation core
// License: GPLv3 or later

package nbody

// Scale factors the preset table multiplies into TimeStep and Softening when
// it builds each Params, named after the original demo's Scale:: namespace.
const (
	scaleTime      = 0.4
	scaleSoftening = 1.0
)

// DefaultBodyCount is the default population size. GPU workers require it
// to be a multiple of workGroupSize.
const DefaultBodyCount = 16384

// workGroupSize is the GPU compute work-group size the kernel is compiled
// for. Body counts not divisible by it fail GPU worker initialize with
// ErrSize.
const workGroupSize = 256

// minMultiCPUWorkers is the floor on the multi-core worker's pool size,
// used when GOMAXPROCS(0) reports fewer than 2 (e.g. in a constrained
// container). The source leaves the physical thread count unspecified
// beyond "two boolean flags, isCPUSingleCore and isCPUMultiCore" - any
// pool size >= 2 satisfies that contract.
const minMultiCPUWorkers = 2
