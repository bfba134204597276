// worker.go - Simulator Worker (C3): common contract and state machine
// License: GPLv3 or later
//
// Re-expressed per spec.md section 9's design note as a tagged variant
// {SingleCPU, MultiCPU, GPU} satisfying one capability set, rather than a
// class hierarchy: workerBase holds the state/locks/meters every backend
// shares, and each concrete worker embeds it instead of inheriting from it.

package nbody

import (
	"sync"
	"sync/atomic"
	"time"
)

// pausedPollInterval is how often a started-but-paused worker's own
// goroutine rechecks its flags (spec.md section 5: "busy-polled at step
// boundaries"). Running means stepping flat out with no sleep, since the
// throughput meter is meant to report the backend's real step rate.
const pausedPollInterval = time.Millisecond

// workerState is the state machine from spec.md section 4.3.3.
type workerState int32

const (
	stateCreated workerState = iota
	stateInitialized
	stateRunning
	stateStopped
	stateTerminated
)

// WorkerOptions parameterizes Initialize for every backend.
type WorkerOptions struct {
	N           int
	MinIndex    int
	MaxIndex    int
	Params      Params
	Bridge      *ScriptBridge
	DeviceIndex int // 0 = primary, 1 = secondary (GPU workers only)
}

// Worker is the capability set every backend implements (spec.md section
// 4.3.1). Implementations must be safe for Position/Velocity/PositionInRange
// to be called concurrently with Step.
type Worker interface {
	Initialize(opts WorkerOptions) error
	Reset() error
	Step()
	Terminate()

	PositionInRange(dst []float32) int
	Position(dst []float32) int
	Velocity(dst []float32) int
	SetPosition(src []float32) error
	SetVelocity(src []float32) error

	Start(paused bool)
	Stop()
	Pause()
	Unpause()
	Exit()

	ResetParams(p Params)
	SetParams(p Params)
	Invalidate(v bool)

	Performance() float64
	Updates() float64
	Year() float64
	Size() int
	Minimum() int
	Maximum() int
	Name() string
	Devices() int

	IsPaused() bool
	IsStopped() bool
	IsAcquired() bool
}

// workerBase is embedded by every concrete worker. It owns the two locks
// from spec.md section 5 ("run" serializes pause/unpause/stop against the
// step loop; "clock" serializes the role-swap against readers), the double
// buffer and its role index, the meters, and the cooperative flags the
// worker's own goroutine polls at step boundaries.
type workerBase struct {
	runMu   sync.Mutex
	clockMu sync.Mutex
	stepMu  sync.Mutex // serializes Step() against the worker's own run loop

	self    Worker // set by the concrete constructor; runLoop drives self.Step()
	running bool   // a run-loop goroutine is alive, guarded by runMu

	state      workerState
	deviceName string
	deviceIdx  int
	n          int
	minIndex   int
	maxIndex   int

	posBuf [2][]float32
	velBuf [2][]float32
	readIdx int32 // atomic: 0 or 1, index of the publishable "read" buffer

	hostShadow []float32
	shadowStale bool

	paused  atomic.Bool
	stopped atomic.Bool
	reload  atomic.Bool

	params Params
	bridge *ScriptBridge

	perf    *meter
	updates *meter
	year    float64

	lastErr error
	wg      sync.WaitGroup
}

func (w *workerBase) initCommon(opts WorkerOptions, name string) {
	w.deviceName = name
	w.deviceIdx = opts.DeviceIndex
	w.n = opts.N
	w.minIndex = opts.MinIndex
	w.maxIndex = opts.MaxIndex
	w.params = opts.Params
	w.bridge = opts.Bridge
	w.posBuf[0] = make([]float32, bufLen(opts.N))
	w.posBuf[1] = make([]float32, bufLen(opts.N))
	w.velBuf[0] = make([]float32, bufLen(opts.N))
	w.velBuf[1] = make([]float32, bufLen(opts.N))
	w.hostShadow = make([]float32, bufLen(opts.N))
	w.perf = newMeter()
	w.updates = newMeter()
	w.state = stateInitialized
}

// readWrite returns the current read and write buffer indices.
func (w *workerBase) readWrite() (read, write int) {
	r := int(atomic.LoadInt32(&w.readIdx))
	return r, 1 - r
}

// publish swaps the role index under the clock lock, making the former
// write buffer the new read buffer. Call after a step has finished writing.
func (w *workerBase) publish() {
	w.clockMu.Lock()
	atomic.StoreInt32(&w.readIdx, int32(1-atomic.LoadInt32(&w.readIdx)))
	w.shadowStale = true
	w.clockMu.Unlock()
}

// seedInto loads freshly initialized pos/vel into the read-role buffer and
// marks the other as write, per spec.md section 4.3.1 reset(): "upload into
// buffer role 0 as the read buffer; mark role 1 as write".
func (w *workerBase) seedInto(pos, vel []float32) {
	w.clockMu.Lock()
	atomic.StoreInt32(&w.readIdx, 0)
	copy(w.posBuf[0], pos)
	copy(w.velBuf[0], vel)
	w.shadowStale = true
	w.clockMu.Unlock()
}

// snapshotPosition copies the current read buffer's position range into dst
// and returns the number of 4-tuples copied. Safe to call concurrently with
// a step in flight - it only ever touches the read buffer under clockMu,
// never the write buffer.
func (w *workerBase) snapshotPosition(dst []float32, ranged bool) int {
	w.clockMu.Lock()
	read, _ := w.readWrite()
	lo, hi := 0, w.n
	if ranged {
		lo, hi = w.minIndex, w.maxIndex
	}
	n := hi - lo
	copy(dst, w.posBuf[read][lo*bodyStride:hi*bodyStride])
	w.clockMu.Unlock()
	return n
}

func (w *workerBase) snapshotVelocity(dst []float32) int {
	w.clockMu.Lock()
	read, _ := w.readWrite()
	copy(dst, w.velBuf[read])
	w.clockMu.Unlock()
	return w.n
}

// applyHandoffPosition replaces the write buffer's contents with host data then
// swaps roles, per spec.md section 4.3.1 setPosition/setVelocity - used for
// mediator hand-off (section 4.5.1).
func (w *workerBase) applyHandoffPosition(src []float32) error {
	if len(src) != bufLen(w.n) {
		return ErrSize
	}
	w.clockMu.Lock()
	_, write := w.readWrite()
	copy(w.posBuf[write], src)
	atomic.StoreInt32(&w.readIdx, int32(write))
	w.shadowStale = true
	w.clockMu.Unlock()
	return nil
}

// applyHandoffVelocity writes into the already-published read buffer,
// deliberately not the write buffer: applyHandoffPosition has already
// swapped roles, so by the time this runs the former write buffer is the
// new read buffer. Writing here (not swapping again) is what pairs the
// handed-off velocity with the handed-off position in the same published
// buffer (spec.md section 4.5.1).
func (w *workerBase) applyHandoffVelocity(src []float32) error {
	if len(src) != bufLen(w.n) {
		return ErrSize
	}
	w.clockMu.Lock()
	read, _ := w.readWrite()
	copy(w.velBuf[read], src)
	w.clockMu.Unlock()
	return nil
}

// start transitions the worker into RUNNING and, the first time it is
// called, launches the worker's own goroutine (spec.md section 2: "C3
// advances in its own thread"; section 5: "one OS thread per simulator
// worker"). A later start() after stop() reuses the same goroutine if it
// hasn't yet noticed the stop, or is a no-op wrt spawning if it already has
// and this call raced it - restart is not exercised by any caller today.
func (w *workerBase) start(paused bool) {
	w.runMu.Lock()
	w.paused.Store(paused)
	w.stopped.Store(false)
	w.state = stateRunning
	if !w.running {
		w.running = true
		w.wg.Add(1)
		go w.runLoop()
	}
	w.runMu.Unlock()
}

// runLoop is the worker's own thread: it calls Step() back to back while
// running, and yields via a short sleep while paused, per spec.md section
// 5's "no condition variables ... the paused flag is busy-polled at step
// boundaries (the loop yields when paused)". It exits once stopped, within
// one step duration (or one pausedPollInterval if parked).
func (w *workerBase) runLoop() {
	defer func() {
		w.runMu.Lock()
		w.running = false
		w.runMu.Unlock()
		w.wg.Done()
	}()
	for {
		if w.stopped.Load() {
			return
		}
		if w.paused.Load() {
			time.Sleep(pausedPollInterval)
			continue
		}
		w.self.Step()
	}
}

func (w *workerBase) stop() {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	w.stopped.Store(true)
	w.state = stateStopped
}

func (w *workerBase) pause()   { w.paused.Store(true) }
func (w *workerBase) unpause() { w.paused.Store(false) }

// exit stops the worker and blocks until its run-loop goroutine (if any)
// has actually returned, so a caller that tears down shared resources right
// after Exit()/Terminate() never races the loop's last in-flight Step().
func (w *workerBase) exit() {
	w.runMu.Lock()
	w.stopped.Store(true)
	w.paused.Store(false)
	w.state = stateTerminated
	w.runMu.Unlock()
	w.wg.Wait()
}

func (w *workerBase) resetParams(p Params) {
	w.runMu.Lock()
	w.params = p
	w.reload.Store(true)
	w.runMu.Unlock()
}

func (w *workerBase) setParams(p Params) {
	w.runMu.Lock()
	w.params.Damping = p.Damping
	w.params.Softening = p.Softening
	w.params.TimeStep = p.TimeStep
	w.runMu.Unlock()
}

func (w *workerBase) invalidate(v bool) {
	w.clockMu.Lock()
	w.shadowStale = v
	w.clockMu.Unlock()
}

func (w *workerBase) performance() float64 { return w.perf.rate() }
func (w *workerBase) updatesRate() float64 { return w.updates.rate() }
func (w *workerBase) yearValue() float64   { return w.year }
func (w *workerBase) size() int            { return w.n }
func (w *workerBase) minimum() int         { return w.minIndex }
func (w *workerBase) maximum() int         { return w.maxIndex }
func (w *workerBase) name() string         { return w.deviceName }
func (w *workerBase) devices() int         { return 1 }

func (w *workerBase) isPaused() bool   { return w.paused.Load() }
func (w *workerBase) isStopped() bool  { return w.stopped.Load() }
func (w *workerBase) isAcquired() bool { return w.state >= stateInitialized && w.state != stateTerminated }
