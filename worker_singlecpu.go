// worker_singlecpu.go - SingleCPU Simulator Worker (spec.md section 4.3.4)
// License: GPLv3 or later

package nbody

// singleCPUWorker runs the O(N^2) kernel on a single goroutine, straight
// loop, no fan-out. It is the failover target named in spec.md section 7
// ("ERR_LOST ... triggers mediator failover to SingleCPU, which must
// always be available"), so it never fails to Initialize.
type singleCPUWorker struct {
	workerBase
}

func newSingleCPUWorker() *singleCPUWorker {
	w := &singleCPUWorker{}
	w.self = w
	return w
}

func (w *singleCPUWorker) Initialize(opts WorkerOptions) error {
	if opts.MaxIndex == 0 {
		opts.MaxIndex = opts.N
	}
	w.initCommon(opts, "CPU single-core")
	return nil
}

func (w *singleCPUWorker) Reset() error {
	pos, vel, err := Initialize(w.n, w.params, w.bridge)
	if err != nil {
		return err
	}
	w.seedInto(pos, vel)
	w.year = 0
	w.perf.reset()
	w.updates.reset()
	return nil
}

func (w *singleCPUWorker) Step() {
	w.stepMu.Lock()
	defer w.stepMu.Unlock()

	w.runMu.Lock()
	if w.paused.Load() || w.stopped.Load() {
		w.runMu.Unlock()
		return
	}
	if w.reload.Load() {
		w.reload.Store(false)
		w.runMu.Unlock()
		_ = w.Reset()
		w.runMu.Lock()
	}
	p := w.params
	w.runMu.Unlock()

	read, write := w.readWrite()
	readPos, readVel := w.posBuf[read], w.velBuf[read]
	writePos, writeVel := w.posBuf[write], w.velBuf[write]

	for i := 0; i < w.n; i++ {
		integrateBody(readPos, readVel, writePos, writeVel, i, 0, w.n, p)
	}

	w.publish()
	w.year += yearDelta(p.TimeStep)
	w.perf.tick()
	w.updates.tick()
}

func (w *singleCPUWorker) Terminate() {
	w.exit()
}

func (w *singleCPUWorker) PositionInRange(dst []float32) int { return w.snapshotPosition(dst, true) }
func (w *singleCPUWorker) Position(dst []float32) int        { return w.snapshotPosition(dst, false) }
func (w *singleCPUWorker) Velocity(dst []float32) int         { return w.snapshotVelocity(dst) }
func (w *singleCPUWorker) SetPosition(src []float32) error    { return w.applyHandoffPosition(src) }
func (w *singleCPUWorker) SetVelocity(src []float32) error    { return w.applyHandoffVelocity(src) }

func (w *singleCPUWorker) Start(paused bool) { w.start(paused) }
func (w *singleCPUWorker) Stop()             { w.stop() }
func (w *singleCPUWorker) Pause()            { w.pause() }
func (w *singleCPUWorker) Unpause()          { w.unpause() }
func (w *singleCPUWorker) Exit()             { w.exit() }

func (w *singleCPUWorker) ResetParams(p Params) { w.resetParams(p) }
func (w *singleCPUWorker) SetParams(p Params)   { w.setParams(p) }
func (w *singleCPUWorker) Invalidate(v bool)    { w.invalidate(v) }

func (w *singleCPUWorker) Performance() float64 { return w.performance() }
func (w *singleCPUWorker) Updates() float64     { return w.updatesRate() }
func (w *singleCPUWorker) Year() float64        { return w.yearValue() }
func (w *singleCPUWorker) Size() int            { return w.size() }
func (w *singleCPUWorker) Minimum() int         { return w.minimum() }
func (w *singleCPUWorker) Maximum() int         { return w.maximum() }
func (w *singleCPUWorker) Name() string         { return w.name() }
func (w *singleCPUWorker) Devices() int         { return w.devices() }

func (w *singleCPUWorker) IsPaused() bool   { return w.isPaused() }
func (w *singleCPUWorker) IsStopped() bool  { return w.isStopped() }
func (w *singleCPUWorker) IsAcquired() bool { return w.isAcquired() }
