// worker_multicpu.go - MultiCPU Simulator Worker (spec.md section 4.3.4)
// License: GPLv3 or later
//
// Fans the outer i-loop out across a worker pool, one task per equally
// sized chunk, joining before publishing. Grounded on the chunked
// snapshot/parallel-phase pattern in the example pack's parallel physics
// pass (game-parallel.go), adapted here with golang.org/x/sync/errgroup
// in place of a hand-rolled sync.WaitGroup + error channel.

package nbody

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

type multiCPUWorker struct {
	workerBase
	poolSize int
}

func newMultiCPUWorker() *multiCPUWorker {
	n := runtime.GOMAXPROCS(0)
	if n < minMultiCPUWorkers {
		n = minMultiCPUWorkers
	}
	w := &multiCPUWorker{poolSize: n}
	w.self = w
	return w
}

func (w *multiCPUWorker) Initialize(opts WorkerOptions) error {
	if opts.MaxIndex == 0 {
		opts.MaxIndex = opts.N
	}
	w.initCommon(opts, "CPU multi-core")
	return nil
}

func (w *multiCPUWorker) Reset() error {
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

func (w *multiCPUWorker) Step() {
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

	chunk := (w.n + w.poolSize - 1) / w.poolSize
	g, _ := errgroup.WithContext(context.Background())
	for c := 0; c < w.poolSize; c++ {
		lo := c * chunk
		hi := lo + chunk
		if hi > w.n {
			hi = w.n
		}
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				integrateBody(readPos, readVel, writePos, writeVel, i, 0, w.n, p)
			}
			return nil
		})
	}
	_ = g.Wait()

	w.publish()
	w.year += yearDelta(p.TimeStep)
	w.perf.tick()
	w.updates.tick()
}

func (w *multiCPUWorker) Terminate() {
	w.exit()
}

func (w *multiCPUWorker) PositionInRange(dst []float32) int { return w.snapshotPosition(dst, true) }
func (w *multiCPUWorker) Position(dst []float32) int        { return w.snapshotPosition(dst, false) }
func (w *multiCPUWorker) Velocity(dst []float32) int         { return w.snapshotVelocity(dst) }
func (w *multiCPUWorker) SetPosition(src []float32) error    { return w.applyHandoffPosition(src) }
func (w *multiCPUWorker) SetVelocity(src []float32) error    { return w.applyHandoffVelocity(src) }

func (w *multiCPUWorker) Start(paused bool) { w.start(paused) }
func (w *multiCPUWorker) Stop()             { w.stop() }
func (w *multiCPUWorker) Pause()            { w.pause() }
func (w *multiCPUWorker) Unpause()          { w.unpause() }
func (w *multiCPUWorker) Exit()             { w.exit() }

func (w *multiCPUWorker) ResetParams(p Params) { w.resetParams(p) }
func (w *multiCPUWorker) SetParams(p Params)   { w.setParams(p) }
func (w *multiCPUWorker) Invalidate(v bool)    { w.invalidate(v) }

func (w *multiCPUWorker) Performance() float64 { return w.performance() }
func (w *multiCPUWorker) Updates() float64     { return w.updatesRate() }
func (w *multiCPUWorker) Year() float64        { return w.yearValue() }
func (w *multiCPUWorker) Size() int            { return w.size() }
func (w *multiCPUWorker) Minimum() int         { return w.minimum() }
func (w *multiCPUWorker) Maximum() int         { return w.maximum() }
func (w *multiCPUWorker) Name() string         { return w.name() }
func (w *multiCPUWorker) Devices() int         { return w.poolSize }

func (w *multiCPUWorker) IsPaused() bool   { return w.isPaused() }
func (w *multiCPUWorker) IsStopped() bool  { return w.isStopped() }
func (w *multiCPUWorker) IsAcquired() bool { return w.isAcquired() }
