// kernel.go - softened-gravity integration kernel (spec.md section 4.3.2)
// License: GPLv3 or later
//
// Operation order is fixed: velocity update (semi-implicit Euler) then
// position update. Every backend must reproduce this order bit-for-bit in
// its own reduction so that a SingleCPU/MultiCPU/GPU snapshot hand-off
// (spec.md section 4.5.1) stays numerically compatible across devices
// within the 1e-3 relative tolerance in spec.md section 8, property 2.

package nbody

import "math"

// accelerate computes the acceleration on body i from every body j in
// [lo, hi) of the read buffers, including j == i (which by construction of
// the softened law contributes zero: d is the zero vector).
func accelerate(readPos []float32, i, lo, hi int, softening float64) (ax, ay, az float64) {
	xi := float64(readPos[i*bodyStride+0])
	yi := float64(readPos[i*bodyStride+1])
	zi := float64(readPos[i*bodyStride+2])
	soft2 := softening * softening

	for j := lo; j < hi; j++ {
		dx := float64(readPos[j*bodyStride+0]) - xi
		dy := float64(readPos[j*bodyStride+1]) - yi
		dz := float64(readPos[j*bodyStride+2]) - zi
		massJ := float64(readPos[j*bodyStride+3])

		r2 := dx*dx + dy*dy + dz*dz + soft2
		invR := 1.0 / math.Sqrt(r2)
		invR3 := invR * invR * invR

		s := massJ * invR3
		ax += dx * s
		ay += dy * s
		az += dz * s
	}
	return ax, ay, az
}

// integrateBody advances body i's velocity and position by one step into
// the write buffers, given the read buffers for the whole system (or this
// worker's partition for the acceleration sum).
func integrateBody(readPos, readVel, writePos, writeVel []float32, i, lo, hi int, p Params) {
	ax, ay, az := accelerate(readPos, i, lo, hi, p.Softening)

	vx := float64(readVel[i*bodyStride+0])*p.Damping + ax*p.TimeStep
	vy := float64(readVel[i*bodyStride+1])*p.Damping + ay*p.TimeStep
	vz := float64(readVel[i*bodyStride+2])*p.Damping + az*p.TimeStep

	writeVel[i*bodyStride+0] = float32(vx)
	writeVel[i*bodyStride+1] = float32(vy)
	writeVel[i*bodyStride+2] = float32(vz)
	writeVel[i*bodyStride+3] = readVel[i*bodyStride+3]

	px := float64(readPos[i*bodyStride+0]) + vx*p.TimeStep
	py := float64(readPos[i*bodyStride+1]) + vy*p.TimeStep
	pz := float64(readPos[i*bodyStride+2]) + vz*p.TimeStep

	writePos[i*bodyStride+0] = float32(px)
	writePos[i*bodyStride+1] = float32(py)
	writePos[i*bodyStride+2] = float32(pz)
	writePos[i*bodyStride+3] = readPos[i*bodyStride+3]
}

// yearDelta is the simulated-time increment accumulated by one step, per
// spec.md section 4.3.2: "year accumulates timeStep * Scale::kTime". Params
// as stored (see the preset table in params.go) already holds the
// timeStep*Scale::kTime product, so no further scaling is applied here -
// see DESIGN.md Open Questions for why double-scaling would be wrong.
func yearDelta(timeStep float64) float64 {
	return timeStep
}
