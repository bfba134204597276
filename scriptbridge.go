// scriptbridge.go - Script Bridge (C7)
// License: GPLv3 or later
//
// Grounded on original_source/Sources/LuaInterop/universe.cpp: a
// luaL_Reg-style module table for universe.*/system.*, plus a metatable
// backed "points"/"velocities" indexed array exposed to the embedded
// runtime. This Go port swaps the original's raw userdata + global pointer
// trick (gPoints, gVelocities, gLua) for one ScriptBridge instance holding
// non-owning views of the currently-seeded host arrays, per spec.md
// section 9's design note.

package nbody

import (
	"os"
	"os/user"

	lua "github.com/yuin/gopher-lua"
)

// ScriptBridge exposes particle count, scale factors, and the live seed
// buffers to a scripted Config. It never touches a device buffer directly -
// only host-side seed storage that the Script Configurator copies from on
// the next reset.
type ScriptBridge struct {
	state *lua.LState

	particleCount int
	scale         float64
	vscale        float64

	points      []float32
	velocities  []float32
	lastFPS     float64
	lastDeltaT  float64
}

// NewScriptBridge creates a bridge bound to a fresh Lua state and registers
// the universe/system libraries and the points/velocities array type.
func NewScriptBridge() *ScriptBridge {
	b := &ScriptBridge{state: lua.NewState()}
	b.register()
	return b
}

// Close releases the underlying Lua state.
func (b *ScriptBridge) Close() {
	if b.state != nil {
		b.state.Close()
	}
}

// Reset snapshots the active Params' scale factors (spec.md section 3:
// "Scale factors passed to the Script Bridge are snapshots of the active
// Parameter Record; mutation mid-step is not visible until the next
// reset") and allocates fresh seed buffers of size n for a script to
// populate via points[1..4n]/velocities[1..4n].
func (b *ScriptBridge) Reset(n int, p Params) {
	b.particleCount = n
	b.scale = p.ClusterScale
	b.vscale = p.VelocityScale
	b.points = make([]float32, bufLen(n))
	b.velocities = make([]float32, bufLen(n))
}

// SeedBuffers returns the host seed arrays a script has been writing into.
func (b *ScriptBridge) SeedBuffers() (pos, vel []float32) {
	return b.points, b.velocities
}

// UpdateFrameTiming sets the values universe.fps()/universe.deltaTime()
// return. Both read zero until it is called; no code in this module calls
// it, so Engine and Mediator do not feed frame timings through.
func (b *ScriptBridge) UpdateFrameTiming(fps, deltaTime float64) {
	b.lastFPS = fps
	b.lastDeltaT = deltaTime
}

// DoString runs a script against this bridge's Lua state.
func (b *ScriptBridge) DoString(src string) error {
	return b.state.DoString(src)
}

func (b *ScriptBridge) register() {
	L := b.state

	universe := L.NewTable()
	L.SetFuncs(universe, map[string]lua.LGFunction{
		"particleCount": b.luaParticleCount,
		"scale":         b.luaScale,
		"vscale":        b.luaVScale,
		"fps":           b.luaFPS,
		"deltaTime":     b.luaDeltaTime,
	})
	L.SetGlobal("universe", universe)

	system := L.NewTable()
	L.SetFuncs(system, map[string]lua.LGFunction{
		"user": b.luaUser,
	})
	L.SetGlobal("system", system)

	b.registerArrayType("points", func() []float32 { return b.points })
	b.registerArrayType("velocities", func() []float32 { return b.velocities })
}

// rejectExtraArgs fails the call with a diagnostic naming fn, matching
// universe.cpp's uniform "too many arguments for X()" check applied to
// every zero-arg function (spec.md section 7, supplemented per
// SPEC_FULL.md section 7 to cover all six, not just universe.fps).
func rejectExtraArgs(L *lua.LState, fn string) bool {
	if L.GetTop() > 0 {
		L.RaiseError("too many arguments for %s()", fn)
		return true
	}
	return false
}

func (b *ScriptBridge) luaParticleCount(L *lua.LState) int {
	if rejectExtraArgs(L, "universe.particleCount") {
		return 0
	}
	L.Push(lua.LNumber(b.particleCount))
	return 1
}

func (b *ScriptBridge) luaScale(L *lua.LState) int {
	if rejectExtraArgs(L, "universe.scale") {
		return 0
	}
	L.Push(lua.LNumber(b.scale))
	return 1
}

func (b *ScriptBridge) luaVScale(L *lua.LState) int {
	if rejectExtraArgs(L, "universe.vscale") {
		return 0
	}
	L.Push(lua.LNumber(b.vscale))
	return 1
}

func (b *ScriptBridge) luaFPS(L *lua.LState) int {
	if rejectExtraArgs(L, "universe.fps") {
		return 0
	}
	L.Push(lua.LNumber(b.lastFPS))
	return 1
}

func (b *ScriptBridge) luaDeltaTime(L *lua.LState) int {
	if rejectExtraArgs(L, "universe.deltaTime") {
		return 0
	}
	L.Push(lua.LNumber(b.lastDeltaT))
	return 1
}

func (b *ScriptBridge) luaUser(L *lua.LState) int {
	if rejectExtraArgs(L, "system.user") {
		return 0
	}
	name := "unknown"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	} else if env := os.Getenv("USER"); env != "" {
		name = env
	} else if env := os.Getenv("USERNAME"); env != "" {
		name = env
	}
	L.Push(lua.LString(name))
	return 1
}

// registerArrayType exposes a 1-based indexed, bounds-checked view over a
// live []float32 as a Lua global of the given name, backed by a userdata
// with __index/__newindex metamethods - the Go equivalent of universe.cpp's
// points_index/points_newindex/create_points_type trio.
func (b *ScriptBridge) registerArrayType(name string, array func() []float32) {
	L := b.state
	mt := L.NewTypeMetatable(name)
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		arr := array()
		idx := L.CheckInt(2)
		if idx < 1 || idx > len(arr) {
			L.RaiseError("%s index %d out of range [1,%d]", name, idx, len(arr))
			return 0
		}
		L.Push(lua.LNumber(arr[idx-1]))
		return 1
	}))
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		arr := array()
		idx := L.CheckInt(2)
		val := L.CheckNumber(3)
		if idx < 1 || idx > len(arr) {
			L.RaiseError("%s index %d out of range [1,%d]", name, idx, len(arr))
			return 0
		}
		arr[idx-1] = float32(val)
		return 0
	}))

	ud := L.NewUserData()
	ud.Value = name
	L.SetMetatable(ud, mt)
	L.SetGlobal(name, ud)
}
