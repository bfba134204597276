package nbody

import "testing"

func TestScriptBridgePointsRoundTrip(t *testing.T) {
	b := NewScriptBridge()
	defer b.Close()

	p := DefaultParams()
	b.Reset(4, p)

	if err := b.DoString(`
		for i = 1, universe.particleCount() * 4 do
			points[i] = i
			velocities[i] = -i
		end
	`); err != nil {
		t.Fatalf("DoString: %v", err)
	}

	pos, vel := b.SeedBuffers()
	if len(pos) != bufLen(4) {
		t.Fatalf("len(pos) = %d, want %d", len(pos), bufLen(4))
	}
	for i := range pos {
		if pos[i] != float32(i+1) {
			t.Errorf("pos[%d] = %v, want %v", i, pos[i], i+1)
		}
		if vel[i] != float32(-(i + 1)) {
			t.Errorf("vel[%d] = %v, want %v", i, vel[i], -(i + 1))
		}
	}
}

func TestScriptBridgePointsOutOfRangeErrors(t *testing.T) {
	b := NewScriptBridge()
	defer b.Close()
	b.Reset(1, DefaultParams())

	if err := b.DoString(`points[99] = 1.0`); err == nil {
		t.Fatalf("DoString with out-of-range index succeeded, want error")
	}
}

func TestScriptBridgeRejectsExtraArgs(t *testing.T) {
	b := NewScriptBridge()
	defer b.Close()
	b.Reset(1, DefaultParams())

	if err := b.DoString(`universe.fps(1)`); err == nil {
		t.Fatalf("universe.fps(1) succeeded, want error for extra argument")
	}
}

func TestScriptBridgeScaleReflectsParams(t *testing.T) {
	b := NewScriptBridge()
	defer b.Close()

	p := DefaultParams()
	p.ClusterScale = 3.5
	p.VelocityScale = 9.0
	b.Reset(1, p)

	if err := b.DoString(`
		if universe.scale() ~= 3.5 then error("scale mismatch") end
		if universe.vscale() ~= 9.0 then error("vscale mismatch") end
	`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
}
