package nbody

import "testing"

func TestInitializeRejectsZeroBodies(t *testing.T) {
	if _, _, err := Initialize(0, DefaultParams(), nil); err != ErrInitEmpty {
		t.Fatalf("Initialize(0, ...) err = %v, want ErrInitEmpty", err)
	}
}

func TestInitializeEachConfigProducesFullBuffers(t *testing.T) {
	const n = 64
	for cfg := Config(0); cfg < configCount; cfg++ {
		p := DefaultParams()
		p.Config = cfg
		var bridge *ScriptBridge
		if cfg == ConfigScript {
			bridge = NewScriptBridge()
			bridge.Reset(n, p)
			pos, vel := bridge.SeedBuffers()
			for i := range pos {
				pos[i] = 1
				vel[i] = 1
			}
		}
		pos, vel, err := Initialize(n, p, bridge)
		if err != nil {
			t.Fatalf("Initialize(%v) err = %v", cfg, err)
		}
		if len(pos) != bufLen(n) || len(vel) != bufLen(n) {
			t.Fatalf("Initialize(%v) produced wrong buffer length", cfg)
		}
		if bridge != nil {
			bridge.Close()
		}
	}
}

func TestRandomConfiguratorIsDeterministic(t *testing.T) {
	p := DefaultParams()
	p.Config = ConfigRandom
	pos1, _, _ := Initialize(16, p, nil)
	pos2, _, _ := Initialize(16, p, nil)
	for i := range pos1 {
		if pos1[i] != pos2[i] {
			t.Fatalf("randomConfigurator not deterministic at index %d: %v != %v", i, pos1[i], pos2[i])
		}
	}
}

func TestScriptConfiguratorRequiresBridge(t *testing.T) {
	p := DefaultParams()
	p.Config = ConfigScript
	if _, _, err := Initialize(16, p, nil); err != ErrInitEmpty {
		t.Fatalf("Initialize(ConfigScript, nil bridge) err = %v, want ErrInitEmpty", err)
	}
}
