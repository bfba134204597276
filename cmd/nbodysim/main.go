// main.go - nbodysim entry point
// License: GPLv3 or later

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	nbody "github.com/gravitysim/nbody"
)

const banner = `nbodysim - concurrent N-body gravitational demo`

func main() {
	bodies := flag.Int("bodies", nbody.DefaultBodyCount, "number of bodies")
	preset := flag.Int("preset", 0, "initial demo preset index [0,9]")
	backend := flag.String("backend", "auto", "initial compute backend: single, multi, gpu, auto")
	dualGPU := flag.Bool("dual-gpu", false, "attempt to acquire a second GPU device")
	script := flag.String("script", "", "path to a Lua script overriding the initial configuration")
	headless := flag.Bool("headless", false, "run without a window, printing performance to stdout")
	flag.Parse()

	fmt.Println(banner)

	if *bodies <= 0 {
		log.Fatalf("nbodysim: -bodies must be positive, got %d", *bodies)
	}
	if *preset < 0 || *preset >= nbody.PresetCount {
		log.Fatalf("nbodysim: -preset must be in [0,%d), got %d", nbody.PresetCount, *preset)
	}

	params := nbody.Preset(*preset)

	mediator, err := nbody.NewMediator(*bodies, params, *dualGPU)
	if err != nil {
		log.Fatalf("nbodysim: mediator init: %v", err)
	}
	defer mediator.Close()

	if *script != "" {
		src, readErr := os.ReadFile(*script)
		if readErr != nil {
			log.Fatalf("nbodysim: reading script: %v", readErr)
		}
		if err := mediator.LoadScript(string(src)); err != nil {
			log.Fatalf("nbodysim: running script: %v", err)
		}
		params.Config = nbody.ConfigScript
		mediator.Reset(params)
	}

	if kind, ok := parseBackend(*backend); ok {
		if err := mediator.Select(kind); err != nil {
			log.Printf("nbodysim: backend %s unavailable, staying on %s: %v", kind, mediator.Active().Kind, err)
		}
	}

	if *headless {
		runHeadless(mediator)
		return
	}

	vis := newVisualizer(mediator)
	engine := nbody.NewEngine(mediator, vis)
	vis.engine = engine

	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle("nbodysim")
	ebiten.SetWindowResizable(true)
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(vis); err != nil {
		log.Fatalf("nbodysim: %v", err)
	}
}

func parseBackend(s string) (nbody.ComputeKind, bool) {
	switch s {
	case "single":
		return nbody.ComputeSingleCPU, true
	case "multi":
		return nbody.ComputeMultiCPU, true
	case "gpu":
		return nbody.ComputeGPUPrimary, true
	default:
		return 0, false
	}
}

func runHeadless(m *nbody.Mediator) {
	fmt.Printf("running headless on %s with %d bodies\n", m.Active().Kind, m.Active().Size())
	for i := 0; i < 600; i++ {
		m.Update()
	}
	fmt.Printf("year=%.3f perf=%.1f updates/s=%.1f\n", m.Active().Year(), m.Performance(), m.Updates())
}
