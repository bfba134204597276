// visualizer.go - ebiten Visualizer adapter
// License: GPLv3 or later
//
// Grounded on video_backend_ebiten.go's ebiten.RunGame wiring (window
// setup, Update/Draw/Layout loop). Each body is drawn as the shared disc
// sprite (sprite.go) transformed per body by an ebiten.GeoM, rather than
// the teacher's raw framebuffer-byte-array approach - there is no fixed
// pixel signal to decode here, just a point cloud to project.

package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	nbody "github.com/gravitysim/nbody"
)

var colorBlack = color.Black

const (
	windowWidth  = 960
	windowHeight = 720
)

// visualizer projects the mediator's live position snapshot to screen space
// and satisfies both ebiten.Game and nbody.Visualizer.
type visualizer struct {
	mediator *nbody.Mediator
	engine   *nbody.Engine

	sprite       *ebiten.Image
	pointSize    float64
	viewDistance float64
	rotation     float64
	rotating     bool
	lastCount    int
}

func newVisualizer(m *nbody.Mediator) *visualizer {
	return &visualizer{
		mediator:     m,
		sprite:       newDiscSprite(),
		pointSize:    nbody.DefaultParams().PointSize,
		viewDistance: nbody.DefaultParams().ViewDistance,
	}
}

// Reparameterize implements nbody.Visualizer: a demo switch changes the
// camera distance and point size the projection uses.
func (v *visualizer) Reparameterize(p nbody.Params) {
	v.viewDistance = p.ViewDistance
	v.pointSize = p.PointSize
}

// SetRotation implements nbody.Visualizer.
func (v *visualizer) SetRotation(enabled bool) { v.rotating = enabled }

func (v *visualizer) Update() error {
	v.mediator.Update()

	if v.rotating {
		v.rotation += 0.01
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		v.engine.Dispatch(nbody.CommandNextDemo)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		v.engine.Dispatch(nbody.CommandPrevDemo)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.engine.Dispatch(nbody.CommandTogglePause)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		v.engine.Dispatch(nbody.CommandCycleSimulator)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.engine.Dispatch(nbody.CommandToggleRotation)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		v.engine.Dispatch(nbody.CommandReset)
	}
	return nil
}

func (v *visualizer) Draw(screen *ebiten.Image) {
	screen.Fill(colorBlack)

	pos := v.mediator.Position()
	n := len(pos) / 4
	v.lastCount = n

	cos, sin := math.Cos(v.rotation), math.Sin(v.rotation)
	halfSprite := float64(spriteDiameter) / 2

	for i := 0; i < n; i++ {
		x := float64(pos[i*4+0])
		y := float64(pos[i*4+1])
		z := float64(pos[i*4+2])

		rx := x*cos - z*sin
		rz := x*sin + z*cos

		depth := v.viewDistance + rz
		if depth <= 0.1 {
			continue
		}
		perspective := v.viewDistance / depth
		scale := perspective * v.pointSize
		sx := float64(windowWidth)/2 + rx*perspective*40
		sy := float64(windowHeight)/2 - y*perspective*40
		if sx < -spriteDiameter || sx >= windowWidth+spriteDiameter || sy < -spriteDiameter || sy >= windowHeight+spriteDiameter {
			continue
		}

		var geo ebiten.GeoM
		geo.Translate(-halfSprite, -halfSprite)
		geo.Scale(scale, scale)
		geo.Translate(sx, sy)
		screen.DrawImage(v.sprite, &ebiten.DrawImageOptions{GeoM: geo})
	}

	if active := v.mediator.Active(); active != nil {
		ebiten.SetWindowTitle("nbodysim - " + active.Kind.String())
	}
}

func (v *visualizer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return windowWidth, windowHeight
}
