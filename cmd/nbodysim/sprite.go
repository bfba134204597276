// sprite.go - procedurally rasterized point sprite
// License: GPLv3 or later
//
// Grounded on the teacher's font-to-texture asset pipeline
// (tools/font2rgba.go rasterizes glyphs into an RGBA atlas once at startup);
// here a single anti-aliased disc is rasterized once via
// golang.org/x/image/vector and reused as every body's point sprite,
// scaled per body by ebiten's GeoM rather than redrawn per frame.

package main

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/vector"
)

const spriteDiameter = 16

// newDiscSprite rasterizes a filled circle of spriteDiameter pixels into an
// ebiten.Image, anti-aliased by vector.Rasterizer's coverage accumulation.
func newDiscSprite() *ebiten.Image {
	r := vector.NewRasterizer(spriteDiameter, spriteDiameter)

	const segments = 24
	cx, cy, radius := float32(spriteDiameter)/2, float32(spriteDiameter)/2, float32(spriteDiameter)/2-1

	r.MoveTo(cx+radius, cy)
	for i := 1; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / segments
		r.LineTo(cx+radius*float32(math.Cos(theta)), cy+radius*float32(math.Sin(theta)))
	}
	r.ClosePath()

	alpha := image.NewAlpha(image.Rect(0, 0, spriteDiameter, spriteDiameter))
	r.Draw(alpha, alpha.Bounds(), image.Opaque, image.Point{})

	rgba := image.NewRGBA(alpha.Bounds())
	for y := 0; y < spriteDiameter; y++ {
		for x := 0; x < spriteDiameter; x++ {
			a := alpha.AlphaAt(x, y).A
			off := rgba.PixOffset(x, y)
			rgba.Pix[off+0] = 220
			rgba.Pix[off+1] = 220
			rgba.Pix[off+2] = 255
			rgba.Pix[off+3] = a
		}
	}

	return ebiten.NewImageFromImage(rgba)
}
