package webphoto

import (
	"image"
	"image/color"
	"math"

	"github.com/esimov/webphoto/imop"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Align is the horizontal anchoring of a text run.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// glyphHeight is the pixel height of the built-in bitmap face.
const glyphHeight = 13

// TextScale returns the integer magnification matching a font size of
// twice the brush size.
func TextScale(brushSize float64) int {
	return max(1, int(math.Round(brushSize*2/glyphHeight)))
}

// DrawText renders text with its baseline at the given point, magnified by
// an integer scale, and returns the number of texels touched.
func DrawText(s *Surface, at Point, text string, c color.NRGBA, scale int, align Align, clip *SelectionMask) int {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face, Src: image.Opaque}

	adv := d.MeasureString(text).Ceil()
	if adv == 0 {
		return 0
	}
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()

	glyphs := image.NewAlpha(image.Rect(0, 0, adv, ascent+descent))
	d.Dst = glyphs
	d.Dot = fixed.P(0, ascent)
	d.DrawString(text)

	scale = max(1, scale)
	w, h := adv*scale, (ascent+descent)*scale
	x0 := int(math.Round(at.X))
	if align == AlignCenter {
		x0 -= w / 2
	}
	y0 := int(math.Round(at.Y)) - ascent*scale

	mask := image.NewAlpha(image.Rect(x0, y0, x0+w, y0+h))
	xdraw.NearestNeighbor.Scale(mask, mask.Bounds(), glyphs, glyphs.Bounds(), xdraw.Src, nil)
	return s.PaintMask(mask, c, 1, imop.Normal, clip)
}
