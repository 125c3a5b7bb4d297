package webphoto

import (
	"image"
	"image/color"
	"math"

	"github.com/esimov/webphoto/imop"
)

// Point is a position in layer-local space. Integer coordinates lie on texel
// boundaries, so the texel (x, y) is centered at (x+0.5, y+0.5).
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Lerp linearly interpolates between p and q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Shape is the footprint of a stamp.
type Shape int

const (
	// ShapeDisc is a hard-edged filled circle of the given radius.
	ShapeDisc Shape = iota
	// ShapeRect is an axis-aligned square block with side Size.
	ShapeRect
	// ShapeGradientDisc is a radial gradient: full strength up to Inner,
	// fading linearly to transparent at Radius.
	ShapeGradientDisc
)

// Stamp is one atomic paint primitive applied to a pixel surface.
type Stamp struct {
	Shape   Shape
	Center  Point
	Radius  float64
	Inner   float64
	Size    float64
	Color   color.NRGBA
	Opacity float64
	Mode    imop.Mode
	// Erase removes alpha instead of depositing color.
	Erase bool
}

// Bounds returns a conservative texel rectangle enclosing the stamp footprint.
func (st Stamp) Bounds() image.Rectangle {
	ext := st.Radius
	if st.Shape == ShapeRect {
		ext = st.Size / 2
	}
	return image.Rect(
		int(math.Floor(st.Center.X-ext))-1,
		int(math.Floor(st.Center.Y-ext))-1,
		int(math.Ceil(st.Center.X+ext))+1,
		int(math.Ceil(st.Center.Y+ext))+1,
	)
}

// Coverage returns how strongly the stamp covers texel (x, y), in [0, 1].
func (st Stamp) Coverage(x, y int) float64 {
	cx, cy := float64(x)+0.5, float64(y)+0.5
	switch st.Shape {
	case ShapeRect:
		left, top := st.Center.X-st.Size/2, st.Center.Y-st.Size/2
		if cx >= left && cx < left+st.Size && cy >= top && cy < top+st.Size {
			return 1
		}
		return 0
	case ShapeGradientDisc:
		d := math.Hypot(cx-st.Center.X, cy-st.Center.Y)
		switch {
		case d <= st.Inner:
			return 1
		case d >= st.Radius:
			return 0
		}
		return (st.Radius - d) / (st.Radius - st.Inner)
	}
	dx, dy := cx-st.Center.X, cy-st.Center.Y
	if dx*dx+dy*dy <= st.Radius*st.Radius {
		return 1
	}
	return 0
}

// anchor is the texel containing the stamp center. A stamp whose footprint is
// too small to contain any texel center still paints its anchor texel.
func (st Stamp) anchor() image.Point {
	return image.Pt(int(math.Floor(st.Center.X)), int(math.Floor(st.Center.Y)))
}
