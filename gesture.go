package webphoto

import (
	"image"
	"image/color"
	"math/rand/v2"
)

// GestureContext is the state of one open gesture, from pointer-down to
// pointer-up. Options are captured once when it opens.
type GestureContext struct {
	Tool   Tool
	Brush  Brush
	Params BrushParams
	Color  color.NRGBA
	Start  Point
	Last   Point
	// Handle of the scheduler timer driving a continuous brush, zero otherwise.
	Handle TickHandle

	layer *Layer
	clip  *SelectionMask
	rand  *rand.Rand

	// Airbrush accumulation. base holds the target as it was before the
	// current dab, and dab is the region the dab has painted so far.
	accum float64
	base  *Surface
	dab   image.Rectangle
}

func newGesture(opts ToolOptions, c color.NRGBA, at Point, layer *Layer, clip *SelectionMask, rnd *rand.Rand) *GestureContext {
	params := opts.Brush
	params.Size = max(1, params.Size)

	g := &GestureContext{
		Tool:   opts.Tool,
		Brush:  BrushFor(params.Type),
		Params: params,
		Color:  c,
		Start:  at,
		Last:   at,
		layer:  layer,
		clip:   clip,
		rand:   rnd,
	}
	if g.Tool == ToolDraw && params.Type == Airbrush {
		g.base = layer.surface.Clone()
	}
	return g
}

// Layer returns the layer the gesture paints into.
func (g *GestureContext) Layer() *Layer {
	return g.layer
}

// Accum returns the airbrush opacity accumulated at the current position.
func (g *GestureContext) Accum() float64 {
	return g.accum
}

// write applies stamps to the target layer and returns the number of texels touched.
func (g *GestureContext) write(stamps []Stamp) int {
	target := g.layer.surface
	touched := 0
	for _, st := range stamps {
		if g.base != nil {
			r := st.Bounds()
			target.CopyRect(g.base, r)
			g.dab = g.dab.Union(r)
		}
		touched += target.Stamp(st, g.clip)
	}
	return touched
}

// settle commits the current airbrush dab into the base and restarts the
// accumulation.
func (g *GestureContext) settle() {
	if g.base != nil && !g.dab.Empty() {
		g.base.CopyRect(g.layer.surface, g.dab)
	}
	g.dab = image.Rectangle{}
	g.accum = 0
}
