package webphoto

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloodFill(t *testing.T) {
	s := NewSurface(10, 10)
	s.Fill(white, nil)
	// A vertical wall splits the surface in two.
	for y := 0; y < 10; y++ {
		s.Set(5, y, color.NRGBA{A: 0xff})
	}

	n := FloodFill(s, 1, 1, red, nil)
	assert.Equal(t, 50, n)
	assert.Equal(t, red, s.At(4, 9))
	assert.Equal(t, white, s.At(6, 0))
	assert.Equal(t, color.NRGBA{A: 0xff}, s.At(5, 5))

	assert.Zero(t, FloodFill(s, 1, 1, red, nil), "filling with the same color is a no-op")
	assert.Zero(t, FloodFill(s, -1, 4, red, nil))
}

func TestFloodFill_DiagonalsDoNotConnect(t *testing.T) {
	s := NewSurface(3, 3)
	s.Set(0, 0, red)
	s.Set(1, 1, red)
	assert.Equal(t, 1, FloodFill(s, 0, 0, white, nil))
	assert.Equal(t, red, s.At(1, 1))
}

func TestShapeMasks(t *testing.T) {
	rect := RectMask(20, 20, Pt(12, 15), Pt(4, 5))
	assert.Equal(t, uint8(0xff), rect.AlphaAt(8, 10).A)
	assert.Equal(t, uint8(0xff), rect.AlphaAt(4, 5).A)
	assert.Zero(t, rect.AlphaAt(12, 10).A)
	assert.Zero(t, rect.AlphaAt(3, 10).A)

	circle := CircleMask(40, 40, Pt(20, 20), 8)
	assert.Equal(t, uint8(0xff), circle.AlphaAt(20, 20).A)
	assert.Equal(t, uint8(0xff), circle.AlphaAt(14, 20).A)
	assert.Zero(t, circle.AlphaAt(20, 30).A)
	assert.Zero(t, circle.AlphaAt(26, 26).A)

	line := LineMask(40, 40, Pt(0, 10), Pt(40, 10), 4)
	assert.Equal(t, uint8(0xff), line.AlphaAt(20, 9).A)
	assert.Equal(t, uint8(0xff), line.AlphaAt(20, 11).A)
	assert.Zero(t, line.AlphaAt(20, 13).A)
	assert.Zero(t, line.AlphaAt(20, 6).A)

	assert.Zero(t, LineMask(10, 10, Pt(3, 3), Pt(3, 3), 4).AlphaAt(3, 3).A)
	assert.Zero(t, CircleMask(10, 10, Pt(3, 3), 0).AlphaAt(3, 3).A)
}

func TestDrawText(t *testing.T) {
	assert.Equal(t, 1, TextScale(1))
	assert.Equal(t, 2, TextScale(10))
	assert.Equal(t, 8, TextScale(50))

	s := NewSurface(120, 40)
	n := DrawText(s, Pt(10, 30), "Hello", red, 2, AlignLeft, nil)
	require.Positive(t, n)

	painted := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 120; x++ {
			if s.At(x, y).A == 0 {
				continue
			}
			painted++
			// Five 7px glyphs, doubled, starting at x=10.
			require.GreaterOrEqual(t, x, 10)
			require.Less(t, x, 10+5*7*2)
		}
	}
	assert.Equal(t, n, painted)
	assert.Zero(t, DrawText(s, Pt(0, 0), "", red, 1, AlignLeft, nil))
}

func TestDrawText_Centered(t *testing.T) {
	s := NewSurface(100, 30)
	DrawText(s, Pt(50, 20), "IIII", red, 1, AlignCenter, nil)

	minX, maxX := 100, -1
	for y := 0; y < 30; y++ {
		for x := 0; x < 100; x++ {
			if s.At(x, y).A != 0 {
				minX, maxX = min(minX, x), max(maxX, x)
			}
		}
	}
	require.LessOrEqual(t, minX, maxX)
	assert.GreaterOrEqual(t, minX, 50-14)
	assert.Less(t, maxX, 50+14)
}

func TestParseNames(t *testing.T) {
	for _, bt := range []BrushType{PlainBrush, Pencil, Marker, Watercolor, Eraser, Airbrush, Spray} {
		got, err := ParseBrushType(bt.String())
		require.NoError(t, err)
		assert.Equal(t, bt, got)
		assert.Equal(t, bt, BrushFor(bt).Type())
	}
	_, err := ParseBrushType("crayon")
	assert.Error(t, err)
	assert.Equal(t, PlainBrush, BrushFor(BrushType(99)).Type())

	for _, p := range []SprayPattern{SprayScatter, SprayWide, SprayThin, SpraySoft} {
		got, err := ParseSprayPattern(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	tool, err := ParseTool("ellipse")
	require.NoError(t, err)
	assert.Equal(t, ToolEllipse, tool)
	_, err = ParseTool("lasso")
	assert.Error(t, err)
}

func TestBrushes_Interpolation(t *testing.T) {
	e, _, _ := newTestEngine(t, 64, 64, func(o *ToolOptions) {
		o.Brush.Size = 8
	})
	g := newGesture(e.Options.ToolOptions(), red, Pt(0, 0), e.Stack.Active(), nil, e.Rand)

	assert.Len(t, BrushFor(PlainBrush).Segment(g, Pt(0, 0), Pt(10, 0)), 11)
	assert.Len(t, BrushFor(Marker).Segment(g, Pt(0, 0), Pt(3, 4)), 6)
	// Watercolor steps every quarter of the brush size.
	assert.Len(t, BrushFor(Watercolor).Segment(g, Pt(0, 0), Pt(8, 0)), 5)

	for _, st := range BrushFor(Pencil).Segment(g, Pt(10, 10), Pt(20, 10)) {
		assert.Equal(t, 3.0, st.Size)
		assert.InDelta(t, 0.7, st.Opacity, 1e-9)
		assert.InDelta(t, 10, st.Center.Y, 0.5)
	}

	for _, p := range []SprayPattern{SprayScatter, SprayWide, SprayThin} {
		g.Params.Spray = p
		radius, density := sprayShape(p, 8)
		dots := BrushFor(Spray).Tick(g, Pt(32, 32))
		assert.Len(t, dots, int(density), p.String())
		for _, d := range dots {
			assert.LessOrEqual(t, Pt(32, 32).Dist(d.Center), radius)
			assert.Equal(t, 0.5, d.Center.X-math.Floor(d.Center.X))
		}
	}
	g.Params.Spray = SpraySoft
	soft := BrushFor(Spray).Tick(g, Pt(32, 32))
	require.Len(t, soft, 1)
	assert.Equal(t, ShapeGradientDisc, soft[0].Shape)
	assert.Equal(t, 4.0, soft[0].Radius)
}

func TestClipSegment(t *testing.T) {
	r := image.Rect(0, 0, 10, 10)

	a, b, ok := clipSegment(Pt(-5, 5), Pt(1e9, 5), r)
	require.True(t, ok)
	assert.InDelta(t, 0, a.X, 1e-6)
	assert.InDelta(t, 10, b.X, 1e-6)
	assert.Equal(t, 5.0, b.Y)

	a, b, ok = clipSegment(Pt(2, 2), Pt(8, 3), r)
	require.True(t, ok)
	assert.Equal(t, Pt(2, 2), a)
	assert.Equal(t, Pt(8, 3), b)

	_, _, ok = clipSegment(Pt(20, 0), Pt(20, 1e12), r)
	assert.False(t, ok)
	_, _, ok = clipSegment(Pt(-1, -1), Pt(-1e9, 1e9), r)
	assert.False(t, ok)
	_, _, ok = clipSegment(Pt(0, 0), Pt(math.Inf(1), 0), r)
	assert.False(t, ok)

	// A click off the surface keeps its single point.
	a, b, ok = clipSegment(Pt(50, 50), Pt(50, 50), r)
	require.True(t, ok)
	assert.Equal(t, a, b)
}
