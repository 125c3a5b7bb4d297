package webphoto

import (
	"fmt"
	"image"
	"math"

	"github.com/esimov/webphoto/imop"
	"github.com/esimov/webphoto/utils"
)

// BrushType tags one variant of the closed brush set.
type BrushType int

const (
	PlainBrush BrushType = iota
	Pencil
	Marker
	Watercolor
	Eraser
	Airbrush
	Spray
)

var brushNames = [...]string{
	PlainBrush: "brush",
	Pencil:     "pencil",
	Marker:     "marker",
	Watercolor: "watercolor",
	Eraser:     "eraser",
	Airbrush:   "airbrush",
	Spray:      "spray",
}

func (t BrushType) String() string {
	if t < 0 || int(t) >= len(brushNames) {
		return fmt.Sprintf("BrushType(%d)", int(t))
	}
	return brushNames[t]
}

// ParseBrushType maps a brush name to its type.
func ParseBrushType(s string) (BrushType, error) {
	for t, name := range brushNames {
		if name == s {
			return BrushType(t), nil
		}
	}
	return 0, fmt.Errorf("unknown brush type: %q", s)
}

// SprayPattern selects how the spray can distributes paint.
type SprayPattern int

const (
	SprayScatter SprayPattern = iota
	SprayWide
	SprayThin
	SpraySoft
)

var sprayNames = [...]string{
	SprayScatter: "scatter",
	SprayWide:    "wide",
	SprayThin:    "thin",
	SpraySoft:    "soft",
}

func (p SprayPattern) String() string {
	if p < 0 || int(p) >= len(sprayNames) {
		return fmt.Sprintf("SprayPattern(%d)", int(p))
	}
	return sprayNames[p]
}

// ParseSprayPattern maps a pattern name to its value.
func ParseSprayPattern(s string) (SprayPattern, error) {
	for p, name := range sprayNames {
		if name == s {
			return SprayPattern(p), nil
		}
	}
	return 0, fmt.Errorf("unknown spray pattern: %q", s)
}

// BrushParams are the brush options captured when a gesture starts.
type BrushParams struct {
	Type    BrushType
	Size    float64
	Opacity float64
	Spray   SprayPattern
	// Flow is the airbrush opacity gained per tick.
	Flow float64
}

// Brush turns pointer motion and scheduler ticks into stamps.
type Brush interface {
	Type() BrushType
	// Continuous brushes keep painting on scheduler ticks while held.
	Continuous() bool
	// Segment returns the stamps for a pointer travelling from one point to another.
	Segment(g *GestureContext, from, to Point) []Stamp
	// Tick returns the stamps for one scheduler pulse with the pointer at a point.
	Tick(g *GestureContext, at Point) []Stamp
}

var brushes = [...]Brush{
	PlainBrush: plainBrush{},
	Pencil:     pencil{},
	Marker:     marker{},
	Watercolor: watercolor{},
	Eraser:     eraser{},
	Airbrush:   airbrush{},
	Spray:      spray{},
}

// BrushFor returns the brush implementing t. Unknown types fall back to the plain brush.
func BrushFor(t BrushType) Brush {
	if t < 0 || int(t) >= len(brushes) {
		return brushes[PlainBrush]
	}
	return brushes[t]
}

// interpolate calls fn for steps+1 evenly spaced points from a to b, both
// ends included. Zero steps yields the single point b.
func interpolate(a, b Point, steps int, fn func(Point)) {
	for i := 0; i <= steps; i++ {
		t := 1.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		fn(a.Lerp(b, t))
	}
}

// clipSegment trims the segment a-b to r with the Liang-Barsky algorithm and
// reports false when no part of it lies inside r. A degenerate segment is
// returned as is.
func clipSegment(a, b Point, r image.Rectangle) (Point, Point, bool) {
	for _, v := range []float64{a.X, a.Y, b.X, b.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return a, b, false
		}
	}
	if a == b {
		return a, b, true
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, a.X - float64(r.Min.X)},
		{dx, float64(r.Max.X) - a.X},
		{-dy, a.Y - float64(r.Min.Y)},
		{dy, float64(r.Max.Y) - a.Y},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = min(t1, t)
		}
	}
	return a.Lerp(b, t0), a.Lerp(b, t1), true
}

// reach clips a segment to the part that can still touch the target layer,
// widened by the brush footprint and its jitter.
func (g *GestureContext) reach(from, to Point) (Point, Point, bool) {
	margin := int(math.Ceil(g.Params.Size)) + 2
	return clipSegment(from, to, g.layer.surface.Bounds().Inset(-margin))
}

type plainBrush struct{}

func (plainBrush) Type() BrushType  { return PlainBrush }
func (plainBrush) Continuous() bool { return false }

func (plainBrush) Segment(g *GestureContext, from, to Point) []Stamp {
	from, to, ok := g.reach(from, to)
	if !ok {
		return nil
	}
	var out []Stamp
	interpolate(from, to, int(math.Ceil(from.Dist(to))), func(p Point) {
		out = append(out, Stamp{
			Shape:   ShapeDisc,
			Center:  p,
			Radius:  g.Params.Size / 2,
			Color:   g.Color,
			Opacity: g.Params.Opacity,
			Mode:    imop.Normal,
		})
	})
	return out
}

func (plainBrush) Tick(*GestureContext, Point) []Stamp { return nil }

type eraser struct{}

func (eraser) Type() BrushType  { return Eraser }
func (eraser) Continuous() bool { return false }

func (eraser) Segment(g *GestureContext, from, to Point) []Stamp {
	from, to, ok := g.reach(from, to)
	if !ok {
		return nil
	}
	var out []Stamp
	interpolate(from, to, int(math.Ceil(from.Dist(to))), func(p Point) {
		out = append(out, Stamp{
			Shape:   ShapeDisc,
			Center:  p,
			Radius:  g.Params.Size / 2,
			Opacity: g.Params.Opacity,
			Erase:   true,
		})
	})
	return out
}

func (eraser) Tick(*GestureContext, Point) []Stamp { return nil }

type pencil struct{}

func (pencil) Type() BrushType  { return Pencil }
func (pencil) Continuous() bool { return false }

// Segment lays small hard blocks, one per pixel of travel, with a half pixel
// of positional noise for a paper grain look.
func (pencil) Segment(g *GestureContext, from, to Point) []Stamp {
	from, to, ok := g.reach(from, to)
	if !ok {
		return nil
	}
	side := utils.Max(1, utils.Min(g.Params.Size, 3))
	var out []Stamp
	interpolate(from, to, int(math.Ceil(from.Dist(to))), func(p Point) {
		p.X += g.rand.Float64() - 0.5
		p.Y += g.rand.Float64() - 0.5
		out = append(out, Stamp{
			Shape:   ShapeRect,
			Center:  p,
			Size:    side,
			Color:   g.Color,
			Opacity: g.Params.Opacity * 0.7,
			Mode:    imop.Normal,
		})
	})
	return out
}

func (pencil) Tick(*GestureContext, Point) []Stamp { return nil }

type marker struct{}

func (marker) Type() BrushType  { return Marker }
func (marker) Continuous() bool { return false }

// Segment multiplies translucent discs so overlapping strokes darken.
func (marker) Segment(g *GestureContext, from, to Point) []Stamp {
	from, to, ok := g.reach(from, to)
	if !ok {
		return nil
	}
	var out []Stamp
	interpolate(from, to, int(math.Ceil(from.Dist(to))), func(p Point) {
		out = append(out, Stamp{
			Shape:   ShapeDisc,
			Center:  p,
			Radius:  g.Params.Size / 2,
			Color:   g.Color,
			Opacity: g.Params.Opacity * 0.5,
			Mode:    imop.Multiply,
		})
	})
	return out
}

func (marker) Tick(*GestureContext, Point) []Stamp { return nil }

type watercolor struct{}

func (watercolor) Type() BrushType  { return Watercolor }
func (watercolor) Continuous() bool { return false }

// Segment places soft, jittered gradient discs every quarter of the brush
// size so repeated passes build up density.
func (watercolor) Segment(g *GestureContext, from, to Point) []Stamp {
	from, to, ok := g.reach(from, to)
	if !ok {
		return nil
	}
	size := g.Params.Size
	steps := int(math.Ceil(from.Dist(to) / (size * 0.25)))

	var out []Stamp
	interpolate(from, to, steps, func(p Point) {
		p.X += (g.rand.Float64() - 0.5) * size * 0.1
		p.Y += (g.rand.Float64() - 0.5) * size * 0.1
		out = append(out, Stamp{
			Shape:   ShapeGradientDisc,
			Center:  p,
			Inner:   size / 4,
			Radius:  size / 2,
			Color:   g.Color,
			Opacity: g.Params.Opacity * 0.2,
			Mode:    imop.Multiply,
		})
	})
	return out
}

func (watercolor) Tick(*GestureContext, Point) []Stamp { return nil }

type airbrush struct{}

func (airbrush) Type() BrushType  { return Airbrush }
func (airbrush) Continuous() bool { return true }

// Segment settles the dab at the previous position and restarts the
// accumulation. Paint is only deposited by ticks.
func (airbrush) Segment(g *GestureContext, _, _ Point) []Stamp {
	g.settle()
	return nil
}

// Tick raises the accumulated opacity by the flow, saturating at one, and
// returns the dab at that opacity. The engine redraws the dab over the
// gesture base so the result does not compound.
func (airbrush) Tick(g *GestureContext, at Point) []Stamp {
	g.accum = utils.Min(1, g.accum+g.Params.Flow)
	return []Stamp{{
		Shape:   ShapeGradientDisc,
		Center:  at,
		Inner:   g.Params.Size / 4,
		Radius:  g.Params.Size / 2,
		Color:   g.Color,
		Opacity: g.Params.Opacity * g.accum,
		Mode:    imop.Normal,
	}}
}

type spray struct{}

func (spray) Type() BrushType  { return Spray }
func (spray) Continuous() bool { return true }

// Segment bursts once at the new pointer position.
func (s spray) Segment(g *GestureContext, _, to Point) []Stamp {
	return s.Tick(g, to)
}

// Tick scatters a fixed number of single texel dots uniformly over the spray
// disc, never outside its radius. The soft pattern draws one faint gradient
// disc instead.
func (spray) Tick(g *GestureContext, at Point) []Stamp {
	radius, density := sprayShape(g.Params.Spray, g.Params.Size)

	if g.Params.Spray == SpraySoft {
		return []Stamp{{
			Shape:   ShapeGradientDisc,
			Center:  at,
			Radius:  radius,
			Color:   g.Color,
			Opacity: g.Params.Opacity * 0.1,
			Mode:    imop.Normal,
		}}
	}

	n := int(math.Ceil(density))
	out := make([]Stamp, 0, n)
	for i := 0; i < n; i++ {
		c, ok := sprayDot(g, at, radius)
		if !ok {
			continue
		}
		out = append(out, Stamp{
			Shape:   ShapeRect,
			Center:  c,
			Size:    1,
			Color:   g.Color,
			Opacity: g.Params.Opacity,
			Mode:    imop.Normal,
		})
	}
	return out
}

// sprayDotAttempts bounds the resampling of one dot.
const sprayDotAttempts = 16

// sprayDot picks a texel uniformly over the spray disc and returns its
// center. Samples whose texel center falls outside the radius are drawn
// again; the dot is dropped when every attempt misses.
func sprayDot(g *GestureContext, at Point, radius float64) (Point, bool) {
	for range sprayDotAttempts {
		r := radius * math.Sqrt(g.rand.Float64())
		theta := g.rand.Float64() * 2 * math.Pi
		c := Pt(
			math.Floor(at.X+r*math.Cos(theta))+0.5,
			math.Floor(at.Y+r*math.Sin(theta))+0.5,
		)
		if c.Dist(at) <= radius {
			return c, true
		}
	}
	return Point{}, false
}

// sprayShape returns the spray radius and the dots per burst.
func sprayShape(p SprayPattern, size float64) (radius, density float64) {
	switch p {
	case SprayWide:
		return size, size * 2
	case SprayThin:
		return size / 4, size / 2
	}
	return size / 2, size
}
