package imop

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/esimov/webphoto/utils"
)

// Op is a Porter-Duff composition operator.
type Op string

const (
	Clear   Op = "clear"
	Copy    Op = "copy"
	Dst     Op = "dst"
	SrcOver Op = "src_over"
	DstOver Op = "dst_over"
	SrcIn   Op = "src_in"
	DstIn   Op = "dst_in"
	SrcOut  Op = "src_out"
	DstOut  Op = "dst_out"
	SrcAtop Op = "src_atop"
	DstAtop Op = "dst_atop"
	Xor     Op = "xor"
)

var ops = []Op{Clear, Copy, Dst, SrcOver, DstOver, SrcIn, DstIn, SrcOut, DstOut, SrcAtop, DstAtop, Xor}

// Composite holds the currently active composition operator.
type Composite struct {
	current Op
}

// InitOp returns a Composite with the default source-over operator.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set changes the active composition operator.
func (c *Composite) Set(op Op) error {
	for _, o := range ops {
		if o == op {
			c.current = op
			return nil
		}
	}
	return fmt.Errorf("unsupported composite operation: %q", op)
}

// Get returns the active composition operator.
func (c *Composite) Get() Op {
	return c.current
}

// Mix composites the source texel over the backdrop texel with the given
// operator and blend mode. The alpha factor scales the source alpha and
// carries stamp coverage and opacity; it is clamped to [0, 1].
//
// For an opaque backdrop and the source-over operator this reduces to
//
//	normal:   out = src*a + dst*(1-a)
//	multiply: out = dst*(1-a) + (src*dst/255)*a
//
// where a = alpha * src.A/255.
func Mix(op Op, mode Mode, src, dst color.NRGBA, alpha float64) color.NRGBA {
	as := float64(src.A) / 255 * utils.Clamp(alpha, 0, 1)
	ab := float64(dst.A) / 255

	cs := [3]float64{float64(src.R) / 255, float64(src.G) / 255, float64(src.B) / 255}
	cb := [3]float64{float64(dst.R) / 255, float64(dst.G) / 255, float64(dst.B) / 255}

	// The blended source color, weighted by how much backdrop is present.
	var mixed [3]float64
	for i := range cs {
		mixed[i] = (1-ab)*cs[i] + ab*Apply(mode, cs[i], cb[i])
	}

	var (
		ao float64
		co [3]float64
	)
	switch op {
	case Clear:
		return color.NRGBA{}
	case Copy:
		ao, co = as, mixed
	case Dst:
		return dst
	case SrcOver:
		ao = as + ab*(1-as)
		for i := range co {
			co[i] = safeDiv(as*mixed[i]+ab*cb[i]*(1-as), ao)
		}
	case DstOver:
		ao = as*(1-ab) + ab
		for i := range co {
			co[i] = safeDiv(as*cs[i]*(1-ab)+ab*cb[i], ao)
		}
	case SrcIn:
		ao, co = as*ab, mixed
	case DstIn:
		ao, co = ab*as, cb
	case SrcOut:
		ao, co = as*(1-ab), cs
	case DstOut:
		ao, co = ab*(1-as), cb
	case SrcAtop:
		ao = ab
		for i := range co {
			co[i] = as*mixed[i] + cb[i]*(1-as)
		}
	case DstAtop:
		ao = as
		for i := range co {
			co[i] = safeDiv(as*cs[i]*(1-ab)+ab*cb[i]*as, ao)
		}
	case Xor:
		ao = as*(1-ab) + ab*(1-as)
		for i := range co {
			co[i] = safeDiv(as*cs[i]*(1-ab)+ab*cb[i]*(1-as), ao)
		}
	default:
		return dst
	}

	if ao <= 0 {
		// A fully transparent result keeps the backdrop color channels so that
		// erasing and then undoing an erase round-trips exactly.
		return color.NRGBA{R: dst.R, G: dst.G, B: dst.B, A: 0}
	}
	return color.NRGBA{
		R: toByte(co[0]),
		G: toByte(co[1]),
		B: toByte(co[2]),
		A: toByte(ao),
	}
}

// Draw composites src onto dst in place, texel by texel, scaling the source
// alpha by opacity. Both images are expected to share the same bounds; only
// the intersection is processed.
func (c *Composite) Draw(dst, src *image.NRGBA, blend *Blend, opacity float64) {
	op := c.Get()
	mode := blend.Get()
	r := dst.Bounds().Intersect(src.Bounds())

	for y := r.Min.Y; y < r.Max.Y; y++ {
		si := src.PixOffset(r.Min.X, y)
		di := dst.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			s := color.NRGBA{R: src.Pix[si], G: src.Pix[si+1], B: src.Pix[si+2], A: src.Pix[si+3]}
			if s.A != 0 || op != SrcOver {
				d := color.NRGBA{R: dst.Pix[di], G: dst.Pix[di+1], B: dst.Pix[di+2], A: dst.Pix[di+3]}
				o := Mix(op, mode, s, d, opacity)
				dst.Pix[di], dst.Pix[di+1], dst.Pix[di+2], dst.Pix[di+3] = o.R, o.G, o.B, o.A
			}
			si += 4
			di += 4
		}
	}
}

func safeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

func toByte(v float64) uint8 {
	return uint8(utils.Clamp(math.Round(v*255), 0, 255))
}
