package webphoto

import (
	"image"

	"golang.org/x/image/vector"
)

// kappa places cubic control points so four Béziers approximate a circle.
const kappa = 0.5522847498

// RectMask returns the coverage of the axis-aligned rectangle spanned by two corners.
func RectMask(width, height int, a, b Point) *image.Alpha {
	z := vector.NewRasterizer(width, height)
	z.MoveTo(float32(a.X), float32(a.Y))
	z.LineTo(float32(b.X), float32(a.Y))
	z.LineTo(float32(b.X), float32(b.Y))
	z.LineTo(float32(a.X), float32(b.Y))
	z.ClosePath()
	return rasterize(z)
}

// CircleMask returns the anti-aliased coverage of a filled circle.
func CircleMask(width, height int, c Point, r float64) *image.Alpha {
	z := vector.NewRasterizer(width, height)
	if r > 0 {
		cx, cy, rr := float32(c.X), float32(c.Y), float32(r)
		k := float32(kappa) * rr
		z.MoveTo(cx+rr, cy)
		z.CubeTo(cx+rr, cy+k, cx+k, cy+rr, cx, cy+rr)
		z.CubeTo(cx-k, cy+rr, cx-rr, cy+k, cx-rr, cy)
		z.CubeTo(cx-rr, cy-k, cx-k, cy-rr, cx, cy-rr)
		z.CubeTo(cx+k, cy-rr, cx+rr, cy-k, cx+rr, cy)
		z.ClosePath()
	}
	return rasterize(z)
}

// LineMask returns the coverage of a straight segment of the given width with butt caps.
func LineMask(width, height int, a, b Point, lineWidth float64) *image.Alpha {
	z := vector.NewRasterizer(width, height)
	d := a.Dist(b)
	if d > 0 && lineWidth > 0 {
		// Unit normal scaled to half the line width.
		nx := -(b.Y - a.Y) / d * lineWidth / 2
		ny := (b.X - a.X) / d * lineWidth / 2
		z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
		z.LineTo(float32(b.X+nx), float32(b.Y+ny))
		z.LineTo(float32(b.X-nx), float32(b.Y-ny))
		z.LineTo(float32(a.X-nx), float32(a.Y-ny))
		z.ClosePath()
	}
	return rasterize(z)
}

func rasterize(z *vector.Rasterizer) *image.Alpha {
	dst := image.NewAlpha(z.Bounds())
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst
}

// shapeMask returns the coverage of the shape a gesture drew, or nil for
// tools that are not shapes.
func shapeMask(g *GestureContext, width, height int) *image.Alpha {
	switch g.Tool {
	case ToolRect:
		return RectMask(width, height, g.Start, g.Last)
	case ToolEllipse:
		return CircleMask(width, height, g.Start, g.Start.Dist(g.Last))
	case ToolLine:
		return LineMask(width, height, g.Start, g.Last, g.Params.Size)
	}
	return nil
}
