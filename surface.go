package webphoto

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"

	"github.com/esimov/webphoto/imop"
)

// Surface is a mutable 2-D buffer of straight-alpha RGBA texels with
// blend-mode-aware drawing primitives.
type Surface struct {
	img *image.NRGBA
}

// NewSurface allocates a fully transparent surface.
func NewSurface(width, height int) *Surface {
	return &Surface{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// NewSurfaceFromImage copies any image into a new surface with its min-point at (0, 0).
func NewSurfaceFromImage(img image.Image) *Surface {
	src := ToNRGBA(img)
	if src == img {
		src = cloneNRGBA(src)
	}
	return &Surface{img: src}
}

// Width returns the surface width in texels.
func (s *Surface) Width() int { return s.img.Bounds().Dx() }

// Height returns the surface height in texels.
func (s *Surface) Height() int { return s.img.Bounds().Dy() }

// Bounds returns the surface rectangle.
func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }

// Image exposes the backing buffer. Callers must not retain it across edits.
func (s *Surface) Image() *image.NRGBA { return s.img }

// At returns the texel at (x, y), or the zero color outside the surface.
func (s *Surface) At(x, y int) color.NRGBA {
	return s.img.NRGBAAt(x, y)
}

// Set writes a texel directly, bypassing blending and clipping.
func (s *Surface) Set(x, y int, c color.NRGBA) {
	s.img.SetNRGBA(x, y, c)
}

// Clone returns a deep copy of the surface.
func (s *Surface) Clone() *Surface {
	return &Surface{img: cloneNRGBA(s.img)}
}

// Equal reports whether both surfaces hold bit-identical texels.
func (s *Surface) Equal(o *Surface) bool {
	return s.img.Bounds() == o.img.Bounds() && bytes.Equal(s.img.Pix, o.img.Pix)
}

// Clear makes every texel fully transparent.
func (s *Surface) Clear() {
	for i := range s.img.Pix {
		s.img.Pix[i] = 0
	}
}

// Fill paints every texel allowed by the clip with an opaque copy of c.
func (s *Surface) Fill(c color.NRGBA, clip *SelectionMask) {
	if clip == nil {
		draw.Draw(s.img, s.img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
		return
	}
	s.Apply(clip, func(_, _ int, _ color.NRGBA) color.NRGBA { return c })
}

// Resize reallocates the buffer. Existing content stays anchored at the
// origin; newly exposed texels are transparent.
func (s *Surface) Resize(width, height int) {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, s.img.Bounds(), s.img, image.Point{}, draw.Src)
	s.img = dst
}

// Replace swaps the backing buffer with img, which the surface takes ownership of.
func (s *Surface) Replace(img *image.NRGBA) {
	s.img = img
}

// CopyRect copies the texels of r from src, clipped to both surfaces.
func (s *Surface) CopyRect(src *Surface, r image.Rectangle) {
	r = r.Intersect(s.img.Bounds()).Intersect(src.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(s.img, r, src.img, r.Min, draw.Src)
}

// Stamp writes one paint primitive, honoring the clip, and returns the number
// of texels it touched. Texels outside the surface are silently dropped.
func (s *Surface) Stamp(st Stamp, clip *SelectionMask) int {
	r := st.Bounds().Intersect(s.img.Bounds())
	touched := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if cov := st.Coverage(x, y); cov > 0 && clip.Allows(x, y) {
				s.blend(x, y, st, cov)
				touched++
			}
		}
	}
	if touched == 0 {
		if a := st.anchor(); a.In(s.img.Bounds()) && clip.Allows(a.X, a.Y) {
			s.blend(a.X, a.Y, st, 1)
			touched++
		}
	}
	return touched
}

// PaintMask deposits c through an alpha coverage mask aligned with the surface.
func (s *Surface) PaintMask(mask *image.Alpha, c color.NRGBA, opacity float64, mode imop.Mode, clip *SelectionMask) int {
	r := mask.Bounds().Intersect(s.img.Bounds())
	st := Stamp{Color: c, Opacity: opacity, Mode: mode}
	touched := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			a := mask.AlphaAt(x, y).A
			if a == 0 || !clip.Allows(x, y) {
				continue
			}
			s.blend(x, y, st, float64(a)/255)
			touched++
		}
	}
	return touched
}

// Apply replaces every texel allowed by the clip with fn's result.
func (s *Surface) Apply(clip *SelectionMask, fn func(x, y int, c color.NRGBA) color.NRGBA) {
	b := s.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if clip.Allows(x, y) {
				s.img.SetNRGBA(x, y, fn(x, y, s.img.NRGBAAt(x, y)))
			}
		}
	}
}

// CompositeOnto blends this surface into dst at the given opacity and blend mode.
func (s *Surface) CompositeOnto(dst *Surface, opacity float64, mode imop.Mode) {
	blend := imop.NewBlend()
	if err := blend.Set(mode); err != nil {
		blend = imop.NewBlend()
	}
	imop.InitOp().Draw(dst.img, s.img, blend, opacity)
}

func (s *Surface) blend(x, y int, st Stamp, cov float64) {
	i := s.img.PixOffset(x, y)
	p := s.img.Pix[i : i+4 : i+4]
	d := color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}

	var o color.NRGBA
	if st.Erase {
		o = imop.Mix(imop.DstOut, imop.Normal, color.NRGBA{A: 0xff}, d, cov*st.Opacity)
	} else {
		mode := st.Mode
		if mode == "" {
			mode = imop.Normal
		}
		o = imop.Mix(imop.SrcOver, mode, st.Color, d, cov*st.Opacity)
	}
	p[0], p[1], p[2], p[3] = o.R, o.G, o.B, o.A
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
