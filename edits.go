package webphoto

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	"github.com/esimov/webphoto/imop"
	"github.com/esimov/webphoto/utils"
)

// EditContext is what a discrete edit may touch.
type EditContext struct {
	Stack *LayerStack
	// Layer is the active layer. It is visible.
	Layer *Layer
	Clip  *SelectionMask
	Rand  *rand.Rand
}

// Edit is a discrete, atomic mutation of the layer stack. The engine records
// one snapshot after every successful edit.
type Edit interface {
	Apply(ec *EditContext) error
}

// EditFunc adapts a function to the Edit interface.
type EditFunc func(ec *EditContext) error

// Apply implements Edit.
func (f EditFunc) Apply(ec *EditContext) error { return f(ec) }

// GenerativeFill fills the selection with blurred noise, optionally captioned
// with the prompt. Mask overrides the current selection when set.
type GenerativeFill struct {
	Prompt string
	Mask   *SelectionMask
}

// Apply implements Edit.
func (f GenerativeFill) Apply(ec *EditContext) error {
	clip := f.Mask
	if clip == nil {
		clip = ec.Clip
	}
	if clip == nil {
		return ErrSelectionRequired
	}
	s := ec.Layer.surface

	noise := image.NewNRGBA(s.Bounds())
	for i := 0; i < len(noise.Pix); i += 4 {
		noise.Pix[i] = uint8(ec.Rand.IntN(256))
		noise.Pix[i+1] = uint8(ec.Rand.IntN(256))
		noise.Pix[i+2] = uint8(ec.Rand.IntN(256))
		noise.Pix[i+3] = 0xff
	}
	blurred := imaging.Blur(noise, 10)
	s.Apply(clip, func(x, y int, _ color.NRGBA) color.NRGBA {
		return blurred.NRGBAAt(x, y)
	})

	if f.Prompt != "" {
		white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		s.Apply(clip, func(_, _ int, c color.NRGBA) color.NRGBA {
			return imop.Mix(imop.SrcOver, imop.Normal, white, c, 0.5)
		})
		mid := Pt(float64(s.Width())/2, float64(s.Height())/2)
		DrawText(s, mid, "[AI: "+f.Prompt+"]", color.NRGBA{A: 0xff}, 1, AlignCenter, clip)
	}
	return nil
}

// BackgroundRemove fades alpha to zero towards the corners of the active
// layer, starting halfway between the center and the farthest corner.
type BackgroundRemove struct{}

// Apply implements Edit.
func (BackgroundRemove) Apply(ec *EditContext) error {
	s := ec.Layer.surface
	w, h := float64(s.Width()), float64(s.Height())
	maxDist := math.Hypot(w/2, h/2)

	s.Apply(ec.Clip, func(x, y int, c color.NRGBA) color.NRGBA {
		d := math.Hypot(float64(x)-w/2, float64(y)-h/2)
		if d > maxDist*0.5 {
			fade := 1 - (d-maxDist*0.5)/(maxDist*0.5)
			c.A = uint8(utils.Clamp(float64(c.A)*fade, 0, 255))
		}
		return c
	})
	return nil
}

// Upscale resamples every layer to Factor times the canvas size.
type Upscale struct {
	Factor int
}

// Apply implements Edit.
func (u Upscale) Apply(ec *EditContext) error {
	f := u.Factor
	if f <= 0 {
		f = 2
	}
	return ec.Stack.Rescale(ec.Stack.Width()*f, ec.Stack.Height()*f)
}

// StyleTransfer boosts saturation, rotates the hue by Hue turns and
// posterizes lightness on every non-transparent texel of the active layer.
type StyleTransfer struct {
	Prompt string
	// Hue is the rotation in turns. A negative value picks one at random.
	Hue float64
}

// Apply implements Edit.
func (st StyleTransfer) Apply(ec *EditContext) error {
	shift := st.Hue
	if shift < 0 {
		shift = ec.Rand.Float64()
	}
	ec.Layer.surface.Apply(ec.Clip, func(_, _ int, c color.NRGBA) color.NRGBA {
		if c.A == 0 {
			return c
		}
		h, s, l := utils.RGBToHSL(c.R, c.G, c.B)
		s = math.Min(1, s*1.5)
		h = math.Mod(h+shift, 1)
		l = math.Round(l*5) / 5
		c.R, c.G, c.B = utils.HSLToRGB(h, s, l)
		return c
	})
	return nil
}

// TextToImage adds a layer holding a diagonal two-hue gradient box in the
// middle of the canvas, captioned with the prompt.
type TextToImage struct {
	Prompt string
}

// Apply implements Edit.
func (t TextToImage) Apply(ec *EditContext) error {
	l := ec.Stack.AddLayer("AI Image")
	s := l.surface
	w, h := s.Width(), s.Height()

	var from, to color.NRGBA
	from.R, from.G, from.B = utils.HSLToRGB(ec.Rand.Float64(), 1, 0.5)
	to.R, to.G, to.B = utils.HSLToRGB(ec.Rand.Float64(), 1, 0.5)

	box := image.Rect(w/4, h/4, w/4+w/2, h/4+h/2)
	diag := float64(w*w + h*h)
	s.Apply(ec.Clip, func(x, y int, c color.NRGBA) color.NRGBA {
		if !image.Pt(x, y).In(box) {
			return c
		}
		// Projection onto the canvas diagonal.
		t := utils.Clamp(float64(x*w+y*h)/diag, 0, 1)
		return color.NRGBA{
			R: lerp8(from.R, to.R, t),
			G: lerp8(from.G, to.G, t),
			B: lerp8(from.B, to.B, t),
			A: 0xff,
		}
	})
	if t.Prompt != "" {
		white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		DrawText(s, Pt(float64(w)/2, float64(h)/2), t.Prompt, white, 2, AlignCenter, ec.Clip)
	}
	return nil
}

// AdjustKind names an image adjustment.
type AdjustKind string

const (
	AdjustInvert     AdjustKind = "invert"
	AdjustGrayscale  AdjustKind = "grayscale"
	AdjustSepia      AdjustKind = "sepia"
	AdjustBrightness AdjustKind = "brightness"
	AdjustHue        AdjustKind = "hue"
	AdjustBlur       AdjustKind = "blur"
)

// Adjust applies a destructive color adjustment to the active layer.
// Amount is the brightness offset, the hue shift in degrees or the blur sigma.
type Adjust struct {
	Kind   AdjustKind
	Amount float64
}

// Apply implements Edit.
func (a Adjust) Apply(ec *EditContext) error {
	s := ec.Layer.surface

	var fn func(x, y int, c color.NRGBA) color.NRGBA
	switch a.Kind {
	case AdjustInvert:
		fn = func(_, _ int, c color.NRGBA) color.NRGBA {
			c.R, c.G, c.B = 255-c.R, 255-c.G, 255-c.B
			return c
		}
	case AdjustGrayscale:
		fn = func(_, _ int, c color.NRGBA) color.NRGBA {
			avg := uint8((int(c.R) + int(c.G) + int(c.B)) / 3)
			c.R, c.G, c.B = avg, avg, avg
			return c
		}
	case AdjustSepia:
		fn = func(_, _ int, c color.NRGBA) color.NRGBA {
			r, g, b := float64(c.R), float64(c.G), float64(c.B)
			c.R = uint8(math.Min(255, r*0.393+g*0.769+b*0.189))
			c.G = uint8(math.Min(255, r*0.349+g*0.686+b*0.168))
			c.B = uint8(math.Min(255, r*0.272+g*0.534+b*0.131))
			return c
		}
	case AdjustBrightness:
		delta := int(math.Round(a.Amount))
		fn = func(_, _ int, c color.NRGBA) color.NRGBA {
			c.R = uint8(utils.Clamp(int(c.R)+delta, 0, 255))
			c.G = uint8(utils.Clamp(int(c.G)+delta, 0, 255))
			c.B = uint8(utils.Clamp(int(c.B)+delta, 0, 255))
			return c
		}
	case AdjustHue:
		shift := a.Amount / 360
		fn = func(_, _ int, c color.NRGBA) color.NRGBA {
			h, sat, l := utils.RGBToHSL(c.R, c.G, c.B)
			h = math.Mod(math.Mod(h+shift, 1)+1, 1)
			c.R, c.G, c.B = utils.HSLToRGB(h, sat, l)
			return c
		}
	case AdjustBlur:
		if a.Amount <= 0 {
			return nil
		}
		blurred := imaging.Blur(s.Image(), a.Amount)
		fn = func(x, y int, _ color.NRGBA) color.NRGBA {
			return blurred.NRGBAAt(x, y)
		}
	default:
		return fmt.Errorf("unknown adjustment: %q", a.Kind)
	}
	s.Apply(ec.Clip, fn)
	return nil
}

// ClearLayer makes the selected part of the active layer transparent.
type ClearLayer struct{}

// Apply implements Edit.
func (ClearLayer) Apply(ec *EditContext) error {
	if ec.Clip == nil {
		ec.Layer.surface.Clear()
		return nil
	}
	ec.Layer.surface.Apply(ec.Clip, func(int, int, color.NRGBA) color.NRGBA {
		return color.NRGBA{}
	})
	return nil
}

// ImportImage places an image centered on a new layer, shrinking it to fit
// the canvas when it is larger.
type ImportImage struct {
	Name  string
	Image image.Image
}

// Apply implements Edit.
func (im ImportImage) Apply(ec *EditContext) error {
	if im.Image == nil {
		return fmt.Errorf("import %q: no image", im.Name)
	}
	src := ToNRGBA(im.Image)
	w, h := ec.Stack.Width(), ec.Stack.Height()
	if src.Bounds().Dx() > w || src.Bounds().Dy() > h {
		src = imaging.Fit(src, w, h, imaging.Lanczos)
	}

	l := ec.Stack.AddLayer(im.Name)
	off := image.Pt((w-src.Bounds().Dx())/2, (h-src.Bounds().Dy())/2)
	l.surface.Apply(ec.Clip, func(x, y int, c color.NRGBA) color.NRGBA {
		p := image.Pt(x, y).Sub(off)
		if !p.In(src.Bounds()) {
			return c
		}
		return src.NRGBAAt(p.X, p.Y)
	})
	return nil
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
