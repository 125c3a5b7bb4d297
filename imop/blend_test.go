package imop

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertNear(t *testing.T, expected, actual color.NRGBA) {
	t.Helper()
	assert.InDelta(t, float64(expected.R), float64(actual.R), 1, "red channel")
	assert.InDelta(t, float64(expected.G), float64(actual.G), 1, "green channel")
	assert.InDelta(t, float64(expected.B), float64(actual.B), 1, "blue channel")
	assert.InDelta(t, float64(expected.A), float64(actual.A), 1, "alpha channel")
}

func TestBlend_Basic(t *testing.T) {
	assert := assert.New(t)

	b := NewBlend()
	assert.Equal(Normal, b.Get())
	assert.Error(b.Set("blend_mode_not_supported"))
	assert.Equal(Normal, b.Get())

	assert.NoError(b.Set(Darken))
	assert.Equal(Darken, b.Get())
	assert.NoError(b.Set(Multiply))
	assert.Equal(Multiply, b.Get())

	var nilBlend *Blend
	assert.Equal(Normal, nilBlend.Get())

	m, err := ParseMode("normal")
	assert.NoError(err)
	assert.Equal(Normal, m)
	assert.Len(Modes(), 6)
}

func TestBlend_Modes(t *testing.T) {
	// The expected values match two opaque layers overlapped in an editor
	// and blended with the corresponding mode.
	pinkFront := color.NRGBA{R: 214, G: 20, B: 65, A: 255}
	orangeBack := color.NRGBA{R: 250, G: 121, B: 17, A: 255}

	cases := []struct {
		mode     Mode
		expected color.NRGBA
	}{
		{Normal, pinkFront},
		{Darken, color.NRGBA{R: 214, G: 20, B: 17, A: 255}},
		{Lighten, color.NRGBA{R: 250, G: 121, B: 65, A: 255}},
		{Multiply, color.NRGBA{R: 210, G: 9, B: 4, A: 255}},
		{Screen, color.NRGBA{R: 254, G: 132, B: 78, A: 255}},
		{Overlay, color.NRGBA{R: 253, G: 19, B: 9, A: 255}},
	}
	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			assertNear(t, tc.expected, Mix(SrcOver, tc.mode, pinkFront, orangeBack, 1))
		})
	}
}

func TestBlend_PartialOpacityOverOpaqueBackdrop(t *testing.T) {
	src := color.NRGBA{R: 200, G: 100, B: 0, A: 255}
	dst := color.NRGBA{R: 100, G: 200, B: 50, A: 255}

	// normal: out = src*a + dst*(1-a)
	a := 0.5
	assertNear(t, color.NRGBA{R: 150, G: 150, B: 25, A: 255}, Mix(SrcOver, Normal, src, dst, a))

	// multiply: out = dst*(1-a) + (src*dst/255)*a
	exp := func(s, d uint8) uint8 {
		v := float64(d)*(1-a) + float64(s)*float64(d)/255*a
		return uint8(v + 0.5)
	}
	assertNear(t,
		color.NRGBA{R: exp(200, 100), G: exp(100, 200), B: exp(0, 50), A: 255},
		Mix(SrcOver, Multiply, src, dst, a),
	)
}

func TestBlend_MultiplyOverTransparentKeepsSourceColor(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	out := Mix(SrcOver, Multiply, red, color.NRGBA{}, 0.5)
	assertNear(t, color.NRGBA{R: 255, A: 128}, out)
}
