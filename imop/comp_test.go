package imop

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

// visible collapses every fully transparent texel to the zero color.
func visible(c color.Color) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0 {
		return color.NRGBA{}
	}
	return n
}

func TestComp_Basic(t *testing.T) {
	assert := assert.New(t)

	op := InitOp()
	assert.Equal(SrcOver, op.Get())

	assert.NoError(op.Set(Clear))
	assert.Equal(Clear, op.Get())
	assert.Error(op.Set("unsupported_composite_operation"))
	assert.Equal(Clear, op.Get())

	assert.NoError(op.Set(Dst))
	assert.Equal(Dst, op.Get())
}

func TestComp_Ops(t *testing.T) {
	transparent := color.NRGBA{}
	cyan := color.NRGBA{R: 33, G: 150, B: 243, A: 255}
	magenta := color.NRGBA{R: 233, G: 30, B: 99, A: 255}

	rect := image.Rect(0, 0, 10, 10)
	source := image.NewNRGBA(rect)
	backdrop := image.NewNRGBA(rect)

	draw.Draw(source, image.Rect(0, 4, 6, 10), &image.Uniform{cyan}, image.Point{}, draw.Src)
	draw.Draw(backdrop, image.Rect(4, 0, 10, 6), &image.Uniform{magenta}, image.Point{}, draw.Src)

	// Three representative texels: backdrop only, source only and the overlap.
	cases := []struct {
		op                          Op
		topRight, bottomLeft, center color.NRGBA
	}{
		{Clear, transparent, transparent, transparent},
		{Copy, transparent, cyan, cyan},
		{Dst, magenta, transparent, magenta},
		{SrcOver, magenta, cyan, cyan},
		{DstOver, magenta, cyan, magenta},
		{SrcIn, transparent, transparent, cyan},
		{DstIn, transparent, transparent, magenta},
		{SrcOut, transparent, cyan, transparent},
		{DstOut, magenta, transparent, transparent},
		{SrcAtop, magenta, transparent, cyan},
		{DstAtop, transparent, cyan, magenta},
		{Xor, magenta, cyan, transparent},
	}

	for _, tc := range cases {
		t.Run(string(tc.op), func(t *testing.T) {
			op := InitOp()
			assert.NoError(t, op.Set(tc.op))

			dst := image.NewNRGBA(rect)
			copy(dst.Pix, backdrop.Pix)
			op.Draw(dst, source, NewBlend(), 1)

			assert.Equal(t, tc.topRight, visible(dst.At(9, 0)))
			assert.Equal(t, tc.bottomLeft, visible(dst.At(0, 9)))
			assert.Equal(t, tc.center, visible(dst.At(5, 5)))
		})
	}
}

func TestComp_DrawOpacity(t *testing.T) {
	rect := image.Rect(0, 0, 2, 2)
	src := image.NewNRGBA(rect)
	dst := image.NewNRGBA(rect)
	draw.Draw(src, rect, &image.Uniform{color.NRGBA{R: 255, A: 255}}, image.Point{}, draw.Src)
	draw.Draw(dst, rect, &image.Uniform{color.NRGBA{B: 255, A: 255}}, image.Point{}, draw.Src)

	InitOp().Draw(dst, src, nil, 0)
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, dst.NRGBAAt(0, 0))

	InitOp().Draw(dst, src, nil, 1)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, dst.NRGBAAt(1, 1))
}
