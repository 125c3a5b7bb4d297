package webphoto

import (
	"image"
	"image/color"
)

// FloodFill replaces the 4-connected region of texels exactly matching the
// color at (x, y) with c, without crossing the clip. It returns the number
// of texels changed.
func FloodFill(s *Surface, x, y int, c color.NRGBA, clip *SelectionMask) int {
	b := s.Bounds()
	start := image.Pt(x, y)
	if !start.In(b) || !clip.Allows(x, y) {
		return 0
	}
	target := s.At(x, y)
	if target == c {
		return 0
	}

	filled := 0
	stack := []image.Point{start}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !p.In(b) || !clip.Allows(p.X, p.Y) || s.At(p.X, p.Y) != target {
			continue
		}
		s.Set(p.X, p.Y, c)
		filled++

		stack = append(stack,
			image.Pt(p.X+1, p.Y),
			image.Pt(p.X-1, p.Y),
			image.Pt(p.X, p.Y+1),
			image.Pt(p.X, p.Y-1),
		)
	}
	return filled
}
