package webphoto

import (
	"image"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/vector"
)

// SelectionMask is a bitmap of texels eligible for writes.
// A nil mask is the identity selection and allows every texel.
type SelectionMask struct {
	alpha *image.Alpha
}

// NewSelectionMask wraps an alpha bitmap. Any non-zero alpha is inside.
func NewSelectionMask(alpha *image.Alpha) *SelectionMask {
	return &SelectionMask{alpha: alpha}
}

// Allows reports whether the texel (x, y) may be written.
func (m *SelectionMask) Allows(x, y int) bool {
	if m == nil {
		return true
	}
	return m.alpha.AlphaAt(x, y).A != 0
}

// Bounds returns the rectangle covered by the bitmap.
func (m *SelectionMask) Bounds() image.Rectangle {
	if m == nil {
		return image.Rectangle{}
	}
	return m.alpha.Bounds()
}

// SelectionSource supplies the current selection. The core only reads it.
type SelectionSource interface {
	HasSelection() bool
	Mask() *SelectionMask
}

// SelectionManager owns the current selection. It backs the marquee and
// lasso tools of the command line editor.
type SelectionManager struct {
	mu   sync.RWMutex
	mask *SelectionMask
}

// NewSelectionManager returns a manager with no selection.
func NewSelectionManager() *SelectionManager {
	return &SelectionManager{}
}

// HasSelection reports whether a selection is active.
func (sm *SelectionManager) HasSelection() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.mask != nil
}

// Mask returns the active mask, or nil when nothing is selected.
func (sm *SelectionManager) Mask() *SelectionMask {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.mask
}

// Clear restores the identity selection.
func (sm *SelectionManager) Clear() {
	sm.mu.Lock()
	sm.mask = nil
	sm.mu.Unlock()
}

// SelectRect selects the rectangle spanned by two corner points.
// An empty rectangle clears the selection.
func (sm *SelectionManager) SelectRect(a, b Point) {
	r := image.Rect(
		int(math.Round(a.X)), int(math.Round(a.Y)),
		int(math.Round(b.X)), int(math.Round(b.Y)),
	)
	if r.Empty() {
		sm.Clear()
		return
	}
	alpha := image.NewAlpha(r)
	draw.Draw(alpha, r, image.Opaque, image.Point{}, draw.Src)

	sm.mu.Lock()
	sm.mask = NewSelectionMask(alpha)
	sm.mu.Unlock()
}

// SelectPolygon selects the closed polygon through pts. Texels whose
// coverage is at least one half are inside. Fewer than three points or a
// degenerate polygon clear the selection.
func (sm *SelectionManager) SelectPolygon(pts []Point) {
	if len(pts) < 3 {
		sm.Clear()
		return
	}
	cov := rasterizePolygon(pts)
	if cov == nil {
		sm.Clear()
		return
	}
	b := cov.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := cov.PixOffset(x, y)
			if cov.Pix[i] >= 0x80 {
				cov.Pix[i] = 0xff
			} else {
				cov.Pix[i] = 0
			}
		}
	}

	sm.mu.Lock()
	sm.mask = NewSelectionMask(cov)
	sm.mu.Unlock()
}

// rasterizePolygon returns the anti-aliased coverage of a closed polygon,
// positioned at the polygon's integer bounding box.
func rasterizePolygon(pts []Point) *image.Alpha {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	r := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
	if r.Empty() {
		return nil
	}

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	ox, oy := float32(r.Min.X), float32(r.Min.Y)
	z.MoveTo(float32(pts[0].X)-ox, float32(pts[0].Y)-oy)
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X)-ox, float32(p.Y)-oy)
	}
	z.ClosePath()

	dst := image.NewAlpha(r)
	z.Draw(dst, r, image.Opaque, image.Point{})
	return dst
}
