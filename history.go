package webphoto

import (
	"image"

	"github.com/esimov/webphoto/imop"
)

// DefaultHistoryLimit is the number of snapshots kept before the oldest is evicted.
const DefaultHistoryLimit = 20

// Snapshot is an immutable capture of a layer stack.
type Snapshot struct {
	width, height int
	layers        []layerState
	active        int
	counter       int
}

type layerState struct {
	id      int
	name    string
	visible bool
	opacity float64
	mode    imop.Mode
	pix     *image.NRGBA
}

// Capture deep copies the stack state.
func (s *LayerStack) Capture() *Snapshot {
	snap := &Snapshot{
		width:   s.width,
		height:  s.height,
		layers:  make([]layerState, len(s.layers)),
		active:  s.active,
		counter: s.counter,
	}
	for i, l := range s.layers {
		snap.layers[i] = layerState{
			id:      l.ID,
			name:    l.Name,
			visible: l.Visible,
			opacity: l.Opacity,
			mode:    l.Mode,
			pix:     cloneNRGBA(l.surface.Image()),
		}
	}
	return snap
}

// Restore rebuilds the stack from a snapshot. The snapshot is left untouched.
func (s *LayerStack) Restore(snap *Snapshot) {
	s.width, s.height = snap.width, snap.height
	s.active, s.counter = snap.active, snap.counter

	s.layers = make([]*Layer, len(snap.layers))
	for i, ls := range snap.layers {
		s.layers[i] = &Layer{
			ID:      ls.id,
			Name:    ls.name,
			Visible: ls.visible,
			Opacity: ls.opacity,
			Mode:    ls.mode,
			surface: &Surface{img: cloneNRGBA(ls.pix)},
		}
	}
}

// History is a linear undo/redo list of snapshots with a cursor pointing at
// the snapshot matching the displayed state.
type History struct {
	limit  int
	stack  []*Snapshot
	cursor int
}

// NewHistory returns an empty history bounded to limit snapshots.
// A non-positive limit selects DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit, cursor: -1}
}

// Save pushes the current stack state at the cursor, dropping any redo branch.
func (h *History) Save(s *LayerStack) {
	h.stack = append(h.stack[:h.cursor+1], s.Capture())
	if len(h.stack) > h.limit {
		h.stack[0] = nil
		h.stack = h.stack[1:]
	}
	h.cursor = len(h.stack) - 1
}

// Undo steps back one snapshot. It reports false at the earliest snapshot.
func (h *History) Undo(s *LayerStack) bool {
	if h.cursor <= 0 {
		return false
	}
	h.cursor--
	s.Restore(h.stack[h.cursor])
	return true
}

// Redo steps forward one snapshot. It reports false at the newest snapshot.
func (h *History) Redo(s *LayerStack) bool {
	if h.cursor >= len(h.stack)-1 {
		return false
	}
	h.cursor++
	s.Restore(h.stack[h.cursor])
	return true
}

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.stack) }

// Cursor returns the index of the current snapshot, or -1 when empty.
func (h *History) Cursor() int { return h.cursor }

// Limit returns the snapshot bound.
func (h *History) Limit() int { return h.limit }
