package webphoto

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_UndoRedo(t *testing.T) {
	s, err := NewLayerStack(4, 4, white)
	require.NoError(t, err)
	h := NewHistory(0)
	assert.Equal(t, DefaultHistoryLimit, h.Limit())
	assert.Equal(t, -1, h.Cursor())
	assert.False(t, h.Undo(s))

	h.Save(s)
	l := s.AddLayer("paint")
	l.Surface().Set(1, 1, red)
	h.Save(s)
	assert.Equal(t, 1, h.Cursor())

	require.True(t, h.Undo(s))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, white, s.Composite().NRGBAAt(1, 1))

	require.True(t, h.Redo(s))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, red, s.Composite().NRGBAAt(1, 1))
	assert.Equal(t, "paint", s.Active().Name)
	assert.False(t, h.Redo(s))
}

func TestHistory_SnapshotsAreDeepCopies(t *testing.T) {
	s, err := NewLayerStack(4, 4, white)
	require.NoError(t, err)
	h := NewHistory(5)
	h.Save(s)

	s.Active().Surface().Set(0, 0, red)
	h.Save(s)
	require.True(t, h.Undo(s))

	// Writing to the restored state must not leak into stored snapshots.
	s.Active().Surface().Set(2, 2, red)
	require.True(t, h.Redo(s))
	assert.Equal(t, white, s.Active().Surface().At(2, 2))
	require.True(t, h.Undo(s))
	assert.Equal(t, white, s.Active().Surface().At(2, 2))
	assert.Equal(t, white, s.Active().Surface().At(0, 0))
}

func TestHistory_SaveDropsRedoBranch(t *testing.T) {
	s, err := NewLayerStack(2, 2, white)
	require.NoError(t, err)
	h := NewHistory(5)
	h.Save(s)
	s.AddLayer("a")
	h.Save(s)
	s.AddLayer("b")
	h.Save(s)

	require.True(t, h.Undo(s))
	require.True(t, h.Undo(s))
	s.AddLayer("c")
	h.Save(s)

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 1, h.Cursor())
	assert.False(t, h.Redo(s))
	assert.Equal(t, "c", s.Active().Name)
}

func TestHistory_EvictsOldest(t *testing.T) {
	s, err := NewLayerStack(2, 2, white)
	require.NoError(t, err)
	h := NewHistory(DefaultHistoryLimit)

	for i := 0; i < 30; i++ {
		s.Active().Surface().Set(0, 0, colorN(i))
		h.Save(s)
	}
	assert.Equal(t, DefaultHistoryLimit, h.Len())
	assert.Equal(t, DefaultHistoryLimit-1, h.Cursor())

	for h.Undo(s) {
	}
	assert.Zero(t, h.Cursor())
	// The oldest surviving snapshot is the eleventh save.
	assert.Equal(t, colorN(10), s.Active().Surface().At(0, 0))
}

func TestEngine_HistoryBoundedByConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 20, 20
	cfg.HistoryLimit = 3
	e, err := NewEngine(cfg, NewPanel(DefaultToolOptions()))
	require.NoError(t, err)
	e.Scheduler = &manualScheduler{}

	for i := 0; i < 5; i++ {
		click(e, Pt(float64(i*4+2), 10))
	}
	assert.Equal(t, 3, e.History.Len())
	assert.Equal(t, 2, e.History.Cursor())
}

func colorN(i int) color.NRGBA {
	return color.NRGBA{R: uint8(i), A: 0xff}
}
