package aisim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/esimov/webphoto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []webphoto.Event
}

func (r *recorder) Post(ev webphoto.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) posted() []webphoto.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]webphoto.Event(nil), r.events...)
}

func TestAISim_FillRequiresSelection(t *testing.T) {
	rec := &recorder{}
	sim := New(rec, webphoto.NewSelectionManager())
	sim.Delay = 0

	err := sim.Request(context.Background(), GenerativeFill, "sky")
	assert.ErrorIs(t, err, ErrSelectionRequired)
	assert.Empty(t, rec.posted())

	sim = New(rec, nil)
	sim.Delay = 0
	assert.ErrorIs(t, sim.Request(context.Background(), GenerativeFill, ""), ErrSelectionRequired)
}

func TestAISim_FillCarriesMaskAndClearsSelection(t *testing.T) {
	rec := &recorder{}
	sel := webphoto.NewSelectionManager()
	sel.SelectRect(webphoto.Pt(10, 10), webphoto.Pt(20, 20))
	mask := sel.Mask()

	sim := New(rec, sel)
	sim.Delay = time.Millisecond
	require.NoError(t, sim.Request(context.Background(), GenerativeFill, "grass"))

	events := rec.posted()
	require.Len(t, events, 1)
	ev, ok := events[0].(webphoto.EditEvent)
	require.True(t, ok)
	fill, ok := ev.Edit.(webphoto.GenerativeFill)
	require.True(t, ok)
	assert.Equal(t, "grass", fill.Prompt)
	assert.Same(t, mask, fill.Mask)
	assert.False(t, sel.HasSelection())
}

func TestAISim_Preconditions(t *testing.T) {
	rec := &recorder{}
	sim := New(rec, nil)
	sim.Delay = 0
	ctx := context.Background()

	assert.ErrorIs(t, sim.Request(ctx, StyleTransfer, ""), ErrPromptRequired)
	assert.ErrorIs(t, sim.Request(ctx, TextToImage, ""), ErrPromptRequired)
	assert.ErrorIs(t, sim.Request(ctx, "summon", "x"), ErrUnknownAction)
	assert.Empty(t, rec.posted())

	require.NoError(t, sim.Request(ctx, RemoveBackground, ""))
	require.NoError(t, sim.Request(ctx, Upscale, ""))
	require.NoError(t, sim.Request(ctx, StyleTransfer, "Cyberpunk"))
	require.NoError(t, sim.Request(ctx, TextToImage, "A cute robot painting"))

	events := rec.posted()
	require.Len(t, events, 4)
	assert.IsType(t, webphoto.BackgroundRemove{}, events[0].(webphoto.EditEvent).Edit)
	assert.Equal(t, webphoto.Upscale{Factor: 2}, events[1].(webphoto.EditEvent).Edit)
	assert.IsType(t, webphoto.StyleTransfer{}, events[2].(webphoto.EditEvent).Edit)
	assert.Equal(t, webphoto.TextToImage{Prompt: "A cute robot painting"}, events[3].(webphoto.EditEvent).Edit)
}

func TestAISim_CancelDuringDelay(t *testing.T) {
	rec := &recorder{}
	sim := New(rec, nil)
	sim.Delay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	assert.ErrorIs(t, sim.Request(ctx, RemoveBackground, ""), context.Canceled)
	assert.Empty(t, rec.posted())
}

func TestAISim_AppliedThroughSession(t *testing.T) {
	cfg := webphoto.DefaultConfig()
	cfg.Width, cfg.Height = 40, 30
	cfg.Seed = 7
	sess, err := webphoto.NewSession(cfg, webphoto.NewPanel(webphoto.DefaultToolOptions()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Run(ctx)

	sim := New(sess, nil)
	sim.Delay = time.Millisecond
	require.NoError(t, sim.Request(ctx, Upscale, ""))
	require.NoError(t, sess.Flush())

	var w, h, cursor int
	require.NoError(t, sess.Do(func(e *webphoto.Engine) error {
		w, h = e.Stack.Width(), e.Stack.Height()
		cursor = e.History.Cursor()
		return nil
	}))
	assert.Equal(t, 80, w)
	assert.Equal(t, 60, h)
	assert.Equal(t, 1, cursor)
}
