package webphoto

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"time"

	"github.com/esimov/webphoto/imop"
	"go.uber.org/zap"
)

// Engine is the brush engine: a state machine, Idle or Stroking, that turns
// events into writes on the active layer and snapshots into History.
// It is not safe for concurrent use; Session serializes access to it.
type Engine struct {
	Stack     *LayerStack
	History   *History
	Options   OptionSource
	Selection SelectionSource
	Scheduler Scheduler
	Rand      *rand.Rand
	Logger    *zap.Logger

	ticks   chan<- Event
	gesture *GestureContext
	picked  color.NRGBA
	hasPick bool
}

// NewEngine builds an engine over a fresh layer stack. The history holds the
// initial state, so its cursor starts at 0.
func NewEngine(cfg Config, options OptionSource) (*Engine, error) {
	stack, err := NewLayerStack(cfg.Width, cfg.Height, cfg.Background)
	if err != nil {
		return nil, err
	}
	history := NewHistory(cfg.HistoryLimit)
	history.Save(stack)

	return &Engine{
		Stack:     stack,
		History:   history,
		Options:   options,
		Scheduler: NewTickScheduler(cfg.TickInterval),
		Rand:      NewRand(cfg.Seed),
		Logger:    zap.NewNop(),
	}, nil
}

// NewRand returns a PCG source. A zero seed is replaced by the current time.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Bind sets the queue the scheduler delivers ticks to.
func (e *Engine) Bind(ticks chan<- Event) {
	e.ticks = ticks
}

// Stroking reports whether a gesture is open.
func (e *Engine) Stroking() bool {
	return e.gesture != nil
}

// Gesture returns the open gesture, or nil when idle.
func (e *Engine) Gesture() *GestureContext {
	return e.gesture
}

// PickedColor returns the last color sampled by the picker tool.
func (e *Engine) PickedColor() (color.NRGBA, bool) {
	return e.picked, e.hasPick
}

// Handle processes one event.
func (e *Engine) Handle(ev Event) {
	switch ev := ev.(type) {
	case PointerDown:
		e.pointerDown(ev)
	case PointerMove:
		e.pointerMove(ev.Point)
	case PointerUp:
		e.release(ev.Point)
	case PointerLeave:
		if ev.Released {
			e.release(ev.Point)
		}
	case Tick:
		e.tick(ev)
	case ToolSwitch:
		e.finalize()
		if p, ok := e.Options.(interface{ SetTool(Tool) }); ok {
			p.SetTool(ev.Tool)
		}
	case Undo:
		e.finalize()
		if e.History.Undo(e.Stack) {
			e.Logger.Debug("undo", zap.Int("cursor", e.History.Cursor()))
		}
	case Redo:
		e.finalize()
		if e.History.Redo(e.Stack) {
			e.Logger.Debug("redo", zap.Int("cursor", e.History.Cursor()))
		}
	case EditEvent:
		e.finalize()
		e.edit(ev.Edit)
	case call:
		e.finalize()
		ev.errc <- ev.fn(e)
	case barrier:
		ev.errc <- nil
	}
}

// Close finalizes any open gesture and stops the scheduler.
func (e *Engine) Close() {
	e.finalize()
	e.Scheduler.Cancel()
}

// target returns the active layer when it can be written to. A hidden layer
// is never a target.
func (e *Engine) target() (*Layer, error) {
	l := e.Stack.Active()
	if l == nil {
		return nil, ErrNoActiveLayer
	}
	if !l.Visible {
		return nil, fmt.Errorf("layer %d is hidden", l.ID)
	}
	return l, nil
}

func (e *Engine) clip() *SelectionMask {
	if e.Selection == nil || !e.Selection.HasSelection() {
		return nil
	}
	return e.Selection.Mask()
}

func (e *Engine) pointerDown(ev PointerDown) {
	// A gesture left open is committed before the next one starts.
	e.finalize()

	layer, err := e.target()
	if err != nil {
		e.Logger.Debug("pointer down ignored", zap.Error(err))
		return
	}
	opts := e.Options.ToolOptions()
	c := opts.Primary
	if ev.Button == Secondary {
		c = opts.Secondary
	}
	clip := e.clip()
	x, y := int(math.Floor(ev.Point.X)), int(math.Floor(ev.Point.Y))

	switch opts.Tool {
	case ToolFill:
		if n := FloodFill(layer.surface, x, y, c, clip); n > 0 {
			e.History.Save(e.Stack)
			e.Logger.Debug("fill", zap.Int("texels", n))
		}
		return
	case ToolPicker:
		if !image.Pt(x, y).In(layer.surface.Bounds()) {
			return
		}
		picked := layer.surface.At(x, y)
		picked.A = 0xff
		e.picked, e.hasPick = picked, true
		if p, ok := e.Options.(interface{ SetPrimary(color.NRGBA) }); ok {
			p.SetPrimary(picked)
		}
		return
	case ToolText:
		if opts.Text == "" {
			return
		}
		DrawText(layer.surface, ev.Point, opts.Text, c, TextScale(opts.Brush.Size), AlignLeft, clip)
		e.History.Save(e.Stack)
		return
	}

	g := newGesture(opts, c, ev.Point, layer, clip, e.Rand)
	e.gesture = g
	e.Logger.Debug("gesture opened",
		zap.Stringer("tool", g.Tool),
		zap.Stringer("brush", g.Params.Type),
		zap.Int("layer", layer.ID))

	if g.Tool != ToolDraw {
		return
	}
	if g.Brush.Continuous() {
		g.Handle = e.Scheduler.Arm(e.ticks)
		g.write(g.Brush.Tick(g, g.Last))
		return
	}
	g.write(g.Brush.Segment(g, ev.Point, ev.Point))
}

func (e *Engine) pointerMove(p Point) {
	g := e.gesture
	if g == nil {
		return
	}
	if g.Tool == ToolDraw {
		g.write(g.Brush.Segment(g, g.Last, p))
	}
	g.Last = p
}

func (e *Engine) release(p Point) {
	if g := e.gesture; g != nil && g.Tool != ToolDraw {
		g.Last = p
	}
	e.finalize()
}

func (e *Engine) tick(ev Tick) {
	g := e.gesture
	if g == nil || g.Handle == 0 || ev.Handle != g.Handle {
		e.Logger.Debug("stale tick discarded", zap.Uint64("handle", uint64(ev.Handle)))
		return
	}
	g.write(g.Brush.Tick(g, g.Last))
}

// finalize closes the open gesture: it stops the timer, commits pending
// shapes and records one snapshot. It is a no-op when idle.
func (e *Engine) finalize() {
	g := e.gesture
	if g == nil {
		return
	}
	e.gesture = nil
	if g.Handle != 0 {
		e.Scheduler.Cancel()
	}
	if mask := shapeMask(g, e.Stack.Width(), e.Stack.Height()); mask != nil {
		g.layer.surface.PaintMask(mask, g.Color, g.Params.Opacity, imop.Normal, g.clip)
	}
	e.History.Save(e.Stack)
	e.Logger.Debug("gesture closed",
		zap.Stringer("tool", g.Tool),
		zap.Int("cursor", e.History.Cursor()))
}

func (e *Engine) edit(ed Edit) {
	layer, err := e.target()
	if err != nil {
		e.Logger.Debug("edit ignored", zap.Error(err))
		return
	}
	ec := &EditContext{
		Stack: e.Stack,
		Layer: layer,
		Clip:  e.clip(),
		Rand:  e.Rand,
	}
	if err := ed.Apply(ec); err != nil {
		e.Logger.Warn("edit failed", zap.Error(err))
		return
	}
	e.History.Save(e.Stack)
	e.Logger.Debug("edit applied", zap.Int("cursor", e.History.Cursor()))
}
