package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/esimov/webphoto"
	"github.com/esimov/webphoto/aisim"
	"github.com/esimov/webphoto/logger"
	"github.com/esimov/webphoto/utils"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
)

// frameRate is how often the terminal view pulls a new composite.
const frameRate = 30

var swatches = []color.NRGBA{
	{A: 0xff},
	{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	{R: 0xe5, G: 0x39, B: 0x35, A: 0xff},
	{R: 0x43, G: 0xa0, B: 0x47, A: 0xff},
	{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff},
	{R: 0xfd, G: 0xd8, B: 0x35, A: 0xff},
	{R: 0x8e, G: 0x24, B: 0xaa, A: 0xff},
	{R: 0xfb, G: 0x8c, B: 0x00, A: 0xff},
}

// terminal maps the canvas onto the terminal grid. Every cell shows two
// vertically stacked canvas texels drawn as an upper half block.
type terminal struct {
	screen tcell.Screen
	ed     *editor

	// scale is terminal pixels per canvas texel.
	scale   float64
	view    image.Rectangle
	buttons tcell.ButtonMask
	status  string
	notes   chan string
}

func runTUI(ctx context.Context, ed *editor) error {
	l := logger.L(ctx)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	tm := &terminal{screen: screen, ed: ed, notes: make(chan string, 8)}
	tm.layout()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			tm.draw()
		case note := <-tm.notes:
			// An upscale changes the canvas size.
			tm.status = note
			tm.layout()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				tm.layout()
				screen.Sync()
			case *tcell.EventMouse:
				if err := tm.mouse(ev); err != nil {
					return err
				}
			case *tcell.EventKey:
				quit, err := tm.key(ctx, ev)
				if err != nil {
					l.Debug("key", zap.Error(err))
					tm.status = err.Error()
				}
				if quit {
					return nil
				}
			}
		}
	}
}

// layout fits the canvas into the terminal, keeping one row for the status line.
func (tm *terminal) layout() {
	cols, rows := tm.screen.Size()
	w, h := tm.ed.sess.Size()
	if w == 0 || h == 0 {
		return
	}
	tm.scale = min(float64(cols)/float64(w), float64(2*(rows-1))/float64(h))
	tm.view = image.Rect(0, 0, int(float64(w)*tm.scale), int(float64(h)*tm.scale)/2)
}

// canvasPoint converts a terminal cell to canvas space.
func (tm *terminal) canvasPoint(x, y int) webphoto.Point {
	return webphoto.Pt((float64(x)+0.5)/tm.scale, (float64(2*y)+1)/tm.scale)
}

func (tm *terminal) mouse(ev *tcell.EventMouse) error {
	x, y := ev.Position()
	pressed := ev.Buttons() & (tcell.Button1 | tcell.Button2)
	prev := tm.buttons
	tm.buttons = pressed
	p := tm.canvasPoint(x, y)
	inside := image.Pt(x, y).In(tm.view)

	switch {
	case pressed != 0 && prev == 0:
		if !inside {
			tm.buttons = 0
			return nil
		}
		btn := webphoto.Primary
		if pressed&tcell.Button2 != 0 {
			btn = webphoto.Secondary
		}
		return tm.ed.sess.Post(webphoto.PointerDown{Point: p, Button: btn})
	case pressed != 0:
		if !inside {
			return tm.ed.sess.Post(webphoto.PointerLeave{Point: p})
		}
		return tm.ed.sess.Post(webphoto.PointerMove{Point: p})
	case prev != 0:
		if !inside {
			return tm.ed.sess.Post(webphoto.PointerLeave{Point: p, Released: true})
		}
		return tm.ed.sess.Post(webphoto.PointerUp{Point: p})
	}
	return nil
}

func (tm *terminal) key(ctx context.Context, ev *tcell.EventKey) (bool, error) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true, nil
	case tcell.KeyCtrlZ:
		return false, tm.ed.sess.Post(webphoto.Undo{})
	case tcell.KeyCtrlY:
		return false, tm.ed.sess.Post(webphoto.Redo{})
	}

	opts := tm.ed.panel.ToolOptions()
	switch r := ev.Rune(); {
	case r == 'q':
		return true, nil
	case r >= '1' && r <= '8':
		c := swatches[r-'1']
		return false, tm.ed.options(func(o *webphoto.ToolOptions) { o.Primary = c })
	case r == 'b':
		next := (opts.Brush.Type + 1) % (webphoto.Spray + 1)
		return false, tm.ed.options(func(o *webphoto.ToolOptions) { o.Brush.Type = next })
	case r == 't':
		next := (opts.Tool + 1) % (webphoto.ToolText + 1)
		return false, tm.ed.sess.Post(webphoto.ToolSwitch{Tool: next})
	case r == '+' || r == '-':
		d := 2.0
		if r == '-' {
			d = -d
		}
		return false, tm.ed.options(func(o *webphoto.ToolOptions) {
			o.Brush.Size = max(1, min(100, o.Brush.Size+d))
		})
	case r == 'l':
		return false, tm.ed.layerOp(func(s *webphoto.LayerStack) error {
			s.AddLayer("")
			return nil
		})
	case r == 'i':
		return false, tm.ed.sess.Post(webphoto.EditEvent{Edit: webphoto.Adjust{Kind: webphoto.AdjustInvert}})
	case r == 'r':
		tm.request(ctx, aisim.RemoveBackground, "")
	case r == 's':
		tm.request(ctx, aisim.StyleTransfer, "Cyberpunk")
	}
	return false, nil
}

// request runs a simulated AI action without blocking the input loop.
func (tm *terminal) request(ctx context.Context, action aisim.Action, prompt string) {
	tm.status = fmt.Sprintf("AI %s...", action)
	go func() {
		note := fmt.Sprintf("AI %s done", action)
		if err := tm.ed.ai.Request(ctx, action, prompt); err != nil {
			note = err.Error()
		}
		select {
		case tm.notes <- note:
		default:
		}
	}()
}

func (tm *terminal) draw() {
	if tm.view.Empty() {
		return
	}
	frame := tm.ed.sess.Frame()
	px := image.NewNRGBA(image.Rect(0, 0, tm.view.Dx(), tm.view.Dy()*2))
	xdraw.ApproxBiLinear.Scale(px, px.Bounds(), frame, frame.Bounds(), xdraw.Src, nil)

	tm.screen.Clear()
	for y := 0; y < tm.view.Dy(); y++ {
		for x := 0; x < tm.view.Dx(); x++ {
			top, bottom := px.NRGBAAt(x, 2*y), px.NRGBAAt(x, 2*y+1)
			st := tcell.StyleDefault.Foreground(rgb(top)).Background(rgb(bottom))
			tm.screen.SetContent(x, y, '▀', nil, st)
		}
	}

	opts := tm.ed.panel.ToolOptions()
	line := fmt.Sprintf(" %s | %s %.0fpx %s | 1-8 color  b brush  t tool  +/- size  l layer  i invert  r/s AI  ^Z/^Y undo/redo  q quit | %s",
		opts.Tool, opts.Brush.Type, opts.Brush.Size,
		utils.RGBToHex(opts.Primary.R, opts.Primary.G, opts.Primary.B), tm.status)
	_, rows := tm.screen.Size()
	st := tcell.StyleDefault.Foreground(rgb(opts.Primary))
	for i, r := range []rune(line) {
		tm.screen.SetContent(i, rows-1, r, nil, st)
	}
	tm.screen.Show()
}

func rgb(c color.NRGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
