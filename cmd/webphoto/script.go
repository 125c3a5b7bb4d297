package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/esimov/webphoto"
	"github.com/esimov/webphoto/aisim"
	"github.com/esimov/webphoto/imop"
	"github.com/esimov/webphoto/logger"
	"github.com/esimov/webphoto/utils"
	"go.uber.org/zap"
)

var errSyntax = errors.New("syntax error")

// editor drives a session the way the tool panel and canvas of the web UI do.
type editor struct {
	sess  *webphoto.Session
	panel *webphoto.Panel
	sel   *webphoto.SelectionManager
	ai    *aisim.Simulator
}

func newEditor(sess *webphoto.Session, panel *webphoto.Panel, sel *webphoto.SelectionManager) *editor {
	return &editor{
		sess:  sess,
		panel: panel,
		sel:   sel,
		ai:    aisim.New(sess, sel),
	}
}

// options changes the tool panel once every event posted so far has been
// processed, so a change never leaks into an earlier gesture.
func (ed *editor) options(fn func(*webphoto.ToolOptions)) error {
	if err := ed.sess.Flush(); err != nil {
		return err
	}
	ed.panel.Update(fn)
	return nil
}

// layerOp runs fn against the layer stack and records a snapshot when it succeeds.
func (ed *editor) layerOp(fn func(*webphoto.LayerStack) error) error {
	return ed.sess.Do(func(e *webphoto.Engine) error {
		if err := fn(e.Stack); err != nil {
			return err
		}
		e.History.Save(e.Stack)
		return nil
	})
}

func (ed *editor) importImage(ctx context.Context, src string) error {
	img, err := loadImage(ctx, src)
	if err != nil {
		return err
	}
	return ed.sess.Post(webphoto.EditEvent{Edit: webphoto.ImportImage{
		Name:  filepath.Base(src),
		Image: img,
	}})
}

// replay executes a gesture script, one command per line. Blank lines and
// lines starting with '#' are skipped.
func (ed *editor) replay(ctx context.Context, r io.Reader) error {
	l := logger.L(ctx)
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := ed.exec(ctx, strings.Fields(line)); err != nil {
			return fmt.Errorf("line %d: %q: %w", n, line, err)
		}
		l.Debug("script", zap.Int("line", n), zap.String("cmd", line))
	}
	return sc.Err()
}

func (ed *editor) exec(ctx context.Context, f []string) error {
	cmd, args := f[0], f[1:]
	switch cmd {
	case "down", "move", "up", "leave":
		return ed.pointer(cmd, args)
	case "wait":
		if len(args) != 1 {
			return errSyntax
		}
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return err
		}
		// Let scheduled ticks reach the queue while the pointer rests.
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		return ed.sess.Flush()
	case "tool":
		if len(args) != 1 {
			return errSyntax
		}
		t, err := webphoto.ParseTool(args[0])
		if err != nil {
			return err
		}
		return ed.sess.Post(webphoto.ToolSwitch{Tool: t})
	case "brush":
		if len(args) != 1 {
			return errSyntax
		}
		bt, err := webphoto.ParseBrushType(args[0])
		if err != nil {
			return err
		}
		return ed.options(func(o *webphoto.ToolOptions) { o.Brush.Type = bt })
	case "spray":
		if len(args) != 1 {
			return errSyntax
		}
		p, err := webphoto.ParseSprayPattern(args[0])
		if err != nil {
			return err
		}
		return ed.options(func(o *webphoto.ToolOptions) { o.Brush.Spray = p })
	case "size", "opacity", "flow":
		v, err := floats(args, 1)
		if err != nil {
			return err
		}
		return ed.options(func(o *webphoto.ToolOptions) {
			switch cmd {
			case "size":
				o.Brush.Size = utils.Clamp(v[0], 1, 100)
			case "opacity":
				o.Brush.Opacity = utils.Clamp(v[0], 0, 1)
			case "flow":
				o.Brush.Flow = utils.Clamp(v[0], 0, 1)
			}
		})
	case "color", "color2":
		if len(args) != 1 {
			return errSyntax
		}
		c, err := utils.HexToRGBA(args[0])
		if err != nil {
			return err
		}
		return ed.options(func(o *webphoto.ToolOptions) {
			if cmd == "color" {
				o.Primary = c
			} else {
				o.Secondary = c
			}
		})
	case "text":
		text := strings.Join(args, " ")
		return ed.options(func(o *webphoto.ToolOptions) { o.Text = text })
	case "select":
		return ed.selection(args)
	case "ai":
		if len(args) == 0 {
			return errSyntax
		}
		if err := ed.sess.Flush(); err != nil {
			return err
		}
		return ed.ai.Request(ctx, aisim.Action(args[0]), strings.Join(args[1:], " "))
	case "adjust":
		if len(args) == 0 || len(args) > 2 {
			return errSyntax
		}
		adj := webphoto.Adjust{Kind: webphoto.AdjustKind(args[0])}
		if len(args) == 2 {
			v, err := floats(args[1:], 1)
			if err != nil {
				return err
			}
			adj.Amount = v[0]
		}
		return ed.sess.Post(webphoto.EditEvent{Edit: adj})
	case "clear":
		return ed.sess.Post(webphoto.EditEvent{Edit: webphoto.ClearLayer{}})
	case "import":
		if len(args) != 1 {
			return errSyntax
		}
		return ed.importImage(ctx, args[0])
	case "undo":
		return ed.sess.Post(webphoto.Undo{})
	case "redo":
		return ed.sess.Post(webphoto.Redo{})
	case "layer":
		return ed.layer(args)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (ed *editor) pointer(cmd string, args []string) error {
	extra := ""
	if len(args) == 3 {
		extra, args = args[2], args[:2]
	}
	v, err := floats(args, 2)
	if err != nil {
		return err
	}
	p := webphoto.Pt(v[0], v[1])

	switch cmd {
	case "down":
		btn := webphoto.Primary
		if extra == "secondary" {
			btn = webphoto.Secondary
		}
		return ed.sess.Post(webphoto.PointerDown{Point: p, Button: btn})
	case "move":
		return ed.sess.Post(webphoto.PointerMove{Point: p})
	case "up":
		return ed.sess.Post(webphoto.PointerUp{Point: p})
	}
	return ed.sess.Post(webphoto.PointerLeave{Point: p, Released: extra == "released"})
}

func (ed *editor) selection(args []string) error {
	if len(args) == 0 {
		return errSyntax
	}
	if err := ed.sess.Flush(); err != nil {
		return err
	}
	switch args[0] {
	case "none":
		ed.sel.Clear()
		return nil
	case "rect":
		v, err := floats(args[1:], 4)
		if err != nil {
			return err
		}
		ed.sel.SelectRect(webphoto.Pt(v[0], v[1]), webphoto.Pt(v[2], v[3]))
		return nil
	case "poly":
		n := len(args) - 1
		if n < 6 || n%2 != 0 {
			return errSyntax
		}
		v, err := floats(args[1:], n)
		if err != nil {
			return err
		}
		pts := make([]webphoto.Point, 0, n/2)
		for i := 0; i < n; i += 2 {
			pts = append(pts, webphoto.Pt(v[i], v[i+1]))
		}
		ed.sel.SelectPolygon(pts)
		return nil
	}
	return fmt.Errorf("unknown selection %q", args[0])
}

func (ed *editor) layer(args []string) error {
	if len(args) == 0 {
		return errSyntax
	}
	op, args := args[0], args[1:]
	if op == "add" {
		name := strings.Join(args, " ")
		return ed.layerOp(func(s *webphoto.LayerStack) error {
			s.AddLayer(name)
			return nil
		})
	}

	if len(args) == 0 {
		return errSyntax
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	switch op {
	case "remove":
		return ed.layerOp(func(s *webphoto.LayerStack) error { return s.RemoveLayer(id) })
	case "active":
		return ed.sess.Do(func(e *webphoto.Engine) error { return e.Stack.SetActive(id) })
	case "toggle":
		return ed.layerOp(func(s *webphoto.LayerStack) error { return s.ToggleVisibility(id) })
	case "up", "down":
		dir := 1
		if op == "down" {
			dir = -1
		}
		return ed.layerOp(func(s *webphoto.LayerStack) error { return s.MoveLayer(id, dir) })
	case "opacity":
		v, err := floats(args[1:], 1)
		if err != nil {
			return err
		}
		return ed.layerOp(func(s *webphoto.LayerStack) error { return s.SetOpacity(id, v[0]) })
	case "mode":
		if len(args) != 2 {
			return errSyntax
		}
		mode, err := imop.ParseMode(args[1])
		if err != nil {
			return err
		}
		return ed.layerOp(func(s *webphoto.LayerStack) error { return s.SetBlendMode(id, mode) })
	}
	return fmt.Errorf("unknown layer command %q", op)
}

func floats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: want %d numbers, got %d", errSyntax, n, len(args))
	}
	v := make([]float64, n)
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %q is not a finite number", errSyntax, a)
		}
		v[i] = f
	}
	return v, nil
}
