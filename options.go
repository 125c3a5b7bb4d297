package webphoto

import (
	"fmt"
	"image/color"
	"sync"
)

// Tool is the active editing tool.
type Tool int

const (
	ToolDraw Tool = iota
	ToolRect
	ToolEllipse
	ToolLine
	ToolFill
	ToolPicker
	ToolText
)

var toolNames = [...]string{
	ToolDraw:    "draw",
	ToolRect:    "rect",
	ToolEllipse: "ellipse",
	ToolLine:    "line",
	ToolFill:    "fill",
	ToolPicker:  "picker",
	ToolText:    "text",
}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

// ParseTool maps a tool name to its value.
func ParseTool(s string) (Tool, error) {
	for t, name := range toolNames {
		if name == s {
			return Tool(t), nil
		}
	}
	return 0, fmt.Errorf("unknown tool: %q", s)
}

// ToolOptions is an immutable snapshot of the tool panel.
type ToolOptions struct {
	Tool      Tool
	Brush     BrushParams
	Primary   color.NRGBA
	Secondary color.NRGBA
	// Text is stamped by the text tool.
	Text string
}

// DefaultToolOptions returns a 10px opaque black plain brush.
func DefaultToolOptions() ToolOptions {
	return ToolOptions{
		Tool: ToolDraw,
		Brush: BrushParams{
			Type:    PlainBrush,
			Size:    10,
			Opacity: 1,
			Spray:   SprayScatter,
			Flow:    0.1,
		},
		Primary:   color.NRGBA{A: 0xff},
		Secondary: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Text:      "Text Layer",
	}
}

// OptionSource supplies tool options. The engine reads it once per gesture.
type OptionSource interface {
	ToolOptions() ToolOptions
}

// Panel is a mutable, concurrency safe OptionSource.
type Panel struct {
	mu   sync.RWMutex
	opts ToolOptions
}

// NewPanel returns a panel holding opts.
func NewPanel(opts ToolOptions) *Panel {
	return &Panel{opts: opts}
}

// ToolOptions implements OptionSource.
func (p *Panel) ToolOptions() ToolOptions {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.opts
}

// Update changes the options through fn.
func (p *Panel) Update(fn func(*ToolOptions)) {
	p.mu.Lock()
	fn(&p.opts)
	p.mu.Unlock()
}

// SetTool selects the active tool.
func (p *Panel) SetTool(t Tool) {
	p.Update(func(o *ToolOptions) { o.Tool = t })
}

// SetPrimary sets the primary color. The color picker reports through it.
func (p *Panel) SetPrimary(c color.NRGBA) {
	p.Update(func(o *ToolOptions) { o.Primary = c })
}
