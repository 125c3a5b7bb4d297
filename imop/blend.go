// Package imop implements the Porter-Duff composition operations and the
// separable blend modes used for mixing a painted texel with its backdrop.
//
// The image/draw core package only implements source-over and source, with
// no way of plugging in a blend function or a per-texel coverage value.
// Brush stamps and layer compositing both need those, so every operation here
// works on straight (non-premultiplied) NRGBA texels.
package imop

import (
	"fmt"

	"github.com/esimov/webphoto/utils"
)

// Mode is a separable blend mode.
type Mode string

const (
	Normal   Mode = "source-over"
	Multiply Mode = "multiply"
	Darken   Mode = "darken"
	Lighten  Mode = "lighten"
	Screen   Mode = "screen"
	Overlay  Mode = "overlay"
)

var modes = []Mode{Normal, Multiply, Darken, Lighten, Screen, Overlay}

// Modes returns every supported blend mode.
func Modes() []Mode {
	out := make([]Mode, len(modes))
	copy(out, modes)
	return out
}

// ParseMode validates a blend mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range modes {
		if string(m) == s {
			return m, nil
		}
	}
	if s == "normal" {
		return Normal, nil
	}
	return Normal, fmt.Errorf("unsupported blend mode: %q", s)
}

// Blend holds the currently active blend mode.
type Blend struct {
	mode Mode
}

// NewBlend initializes a new Blend with the normal (source-over) mode.
func NewBlend() *Blend {
	return &Blend{mode: Normal}
}

// Set activates one of the supported blend modes.
func (b *Blend) Set(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	b.mode = m
	return nil
}

// Get returns the currently active blend mode.
func (b *Blend) Get() Mode {
	if b == nil || b.mode == "" {
		return Normal
	}
	return b.mode
}

// Apply evaluates the blend function B(cb, cs) for one normalized channel,
// where cs is the source value and cb is the backdrop value.
func Apply(m Mode, cs, cb float64) float64 {
	switch m {
	case Multiply:
		return cs * cb
	case Darken:
		return utils.Min(cs, cb)
	case Lighten:
		return utils.Max(cs, cb)
	case Screen:
		return 1 - (1-cs)*(1-cb)
	case Overlay:
		// Overlay is hard-light with the layers swapped.
		if cb <= 0.5 {
			return 2 * cs * cb
		}
		return 1 - 2*(1-cs)*(1-cb)
	}
	return cs
}
