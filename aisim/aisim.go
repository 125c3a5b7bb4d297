// Package aisim simulates the editor's AI actions. After a fixed delay it
// hands the engine a randomized edit in place of a model result.
package aisim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/esimov/webphoto"
	"github.com/esimov/webphoto/logger"
	"go.uber.org/zap"
)

// DefaultDelay is the simulated inference latency.
const DefaultDelay = 2500 * time.Millisecond

// Action names a simulated AI feature.
type Action string

const (
	GenerativeFill   Action = "fill"
	RemoveBackground Action = "bg-remove"
	Upscale          Action = "upscale"
	StyleTransfer    Action = "style"
	TextToImage      Action = "txt2img"
)

var (
	ErrUnknownAction     = errors.New("unknown AI action")
	ErrPromptRequired    = errors.New("AI action requires a prompt")
	ErrSelectionRequired = webphoto.ErrSelectionRequired
)

// Poster accepts events for the engine. *webphoto.Session implements it.
type Poster interface {
	Post(webphoto.Event) error
}

// Selection is the selection owner. *webphoto.SelectionManager implements it.
type Selection interface {
	webphoto.SelectionSource
	Clear()
}

// Simulator validates AI requests and delivers their edits after Delay.
type Simulator struct {
	Delay time.Duration

	poster Poster
	sel    Selection
}

// New returns a simulator posting to p. sel may be nil when the editor has
// no selection tools.
func New(p Poster, sel Selection) *Simulator {
	return &Simulator{Delay: DefaultDelay, poster: p, sel: sel}
}

// Request runs one action. Preconditions are checked before the delay, so a
// rejected request never reaches the engine. It blocks until the edit is
// posted or ctx is done.
func (s *Simulator) Request(ctx context.Context, action Action, prompt string) error {
	edit, err := s.prepare(action, prompt)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	l := logger.L(ctx).With(zap.String("action", string(action)))
	l.Debug("simulating AI request", zap.String("prompt", prompt), zap.Duration("delay", s.Delay))

	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}

	if err := s.poster.Post(webphoto.EditEvent{Edit: edit}); err != nil {
		return err
	}
	// The fill consumed the selection, and an upscaled canvas no longer matches it.
	if action == GenerativeFill || action == Upscale {
		if s.sel != nil {
			s.sel.Clear()
		}
	}
	l.Debug("AI edit posted")
	return nil
}

func (s *Simulator) prepare(action Action, prompt string) (webphoto.Edit, error) {
	switch action {
	case GenerativeFill:
		if s.sel == nil || !s.sel.HasSelection() {
			return nil, ErrSelectionRequired
		}
		return webphoto.GenerativeFill{Prompt: prompt, Mask: s.sel.Mask()}, nil
	case RemoveBackground:
		return webphoto.BackgroundRemove{}, nil
	case Upscale:
		return webphoto.Upscale{Factor: 2}, nil
	case StyleTransfer:
		if prompt == "" {
			return nil, ErrPromptRequired
		}
		return webphoto.StyleTransfer{Prompt: prompt, Hue: -1}, nil
	case TextToImage:
		if prompt == "" {
			return nil, ErrPromptRequired
		}
		return webphoto.TextToImage{Prompt: prompt}, nil
	}
	return nil, ErrUnknownAction
}
