package webphoto

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrSessionClosed is returned when posting to a session that stopped running.
var ErrSessionClosed = errors.New("session closed")

// Config holds the canvas and engine settings.
type Config struct {
	Width, Height int
	HistoryLimit  int
	TickInterval  time.Duration
	Background    color.NRGBA
	// Seed feeds the brush jitter and the simulated AI noise. Zero seeds from the clock.
	Seed uint64
	// QueueSize is the capacity of the event queue.
	QueueSize int
}

// DefaultConfig returns an 800x600 white canvas with a 20 step history
// and a 50ms tick.
func DefaultConfig() Config {
	return Config{
		Width:        800,
		Height:       600,
		HistoryLimit: DefaultHistoryLimit,
		TickInterval: DefaultTickInterval,
		Background:   color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		QueueSize:    256,
	}
}

// Session owns an Engine and feeds it from a single FIFO queue drained by one
// goroutine. Pointer events, ticks, edits and history commands are processed
// strictly in arrival order.
type Session struct {
	mu     sync.Mutex
	engine *Engine
	queue  chan Event
	done   chan struct{}
	once   sync.Once
}

// NewSession creates the engine described by cfg. Call Run to start processing.
func NewSession(cfg Config, options OptionSource) (*Session, error) {
	e, err := NewEngine(cfg, options)
	if err != nil {
		return nil, err
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	s := &Session{
		engine: e,
		queue:  make(chan Event, cfg.QueueSize),
		done:   make(chan struct{}),
	}
	e.Bind(s.queue)
	return s, nil
}

// Engine returns the engine for configuration before Run. Once Run has
// started, use Do to reach it.
func (s *Session) Engine() *Engine {
	return s.engine
}

// Run drains the queue until ctx is cancelled. On return any open gesture is
// finalized and the scheduler is stopped.
func (s *Session) Run(ctx context.Context) error {
	defer s.once.Do(func() { close(s.done) })
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.engine.Close()
			s.mu.Unlock()
			return ctx.Err()
		case ev := <-s.queue:
			s.mu.Lock()
			s.engine.Handle(ev)
			s.mu.Unlock()
		}
	}
}

// Post enqueues an event. It blocks while the queue is full.
func (s *Session) Post(ev Event) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.queue <- ev:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

// Do runs fn on the session goroutine after every event posted before it,
// and returns its error. Any open gesture is finalized first.
func (s *Session) Do(fn func(*Engine) error) error {
	errc := make(chan error, 1)
	if err := s.Post(call{fn: fn, errc: errc}); err != nil {
		return err
	}
	select {
	case err := <-errc:
		return err
	case <-s.done:
		return ErrSessionClosed
	}
}

// Flush waits until every event posted so far has been processed.
// Unlike Do it leaves an open gesture untouched.
func (s *Session) Flush() error {
	errc := make(chan error, 1)
	if err := s.Post(barrier{errc: errc}); err != nil {
		return err
	}
	select {
	case <-errc:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

// Frame returns the current composite. It is safe to call from the renderer.
func (s *Session) Frame() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Stack.Composite()
}

// Size returns the canvas dimensions. Unlike Do it neither waits for the
// queue nor finalizes an open gesture.
func (s *Session) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Stack.Width(), s.engine.Stack.Height()
}

// SetLogger replaces the engine logger.
func (s *Session) SetLogger(l *zap.Logger) {
	s.mu.Lock()
	s.engine.Logger = l
	s.mu.Unlock()
}
