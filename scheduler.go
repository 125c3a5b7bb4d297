package webphoto

import (
	"sync"
	"time"
)

// DefaultTickInterval is the pulse period of continuous brushes (20Hz).
const DefaultTickInterval = 50 * time.Millisecond

// TickHandle identifies one armed timer. The zero handle is never issued.
type TickHandle uint64

// Scheduler drives continuous brushes while the pointer is held.
type Scheduler interface {
	// Arm cancels any live timer, then starts a new one sending Tick events
	// carrying the returned handle to out.
	Arm(out chan<- Event) TickHandle
	// Cancel stops the live timer. No tick is sent once Cancel returns.
	Cancel()
	// Live returns the number of running timers.
	Live() int
}

// TickScheduler is a Scheduler backed by a time.Ticker. At most one timer is
// live at any time.
type TickScheduler struct {
	interval time.Duration

	mu     sync.Mutex
	handle TickHandle
	done   chan struct{}
	wg     sync.WaitGroup
	live   int
}

// NewTickScheduler returns a scheduler firing every interval.
// A non-positive interval selects DefaultTickInterval.
func NewTickScheduler(interval time.Duration) *TickScheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &TickScheduler{interval: interval}
}

// Arm implements Scheduler.
func (s *TickScheduler) Arm(out chan<- Event) TickHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stop()
	s.handle++
	h := s.handle
	done := make(chan struct{})
	s.done = done
	s.live++

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				select {
				case out <- Tick{Handle: h}:
				case <-done:
					return
				}
			}
		}
	}()
	return h
}

// Cancel implements Scheduler.
func (s *TickScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
}

// Live implements Scheduler.
func (s *TickScheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// stop closes the live timer and joins its goroutine. Callers hold s.mu.
func (s *TickScheduler) stop() {
	if s.done == nil {
		return
	}
	close(s.done)
	s.wg.Wait()
	s.done = nil
	s.live--
}
