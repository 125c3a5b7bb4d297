package webphoto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickScheduler_SingleLiveTimer(t *testing.T) {
	s := NewTickScheduler(time.Millisecond)
	out := make(chan Event, 64)

	h1 := s.Arm(out)
	h2 := s.Arm(out)
	assert.NotEqual(t, h1, h2)
	assert.NotZero(t, h1)
	assert.Equal(t, 1, s.Live())

	select {
	case ev := <-out:
		tick, ok := ev.(Tick)
		require.True(t, ok)
		// Ticks from the first timer may still be queued; the engine drops them by handle.
		assert.Contains(t, []TickHandle{h1, h2}, tick.Handle)
	case <-time.After(time.Second):
		t.Fatal("no tick received")
	}

	s.Cancel()
	assert.Equal(t, 0, s.Live())
	s.Cancel()
	assert.Equal(t, 0, s.Live())

	// Nothing is sent once Cancel has returned.
	for len(out) > 0 {
		<-out
	}
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, len(out))
}

func TestTickScheduler_CancelDoesNotBlockOnFullQueue(t *testing.T) {
	s := NewTickScheduler(time.Millisecond)
	out := make(chan Event)
	s.Arm(out)
	time.Sleep(5 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Cancel()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Cancel blocked on an undrained queue")
	}
}

func TestTickScheduler_DefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultTickInterval, NewTickScheduler(0).interval)
}
