package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollerTicks(t *testing.T) {
	var ticks atomic.Int64
	p := New(20*time.Millisecond, func(context.Context) error {
		ticks.Add(1)
		return nil
	}, nil)

	p.Run(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestPollerStops(t *testing.T) {
	var ticks atomic.Int64
	p := New(10*time.Millisecond, func(context.Context) error {
		ticks.Add(1)
		return nil
	}, nil)

	p.Run(context.Background())
	time.Sleep(35 * time.Millisecond)
	p.Stop()

	after := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no ticks after Stop")
}

func TestPollerHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var ticks atomic.Int64
	p := New(10*time.Millisecond, func(context.Context) error {
		ticks.Add(1)
		return errors.New("backend briefly down")
	}, nil)

	p.Run(ctx)
	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case <-p.done:
	case <-time.After(time.Second):
		t.Fatal("poller did not exit on context cancel")
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := New(10*time.Millisecond, func(context.Context) error { return nil }, nil)
	p.Run(context.Background())
	p.Stop()
	p.Stop()
}
