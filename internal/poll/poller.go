// Package poll runs a periodic refresh task on behalf of the UI layer.
// The core takes no position on cadence; the interval is injected and the
// task stops the moment its context is cancelled.
package poll

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ecombuddha/console-core/internal/logging"
)

// Task is one refresh tick. Errors are reported, never retried out of
// cadence: an explicit user action or the next tick is the only retry.
type Task func(ctx context.Context) error

// Poller invokes a Task at a fixed interval until stopped.
type Poller struct {
	interval time.Duration
	task     Task
	log      *logging.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates a poller. A nil logger is replaced with a no-op one.
func New(interval time.Duration, task Task, log *logging.Logger) *Poller {
	if log == nil {
		log = logging.NewNop()
	}
	return &Poller{
		interval: interval,
		task:     task,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run starts ticking until ctx is cancelled or Stop is called. The first
// tick fires immediately so a fresh view never waits a full interval.
func (p *Poller) Run(ctx context.Context) {
	go p.loop(ctx)
}

// Stop halts the poller and waits for the loop to exit. Safe to call
// more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ticker.C:
			p.tick(ctx)
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if err := p.task(ctx); err != nil {
		p.log.Warn("refresh failed", zap.Error(err))
	}
}
