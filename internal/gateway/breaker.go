package gateway

import (
	"sync"
	"time"
)

// breaker trips after a run of consecutive transport failures so a dead
// backend does not absorb every dashboard refresh. HTTP status errors do
// not count: the transport worked, the server answered. After the
// cooldown a single probe call is let through; its outcome decides
// whether the circuit closes again.
type breaker struct {
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time
	probing  bool
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	return &breaker{threshold: threshold, cooldown: cooldown}
}

// allow reports whether a call may proceed.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return true
	}
	if time.Since(b.openedAt) < b.cooldown {
		return false
	}
	// Half-open: admit one probe at a time.
	if b.probing {
		return false
	}
	b.probing = true
	return true
}

// record feeds a transport outcome back into the breaker.
func (b *breaker) record(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	if ok {
		b.failures = 0
		return
	}

	b.failures++
	if b.failures >= b.threshold {
		b.openedAt = time.Now()
	}
}
