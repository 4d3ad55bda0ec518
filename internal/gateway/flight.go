package gateway

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"time"
)

// flight is the bookkeeping entry for one in-flight deduplicated request.
// At most one flight exists per key at any instant; the owning goroutine
// removes the registry entry before settling, so a caller that has seen
// the result can immediately issue a fresh call.
type flight struct {
	key       string
	startedAt time.Time

	done    chan struct{}
	payload json.RawMessage
	err     error
}

func newFlight(key string, startedAt time.Time) *flight {
	return &flight{
		key:       key,
		startedAt: startedAt,
		done:      make(chan struct{}),
	}
}

// settle publishes the result exactly once.
func (f *flight) settle(payload json.RawMessage, err error) {
	f.payload = payload
	f.err = err
	close(f.done)
}

// wait blocks until the flight settles or the subscriber's context is
// cancelled. Cancellation is per subscriber: the shared call keeps running
// for everyone else.
func (f *flight) wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-f.done:
		return f.payload, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// flightKey derives the deduplication key from method, endpoint and
// sorted query parameters. The body is deliberately excluded: only GETs
// are deduplicated, and two identical GETs are what must collapse.
func flightKey(method, endpoint string, params map[string]string) string {
	var b strings.Builder
	b.WriteString(method)
	b.WriteByte(' ')
	b.WriteString(endpoint)

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('?')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(params[k]))
		}
	}

	return b.String()
}
