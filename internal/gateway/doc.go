// Package gateway is the single chokepoint for network I/O against the
// EcomBuddha backend.
//
// Every call attaches the current operator identity, enforces a per-call
// timeout, and normalizes failures into a small error taxonomy. Concurrent
// identical GETs collapse into one in-flight network call whose result all
// joined callers share; writes are never merged. A 401 from the backend
// forces a logout through the session manager before the error is
// surfaced. The layer never retries on its own: retry is caller policy,
// and blind retry of a write is unsafe.
package gateway
