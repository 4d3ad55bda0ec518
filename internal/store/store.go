// Package store provides the key-value persistence surface used by the
// session manager. Keys are flat strings, values are strings; the surface
// is the Go analog of origin-scoped browser storage.
package store

// Store is a minimal key-value persistence surface.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set writes key to value, overwriting any previous value.
	Set(key, value string) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(keys ...string) error
}
