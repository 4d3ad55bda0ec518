package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors surfaced by Call.
var (
	// ErrUnauthorized means the backend rejected the session. A forced
	// logout has already run by the time a caller sees this.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTimeout means the call exceeded its deadline and the underlying
	// transport operation was aborted.
	ErrTimeout = errors.New("request timed out")
)

// RemoteError is a server-reported application error (400/404/500...).
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

// NetworkError is a transport-level failure: DNS, connection refused, or
// a 2xx response whose body was not valid JSON.
type NetworkError struct {
	Detail string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("network error: %s", e.Detail)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Message renders any gateway error as text suitable for direct display.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrTimeout):
		return "The server took too long to respond. Please try again."
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		if remote.Message != "" {
			return remote.Message
		}
		return http.StatusText(remote.Status)
	}

	var network *NetworkError
	if errors.As(err, &network) {
		return "Could not reach the server. Please check your connection and try again."
	}

	return err.Error()
}
