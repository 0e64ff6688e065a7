package httpx

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a non-2xx response, returned after retries were exhausted
// or skipped. Transient tells rate limits and server errors apart from the
// 4xx family, which never heals on retry.
type StatusError struct {
	Status   int
	Body     string
	Attempts int // attempts made before giving up; 1 when not retried
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("httpx: status %d", e.Status)
	if e.Attempts > 1 {
		msg = fmt.Sprintf("httpx: status %d after %d attempts", e.Status, e.Attempts)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Transient reports whether retrying later could plausibly succeed.
func (e *StatusError) Transient() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// TransportError is a request that never produced a usable response.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("httpx: request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a failure that callers may skip past
// or retry at a higher level: an exhausted rate limit, a server error, or
// a dead connection.
func IsTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	var te *TransportError
	return errors.As(err, &te)
}

// IsFatal reports whether err is a definitive upstream rejection that no
// amount of retrying will fix.
func IsFatal(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && !se.Transient()
}

// StatusCode returns the HTTP status behind err, or 0 when err carries
// none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
