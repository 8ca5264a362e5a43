package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPError is returned when the provider answered with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Reason     string
	Header     http.Header
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d: %s", e.StatusCode, e.Reason)
}

// TransportError is returned when no HTTP status was received, or the body
// could not be read to the end.
type TransportError struct {
	Timeout time.Duration
	Err     error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TimedOut reports whether the failure was a timeout. Typed timeout errors
// are checked first, then the message text.
func (e *TransportError) TimedOut() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(e.Err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(e.Err.Error())
	return strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout")
}

// ErrorType names the innermost error type, for operator diagnostics.
func ErrorType(err error) string {
	if err == nil {
		return ""
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}
