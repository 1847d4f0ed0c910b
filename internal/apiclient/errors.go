package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport matches every failure to get a usable answer from the shop API.
	ErrTransport = errors.New("shop api request failed")
	// ErrNotFound matches transport errors caused by a 404 answer.
	ErrNotFound = errors.New("shop api resource not found")
)

// TransportError describes a failed call to the shop API. StatusCode is 0
// when no HTTP response was received.
type TransportError struct {
	Op         string
	Method     string
	Path       string
	StatusCode int
	Detail     string
	Err        error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s: %s %s", e.Op, e.Method, e.Path)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Temporary reports whether retrying the same call later may succeed.
func (e *TransportError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// StatusCode extracts the HTTP status of a transport error, 0 otherwise.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}
