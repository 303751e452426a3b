package upstream

import "fmt"

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// TransportError covers network failures and unreadable or non-JSON bodies.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type TransportError struct {
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
