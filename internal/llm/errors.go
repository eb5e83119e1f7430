package llm

import "fmt"

// TransientError marks a failure worth retrying with linear backoff:
// rate limiting or server-side unavailability. Each backend decides which
// HTTP status codes it wraps as transient.
type TransientError struct {
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient backend error (status %d): %v", e.Status, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// TransportError marks a network-level failure: connection refused, DNS
// failure, timeout. Retried with the same linear backoff as transient
// errors.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedError marks a response body that is not valid structured data.
// Retried on the same attempt budget but without a backoff delay.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }
