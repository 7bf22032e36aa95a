package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrRetriesExhausted marks a request that kept failing transiently until
	// the attempt budget ran out.
	ErrRetriesExhausted = errors.New("retries exhausted")
	ErrRateLimited      = errors.New("rate limited")
	ErrInvalidJSON      = errors.New("response is not valid JSON")
)

// Error describes a failed request. The endpoint is a display name and never
// carries query strings or tokens.
type Error struct {
	Endpoint   string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d after %d attempt(s): %s", e.Endpoint, e.StatusCode, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s: after %d attempt(s): %s", e.Endpoint, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.code)
}

type rateLimitError struct {
	code int
	msg  string
}

func (e *rateLimitError) Error() string {
	if e.msg == "" {
		return fmt.Sprintf("rate limited (error_code %d)", e.code)
	}
	return fmt.Sprintf("rate limited (error_code %d): %s", e.code, e.msg)
}

func (e *rateLimitError) Unwrap() error {
	return ErrRateLimited
}

type exhaustedError struct {
	last error
}

func (e *exhaustedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRetriesExhausted, e.last)
}

func (e *exhaustedError) Unwrap() []error {
	return []error{ErrRetriesExhausted, e.last}
}
