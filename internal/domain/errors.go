package domain

import (
	"errors"
	"fmt"
)

// Sentinels for the error taxonomy. Typed errors below unwrap to one of these.
var (
	ErrFetch             = errors.New("upstream fetch failed")
	ErrAuth              = errors.New("upstream credential acquisition failed")
	ErrDataShape         = errors.New("malformed ticket data")
	ErrDateRangeOverflow = errors.New("lookback window exceeds representable date range")
	ErrInvalidWindow     = NewDomainError("lookback window must be a non-negative number of days")
)

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// FetchError reports an unreachable upstream or a non-success response.
// StatusCode is zero for transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s failed", e.URL)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}

// AuthError reports a failure to obtain the upstream bearer credential
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("acquire upstream token: %v", e.Err)
}

func (e *AuthError) Unwrap() []error {
	return []error{ErrAuth, e.Err}
}

// DataShapeError reports a ticket record that cannot be trusted. Index is -1
// when the payload as a whole could not be decoded.
type DataShapeError struct {
	Index  int
	Field  string
	Reason string
}

func (e *DataShapeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("ticket data: %s", e.Reason)
	}
	return fmt.Sprintf("ticket record %d: field %s: %s", e.Index, e.Field, e.Reason)
}

func (e *DataShapeError) Unwrap() error {
	return ErrDataShape
}
