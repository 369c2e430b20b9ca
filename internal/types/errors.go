package types

import (
	"errors"
	"fmt"
)

// Service names used in error values and log fields.
const (
	ServiceVision = "vision"
	ServiceLookup = "lookup"
)

// UpstreamError reports that a request to an external service failed:
// network, auth, quota, or any non-success reply status.
type UpstreamError struct {
	Service    string
	StatusCode int // 0 when no HTTP status was received
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s upstream error (status %d): %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s upstream error: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// MalformedResponseError reports that a service replied but the content
// did not parse or did not match the expected shape.
type MalformedResponseError struct {
	Service string
	Detail  string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s malformed response: %s: %v", e.Service, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s malformed response: %s", e.Service, e.Detail)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsUpstream reports whether err wraps an *UpstreamError.
func IsUpstream(err error) bool {
	var e *UpstreamError
	return errors.As(err, &e)
}

// IsMalformed reports whether err wraps a *MalformedResponseError.
func IsMalformed(err error) bool {
	var e *MalformedResponseError
	return errors.As(err, &e)
}
