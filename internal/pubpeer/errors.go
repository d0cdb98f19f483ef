// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubpeer

import (
	"errors"
	"fmt"
)

// Sentinel errors for the client. Callers discriminate with errors.Is.
var (
	// ErrInvalidReference marks a reference string no record id can be
	// extracted from. Not retried.
	ErrInvalidReference = errors.New("invalid publication reference")

	// ErrTokenUnavailable marks a landing page without the csrf-token
	// meta tag.
	ErrTokenUnavailable = errors.New("csrf token not found in landing page")

	// ErrMissingPayload marks a detail page without the embedded
	// publication JSON. Fatal for that single fetch.
	ErrMissingPayload = errors.New("publication payload not found in detail page")

	// ErrRetriesExhausted is returned when the retry budget runs out
	// without a specific underlying failure to re-raise.
	ErrRetriesExhausted = errors.New("exceeded maximum retries for pubpeer request")
)

// RequestError records a failed HTTP exchange with the service: either a
// transport-level error (Err set) or an HTTP error status (StatusCode set).
type RequestError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pubpeer request %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("pubpeer request %s: HTTP %d", e.Endpoint, e.StatusCode)
}

func (e *RequestError) Unwrap() error { return e.Err }
