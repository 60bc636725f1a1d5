// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import "fmt"

// HTTPError is returned when the decision point answers with a status
// other than 200 OK.
type HTTPError struct {
	StatusCode int
	// Body is the diagnostic response body, possibly truncated or empty.
	Body string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("decision point returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("decision point returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Error is a transport-level failure: network errors, unreadable or
// malformed response bodies, and decision count mismatches.
type Error struct {
	// Op names the failing step: "encoding request", "sending request",
	// "reading response", "decoding response".
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "decision transport: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
