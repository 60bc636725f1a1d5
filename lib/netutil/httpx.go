// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response body reads.
//
// Decision points and the role-binding API are remote services outside
// our control. Every body read goes through these helpers so that a
// misbehaving server cannot make a page refresh allocate without bound.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// MaxResponseSize bounds decision and role-binding response reads: 32 MB.
// A batch for a very large page is a few hundred kilobytes.
const MaxResponseSize int64 = 32 << 20

// MaxErrorBodySize bounds the diagnostic body captured from a non-200
// response. Error bodies end up in logs and error strings.
const MaxErrorBodySize int64 = 64 << 10

// ReadResponse reads a response body up to MaxResponseSize bytes. A body
// that exceeds the limit is an error rather than a silent truncation,
// since a truncated batch would decode to the wrong number of decisions.
func ReadResponse(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response body exceeds %d bytes", MaxResponseSize)
	}
	return data, nil
}

// DecodeResponse reads a JSON response body and decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// ErrorBody captures an error response body for diagnostics. Read errors
// are ignored: whatever was read before the failure is returned, since a
// partial or empty body is still useful next to a status code.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxErrorBodySize))
	return string(data)
}
