// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package decision defines the wire-level data model shared by every
// Pagegate component: the Query sent to a policy decision point and the
// Decision it returns.
//
// Queries and decisions are correlated positionally. Index i of a batch
// response is the decision for index i of the request; nothing in the
// payload itself links a decision back to its query.
//
// The default predicate, [Allowed], is fail-closed: only a result that is
// exactly the boolean true allows. A missing result, false, a string, a
// number, or an error document all deny.
package decision

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidArgument reports a malformed call, such as a missing query
// list or a query without a path. It is a programmer error and never
// retried.
var ErrInvalidArgument = errors.New("invalid argument")

// Query is a single authorization check against the policy rule at Path.
type Query struct {
	// Path identifies the policy rule, e.g. "/tickets/allow".
	Path string `json:"path" cbor:"path"`

	// Input is the input document for the rule. Only meaningful when
	// HasInput is true; use [NewQuery] or [WithInput] to set both.
	Input any `json:"input,omitempty" cbor:"input,omitempty"`

	// HasInput distinguishes an omitted input from an explicit null.
	HasInput bool `json:"-" cbor:"-"`
}

// NewQuery creates a query for path. At most one input may be given; an
// input that is present (even if nil) is sent.
func NewQuery(path string, input ...any) Query {
	query := Query{Path: path}
	if len(input) > 0 {
		query = query.WithInput(input[0])
	}
	return query
}

// WithInput returns a copy of the query carrying input.
func (query Query) WithInput(input any) Query {
	query.Input = input
	query.HasInput = true
	return query
}

// MarshalJSON emits "input" whenever HasInput is set, including an
// explicit null, and omits it otherwise.
func (query Query) MarshalJSON() ([]byte, error) {
	if !query.HasInput {
		return json.Marshal(struct {
			Path string `json:"path"`
		}{query.Path})
	}
	return json.Marshal(struct {
		Path  string `json:"path"`
		Input any    `json:"input"`
	}{query.Path, query.Input})
}

// UnmarshalJSON sets HasInput when the "input" key is present.
func (query *Query) UnmarshalJSON(data []byte) error {
	var raw struct {
		Path  string          `json:"path"`
		Input json.RawMessage `json:"input"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	query.Path = raw.Path
	query.Input = nil
	query.HasInput = raw.Input != nil
	if query.HasInput {
		if err := json.Unmarshal(raw.Input, &query.Input); err != nil {
			return fmt.Errorf("query input: %w", err)
		}
	}
	return nil
}

// ValidateBatch checks a batch before it is sent. A nil slice is not a
// batch; an empty non-nil slice is. Paths are passed through as given,
// including the empty path: the decision point answers for them.
func ValidateBatch(queries []Query) error {
	if queries == nil {
		return fmt.Errorf("query batch is not a list: %w", ErrInvalidArgument)
	}
	return nil
}

// Decision is the outcome of evaluating one Query. Result holds whatever
// the policy rule produced; it is nil when the rule was undefined.
type Decision struct {
	Result any `json:"result,omitempty" cbor:"result,omitempty"`
}

// Predicate decides whether a Decision allows the queried action.
type Predicate func(Decision) bool

// Allowed is the default predicate: true only when Result is exactly the
// boolean true.
func Allowed(decision Decision) bool {
	allowed, ok := decision.Result.(bool)
	return ok && allowed
}

// Deny is the decision used in place of one that could not be obtained.
var Deny = Decision{}
