// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package authz

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/pagegate/pagegate/lib/decision"
)

// QueryError is the single error boundary for authorization queries.
type QueryError struct {
	// Queries is the batch that failed. Nil when the failure happened
	// while building the batch.
	Queries []decision.Query
	Err     error
}

func (e *QueryError) Error() string {
	if e.Queries == nil {
		return fmt.Sprintf("authorization query failed: %v", e.Err)
	}
	return fmt.Sprintf("authorization query of %d queries failed: %v", len(e.Queries), e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ApplyError reports a decision that could not be applied to one
// element. The element was failed closed.
type ApplyError struct {
	Element *html.Node
	Path    string
	Action  string
	Err     error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("applying %q decision to <%s> with action %q: %v", e.Path, e.Element.Data, e.Action, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
