// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package scan collects authorization queries from a document.
//
// Every element carrying the authz attribute produces one query. The
// attribute value is the policy path. The query input comes from, in
// priority order:
//
//  1. authz:input-func: the named input function, called with the
//     element; its return value is the input.
//  2. authz:input: the attribute value parsed as JSON, or the raw string
//     if it is not valid JSON.
//  3. Neither: the query has no input.
//
// Bindings are returned in document order. The authorization client
// relies on this order to pair each element with the decision at the
// same index of the batch response.
package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/net/html"

	"github.com/pagegate/pagegate/lib/callback"
	"github.com/pagegate/pagegate/lib/decision"
	"github.com/pagegate/pagegate/lib/dom"
)

// Attribute names. These are the contract with page authors and must
// not change.
const (
	AttrPath      = "authz"
	AttrInput     = "authz:input"
	AttrInputFunc = "authz:input-func"
)

// Binding is a scanned element and the query it produced.
type Binding struct {
	Element *html.Node
	Query   decision.Query
}

// Scanner builds queries from authz attributes.
type Scanner struct {
	resolver *callback.Resolver
}

// New returns a Scanner that resolves input functions with resolver.
func New(resolver *callback.Resolver) *Scanner {
	return &Scanner{resolver: resolver}
}

// Scan returns one binding per authz element under root (root included),
// in document order. Scanning stops at the first input function that
// cannot be resolved or that fails; no partial result is returned.
func (scanner *Scanner) Scan(ctx context.Context, root *html.Node) ([]Binding, error) {
	if root == nil {
		return nil, fmt.Errorf("scan root is nil: %w", decision.ErrInvalidArgument)
	}

	elements := dom.FindAll(root, dom.WithAttr(AttrPath))
	bindings := make([]Binding, 0, len(elements))
	for _, element := range elements {
		policyPath, _ := dom.Attr(element, AttrPath)
		query := decision.NewQuery(policyPath)

		input, hasInput, err := scanner.input(ctx, element)
		if err != nil {
			return nil, fmt.Errorf("scanning <%s %s=%q>: %w", element.Data, AttrPath, policyPath, err)
		}
		if hasInput {
			query = query.WithInput(input)
		}
		bindings = append(bindings, Binding{Element: element, Query: query})
	}
	return bindings, nil
}

// input resolves the query input for element.
func (scanner *Scanner) input(ctx context.Context, element *html.Node) (any, bool, error) {
	if name, ok := dom.Attr(element, AttrInputFunc); ok {
		function, err := scanner.resolver.Input(name)
		if err != nil {
			return nil, false, err
		}
		input, err := function(ctx, element)
		if err != nil {
			return nil, false, fmt.Errorf("input function %q: %w", name, err)
		}
		return input, true, nil
	}

	if raw, ok := dom.Attr(element, AttrInput); ok {
		return ParseInput(raw), true, nil
	}

	return nil, false, nil
}

// ParseInput interprets an authz:input value: JSON when the whole value
// is a single JSON document, otherwise the raw string. Numbers are kept
// as json.Number so they are re-sent exactly as written.
func ParseInput(raw string) any {
	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return raw
	}
	// Trailing content ("1 2", "{} x") means the value was not one JSON
	// document.
	if _, err := decoder.Token(); err != io.EOF {
		return raw
	}
	return value
}
