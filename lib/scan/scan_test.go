// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package scan

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/pagegate/pagegate/lib/callback"
	"github.com/pagegate/pagegate/lib/decision"
	"github.com/pagegate/pagegate/lib/dom"
)

func parse(t *testing.T, source string) *html.Node {
	t.Helper()
	document, err := dom.ParseString(source)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return document
}

func newScanner(local *callback.Registry) *Scanner {
	return New(callback.NewResolver(local, nil))
}

func TestScanDocumentOrder(t *testing.T) {
	t.Parallel()

	document := parse(t, `
		<button authz="/a">A</button>
		<div><span authz="/b" authz:input='{"user":"u1","level":3}'></span></div>
		<p authz="/c" authz:input="plain text"></p>
		<a href="#">untagged</a>`)

	bindings, err := newScanner(nil).Scan(context.Background(), document)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	var queries []decision.Query
	for _, binding := range bindings {
		queries = append(queries, binding.Query)
	}
	want := []decision.Query{
		decision.NewQuery("/a"),
		decision.NewQuery("/b", map[string]any{"user": "u1", "level": json.Number("3")}),
		decision.NewQuery("/c", "plain text"),
	}
	if diff := cmp.Diff(want, queries); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}
	if bindings[0].Element.Data != "button" || bindings[2].Element.Data != "p" {
		t.Error("bindings are not paired with their elements")
	}
}

func TestScanInputFunction(t *testing.T) {
	t.Parallel()

	local := callback.NewRegistry()
	local.RegisterInput("computeInput", func(ctx context.Context, element *html.Node) (any, error) {
		id, _ := dom.Attr(element, "id")
		return map[string]any{"user": id}, nil
	})

	document := parse(t, `<button id="u1" authz="/profile/edit" authz:input-func="computeInput" authz:input="ignored"></button>`)
	bindings, err := newScanner(local).Scan(context.Background(), document)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(bindings) != 1 {
		t.Fatalf("got %d bindings, want 1", len(bindings))
	}
	want := decision.NewQuery("/profile/edit", map[string]any{"user": "u1"})
	if diff := cmp.Diff(want, bindings[0].Query); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestScanGlobalInputFunction(t *testing.T) {
	t.Parallel()

	global := callback.NewRegistry()
	global.RegisterInput("tenant", func(context.Context, *html.Node) (any, error) { return "acme", nil })

	document := parse(t, `<button authz="/a" authz:input-func="tenant"></button>`)
	bindings, err := New(callback.NewResolver(callback.NewRegistry(), global)).Scan(context.Background(), document)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if bindings[0].Query.Input != "acme" {
		t.Errorf("input = %v, want acme", bindings[0].Query.Input)
	}
}

func TestScanUnknownInputFunctionAborts(t *testing.T) {
	t.Parallel()

	document := parse(t, `<button authz="/a"></button><button authz="/b" authz:input-func="missing"></button>`)
	bindings, err := newScanner(callback.NewRegistry()).Scan(context.Background(), document)
	if !errors.Is(err, callback.ErrUnknownCallback) {
		t.Fatalf("Scan error = %v, want ErrUnknownCallback", err)
	}
	if bindings != nil {
		t.Errorf("Scan returned %d bindings alongside an error", len(bindings))
	}
}

func TestScanInputFunctionError(t *testing.T) {
	t.Parallel()

	failure := errors.New("no session")
	local := callback.NewRegistry()
	local.RegisterInput("session", func(context.Context, *html.Node) (any, error) { return nil, failure })

	document := parse(t, `<button authz="/a" authz:input-func="session"></button>`)
	if _, err := newScanner(local).Scan(context.Background(), document); !errors.Is(err, failure) {
		t.Errorf("Scan error = %v, want wrapped input function error", err)
	}
}

func TestScanSubtree(t *testing.T) {
	t.Parallel()

	document := parse(t, `<div id="panel" authz="/panel"><button authz="/inner"></button></div><button authz="/outer"></button>`)
	panel := dom.ElementByID(document, "panel")

	bindings, err := newScanner(nil).Scan(context.Background(), panel)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(bindings) != 2 || bindings[0].Query.Path != "/panel" || bindings[1].Query.Path != "/inner" {
		t.Errorf("subtree scan = %+v", bindings)
	}

	if _, err := newScanner(nil).Scan(context.Background(), nil); !errors.Is(err, decision.ErrInvalidArgument) {
		t.Errorf("Scan(nil) = %v, want ErrInvalidArgument", err)
	}
}

func TestParseInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want any
	}{
		{`{"a":1}`, map[string]any{"a": json.Number("1")}},
		{`[1,"x"]`, []any{json.Number("1"), "x"}},
		{`"quoted"`, "quoted"},
		{`true`, true},
		{`null`, nil},
		{`42`, json.Number("42")},
		{`not json`, "not json"},
		{`{"a":`, `{"a":`},
		{`1 2`, `1 2`},
		{``, ``},
	}
	for _, test := range tests {
		if diff := cmp.Diff(test.want, ParseInput(test.raw)); diff != "" {
			t.Errorf("ParseInput(%q) mismatch (-want +got):\n%s", test.raw, diff)
		}
	}
}
