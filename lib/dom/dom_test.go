// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func mustParse(t *testing.T, source string) *html.Node {
	t.Helper()
	document, err := ParseString(source)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return document
}

func TestAttributes(t *testing.T) {
	t.Parallel()

	button := Element("button", "authz", "/allow", "disabled", "")
	if value, ok := Attr(button, "authz"); !ok || value != "/allow" {
		t.Errorf("Attr(authz) = %q, %v", value, ok)
	}
	if !HasAttr(button, "disabled") {
		t.Error("disabled should be present")
	}

	SetAttr(button, "authz", "/other")
	SetAttr(button, "title", "Save")
	if value, _ := Attr(button, "authz"); value != "/other" {
		t.Errorf("SetAttr did not replace: %q", value)
	}
	if len(button.Attr) != 3 {
		t.Errorf("got %d attributes, want 3", len(button.Attr))
	}

	RemoveAttr(button, "disabled")
	if HasAttr(button, "disabled") {
		t.Error("RemoveAttr left disabled in place")
	}
	RemoveAttr(button, "missing")
}

func TestClasses(t *testing.T) {
	t.Parallel()

	node := Element("div", "class", "card  hidden")
	if !HasClass(node, "hidden") {
		t.Fatal("HasClass(hidden) = false")
	}

	AddClass(node, "hidden")
	if got, _ := Attr(node, "class"); got != "card  hidden" {
		t.Errorf("AddClass of existing class rewrote the attribute: %q", got)
	}

	RemoveClass(node, "hidden")
	if got, _ := Attr(node, "class"); got != "card" {
		t.Errorf("class = %q, want card", got)
	}
	RemoveClass(node, "card")
	if HasAttr(node, "class") {
		t.Error("empty class list should remove the attribute")
	}

	AddClass(node, "hidden")
	if got, _ := Attr(node, "class"); got != "hidden" {
		t.Errorf("class = %q, want hidden", got)
	}
}

func TestFindAllDocumentOrder(t *testing.T) {
	t.Parallel()

	document := mustParse(t, `<div id="outer" authz="/1"><p authz="/2"><span authz="/3"></span></p></div><button authz="/4"></button>`)
	found := FindAll(document, WithAttr("authz"))

	var paths []string
	for _, node := range found {
		value, _ := Attr(node, "authz")
		paths = append(paths, value)
	}
	if got := strings.Join(paths, ","); got != "/1,/2,/3,/4" {
		t.Errorf("document order = %s, want /1,/2,/3,/4", got)
	}

	outer := ElementByID(document, "outer")
	if outer == nil {
		t.Fatal("ElementByID(outer) = nil")
	}
	if got := len(FindAll(outer, WithAttr("authz"))); got != 3 {
		t.Errorf("FindAll(outer) found %d, want 3 (root included)", got)
	}
	if FindAll(nil, WithAttr("authz")) != nil {
		t.Error("FindAll(nil) should find nothing")
	}
}

func TestContains(t *testing.T) {
	t.Parallel()

	document := mustParse(t, `<div id="a"><p id="b"></p></div><div id="c"></div>`)
	a := ElementByID(document, "a")
	b := ElementByID(document, "b")
	c := ElementByID(document, "c")

	if !Contains(a, b) || !Contains(document, c) || !Contains(a, a) {
		t.Error("Contains missed a descendant")
	}
	if Contains(a, c) {
		t.Error("Contains(a, c) = true for a sibling")
	}
	if Root(b) != document {
		t.Error("Root(b) should be the document node")
	}

	a.RemoveChild(b)
	if Contains(document, b) {
		t.Error("detached node is still contained")
	}
}

func TestBuildAndRender(t *testing.T) {
	t.Parallel()

	table := Append(Element("table", "class", "rbac"),
		Append(Element("tr"), Append(Element("th"), Text("User"))),
	)
	if got := RenderString(table); got != `<table class="rbac"><tr><th>User</th></tr></table>` {
		t.Errorf("RenderString = %s", got)
	}

	RemoveChildren(table)
	if table.FirstChild != nil {
		t.Error("RemoveChildren left children")
	}
}

func TestParseMarkdown(t *testing.T) {
	t.Parallel()

	source := []byte("# Tickets\n\n<button authz=\"/tickets/create\">New ticket</button>\n")
	document, err := ParseMarkdown(source)
	if err != nil {
		t.Fatalf("ParseMarkdown: %v", err)
	}

	found := FindAll(document, WithAttr("authz"))
	if len(found) != 1 || found[0].Data != "button" {
		t.Fatalf("found %d authz elements, want the raw HTML button", len(found))
	}
	headings := FindAll(document, func(node *html.Node) bool { return node.Data == "h1" })
	if len(headings) != 1 {
		t.Errorf("found %d h1 elements, want 1", len(headings))
	}
}
