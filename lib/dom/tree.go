// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FindAll returns every element under root (root included) for which
// match returns true, in document order.
func FindAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.ElementNode && match(node) {
			found = append(found, node)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	if root != nil {
		visit(root)
	}
	return found
}

// WithAttr returns a FindAll matcher selecting elements that carry key.
func WithAttr(key string) func(*html.Node) bool {
	return func(node *html.Node) bool { return HasAttr(node, key) }
}

// ElementByID returns the first element under root whose id is id.
func ElementByID(root *html.Node, id string) *html.Node {
	found := FindAll(root, func(node *html.Node) bool {
		value, ok := Attr(node, "id")
		return ok && value == id
	})
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// Contains reports whether node is root or a descendant of root.
func Contains(root, node *html.Node) bool {
	for current := node; current != nil; current = current.Parent {
		if current == root {
			return true
		}
	}
	return false
}

// Root returns the topmost ancestor of node.
func Root(node *html.Node) *html.Node {
	for node != nil && node.Parent != nil {
		node = node.Parent
	}
	return node
}

// Element creates a detached element. Attributes are given as
// alternating key, value pairs; a trailing key without a value is set
// to the empty string.
func Element(tag string, keyValues ...string) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for index := 0; index < len(keyValues); index += 2 {
		value := ""
		if index+1 < len(keyValues) {
			value = keyValues[index+1]
		}
		SetAttr(node, keyValues[index], value)
	}
	return node
}

// Text creates a detached text node.
func Text(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// Append appends children to parent and returns parent.
func Append(parent *html.Node, children ...*html.Node) *html.Node {
	for _, child := range children {
		parent.AppendChild(child)
	}
	return parent
}

// RemoveChildren detaches every child of node.
func RemoveChildren(node *html.Node) {
	for node.FirstChild != nil {
		node.RemoveChild(node.FirstChild)
	}
}
