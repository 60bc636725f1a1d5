// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package dom

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of the attribute key and whether it is present.
// Keys are compared as written; the HTML parser lower-cases attribute
// names on input.
func Attr(node *html.Node, key string) (string, bool) {
	for _, attribute := range node.Attr {
		if attribute.Namespace == "" && attribute.Key == key {
			return attribute.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the attribute key is present.
func HasAttr(node *html.Node, key string) bool {
	_, ok := Attr(node, key)
	return ok
}

// SetAttr sets the attribute key to value, adding it if absent.
func SetAttr(node *html.Node, key, value string) {
	for index := range node.Attr {
		if node.Attr[index].Namespace == "" && node.Attr[index].Key == key {
			node.Attr[index].Val = value
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr removes every occurrence of the attribute key.
func RemoveAttr(node *html.Node, key string) {
	node.Attr = slices.DeleteFunc(node.Attr, func(attribute html.Attribute) bool {
		return attribute.Namespace == "" && attribute.Key == key
	})
}

// Classes returns the element's class list.
func Classes(node *html.Node) []string {
	value, _ := Attr(node, "class")
	return strings.Fields(value)
}

// HasClass reports whether class is in the element's class list.
func HasClass(node *html.Node, class string) bool {
	return slices.Contains(Classes(node), class)
}

// AddClass appends class to the class list if it is not already there.
func AddClass(node *html.Node, class string) {
	classes := Classes(node)
	if slices.Contains(classes, class) {
		return
	}
	SetAttr(node, "class", strings.Join(append(classes, class), " "))
}

// RemoveClass removes class from the class list. An emptied list removes
// the class attribute.
func RemoveClass(node *html.Node, class string) {
	classes := Classes(node)
	if !slices.Contains(classes, class) {
		return
	}
	classes = slices.DeleteFunc(classes, func(existing string) bool { return existing == class })
	if len(classes) == 0 {
		RemoveAttr(node, "class")
		return
	}
	SetAttr(node, "class", strings.Join(classes, " "))
}
