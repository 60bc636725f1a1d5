// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package dom provides the small set of document operations Pagegate
// needs on top of golang.org/x/net/html: attribute and class-list
// manipulation, document-order traversal, element construction, and
// parsing of HTML and markdown pages.
//
// Nodes are plain *html.Node values owned by the caller. Nothing here
// keeps references to nodes after returning.
package dom
