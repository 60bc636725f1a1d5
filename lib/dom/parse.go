// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// Parse parses a complete HTML document.
func Parse(reader io.Reader) (*html.Node, error) {
	document, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return document, nil
}

// ParseString parses a complete HTML document from a string.
func ParseString(source string) (*html.Node, error) {
	return Parse(strings.NewReader(source))
}

// markdown renders pages written in markdown. Raw HTML passes through so
// authors can embed authz-tagged elements between prose.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
)

// ParseMarkdown renders markdown source to HTML and parses the result
// as a document.
func ParseMarkdown(source []byte) (*html.Node, error) {
	var rendered bytes.Buffer
	if err := markdown.Convert(source, &rendered); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return Parse(&rendered)
}

// Render writes node and its subtree as HTML.
func Render(writer io.Writer, node *html.Node) error {
	return html.Render(writer, node)
}

// RenderString renders node and its subtree to a string. Render only
// fails on malformed trees; whatever was rendered before the failure is
// returned.
func RenderString(node *html.Node) string {
	var buffer strings.Builder
	_ = html.Render(&buffer, node)
	return buffer.String()
}
