// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/net/html"

	"github.com/pagegate/pagegate/cmd/pagegate/cli"
	"github.com/pagegate/pagegate/lib/authz"
	"github.com/pagegate/pagegate/lib/dom"
)

func renderCommand(streams Streams) *cli.Command {
	var (
		flags    clientFlags
		markdown bool
	)

	return &cli.Command{
		Name:    "render",
		Summary: "Apply authorization decisions to a page",
		Description: `Parse an HTML page (or a markdown page with --markdown), query the
decision point for every element carrying an authz attribute, apply
the decisions, and write the resulting HTML to stdout.

FILE may be "-" to read stdin. Files ending in .md are treated as
markdown without --markdown.

The page is written even when the decision point fails: elements whose
decision could not be obtained or applied are left disabled or hidden.
The exit code is 1 in that case.`,
		Usage: "pagegate render [flags] FILE",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("render", pflag.ContinueOnError)
			flags.register(flagSet)
			flagSet.BoolVar(&markdown, "markdown", false, "parse FILE as markdown")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Render a page against a local decision point",
				Command:     "pagegate render --endpoint http://localhost:8181/v1/batch page.html > out.html",
			},
			{
				Description: "Render a markdown page with CBOR on the wire",
				Command:     "pagegate render --codec cbor --markdown README.md",
			},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("render takes exactly one FILE argument")
			}
			cfg, logger, err := flags.load(streams)
			if err != nil {
				return err
			}
			client, err := newClient(cfg, logger)
			if err != nil {
				return err
			}

			isMarkdown := markdown || strings.EqualFold(filepath.Ext(args[0]), ".md")
			document, err := readDocument(streams.Stdin, args[0], isMarkdown)
			if err != nil {
				return err
			}

			renderErr := client.Render(ctx, document)
			if err := dom.Render(streams.Stdout, document); err != nil {
				return fmt.Errorf("writing document: %w", err)
			}
			if renderErr == nil {
				return nil
			}

			var queryErr *authz.QueryError
			if errors.As(renderErr, &queryErr) {
				logger.Error("authorization query failed; affected elements left in their denied state", "error", renderErr)
			} else {
				logger.Error("some decisions could not be applied; affected elements left in their denied state", "error", renderErr)
			}
			return &cli.ExitError{Code: 1}
		},
	}
}

func readDocument(stdin io.Reader, path string, markdown bool) (*html.Node, error) {
	var (
		source []byte
		err    error
	)
	if path == "-" {
		source, err = io.ReadAll(stdin)
	} else {
		source, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if markdown {
		return dom.ParseMarkdown(source)
	}
	return dom.ParseString(string(source))
}
