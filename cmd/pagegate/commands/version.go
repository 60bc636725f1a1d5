// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/pagegate/pagegate/cmd/pagegate/cli"
	"github.com/pagegate/pagegate/lib/version"
)

func versionCommand(streams Streams) *cli.Command {
	var full bool

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("version", pflag.ContinueOnError)
			flagSet.BoolVar(&full, "full", false, "include Go version and platform")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if full {
				fmt.Fprintf(streams.Stdout, "pagegate %s\n", version.Full())
				return nil
			}
			fmt.Fprintf(streams.Stdout, "pagegate %s\n", version.Info())
			return nil
		},
	}
}
