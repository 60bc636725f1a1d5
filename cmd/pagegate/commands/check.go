// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/pagegate/pagegate/cmd/pagegate/cli"
	"github.com/pagegate/pagegate/lib/decision"
	"github.com/pagegate/pagegate/lib/scan"
)

// queryArgs turns PATH [INPUT] into a path and optional input. INPUT is
// read the way authz:input attributes are.
func queryArgs(command string, args []string) (string, []any, error) {
	switch len(args) {
	case 1:
		return args[0], nil, nil
	case 2:
		return args[0], []any{scan.ParseInput(args[1])}, nil
	default:
		return "", nil, fmt.Errorf("%s takes PATH and an optional INPUT argument", command)
	}
}

func checkCommand(streams Streams) *cli.Command {
	var flags clientFlags

	return &cli.Command{
		Name:    "check",
		Summary: "Ask whether a policy rule allows",
		Description: `Query the decision point for one rule and print "allow" or "deny".

The exit code is 0 for allow and 1 for deny. Only a result of exactly
true allows. INPUT is parsed as JSON when it is a single JSON value and
sent as a string otherwise.`,
		Usage: "pagegate check [flags] PATH [INPUT]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("check", pflag.ContinueOnError)
			flags.register(flagSet)
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Gate a script on a policy decision",
				Command:     `pagegate check /deploy/prod '{"user":"ci"}' && ./deploy.sh`,
			},
		},
		Run: func(ctx context.Context, args []string) error {
			policyPath, input, err := queryArgs("check", args)
			if err != nil {
				return err
			}
			cfg, logger, err := flags.load(streams)
			if err != nil {
				return err
			}
			client, err := newClient(cfg, logger)
			if err != nil {
				return err
			}

			allowed, err := client.Check(ctx, policyPath, input...)
			if err != nil {
				return err
			}
			if !allowed {
				fmt.Fprintln(streams.Stdout, "deny")
				return &cli.ExitError{Code: 1}
			}
			fmt.Fprintln(streams.Stdout, "allow")
			return nil
		},
	}
}

func queryCommand(streams Streams) *cli.Command {
	var flags clientFlags

	return &cli.Command{
		Name:    "query",
		Summary: "Print the decision for a policy rule",
		Description: `Query the decision point for one rule and print the decision as JSON.
An undefined result prints as {}.`,
		Usage: "pagegate query [flags] PATH [INPUT]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("query", pflag.ContinueOnError)
			flags.register(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			policyPath, input, err := queryArgs("query", args)
			if err != nil {
				return err
			}
			cfg, logger, err := flags.load(streams)
			if err != nil {
				return err
			}
			client, err := newClient(cfg, logger)
			if err != nil {
				return err
			}

			outcome, err := client.Query(ctx, policyPath, input...)
			if err != nil {
				return err
			}
			return writeDecision(streams, outcome)
		},
	}
}

func writeDecision(streams Streams, outcome decision.Decision) error {
	encoder := json.NewEncoder(streams.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(outcome)
}
