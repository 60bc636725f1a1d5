// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the pagegate CLI command tree.
package commands

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/pflag"

	"github.com/pagegate/pagegate/cmd/pagegate/cli"
	"github.com/pagegate/pagegate/lib/authz"
	"github.com/pagegate/pagegate/lib/codec"
	"github.com/pagegate/pagegate/lib/config"
)

// Streams are the standard streams commands read from and write to.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Root builds and returns the complete pagegate CLI command tree.
func Root(streams Streams) *cli.Command {
	return &cli.Command{
		Name: "pagegate",
		Description: `Pagegate: declarative authorization for HTML documents.

Elements tagged with an authz attribute are checked against a policy
decision point in one batch, then disabled, hidden, or shown.`,
		HelpOutput: streams.Stderr,
		Subcommands: []*cli.Command{
			renderCommand(streams),
			checkCommand(streams),
			queryCommand(streams),
			rbacCommand(streams),
			versionCommand(streams),
		},
		Examples: []cli.Example{
			{
				Description: "Apply decisions to a page",
				Command:     "pagegate render --endpoint http://localhost:8181/v1/batch page.html",
			},
			{
				Description: "Ask a single question",
				Command:     `pagegate check --endpoint http://localhost:8181/v1/batch /docs/edit '{"user":"u1"}'`,
			},
		},
	}
}

// clientFlags are the flags shared by commands that talk to the
// decision point.
type clientFlags struct {
	configPath string
	endpoint   string
	codec      string
}

func (flags *clientFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&flags.configPath, "config", "", "config file (default: $"+config.EnvVar+")")
	flagSet.StringVar(&flags.endpoint, "endpoint", "", "decision point batch URL (overrides decision.endpoint)")
	flagSet.StringVar(&flags.codec, "codec", "", "wire codec: json or cbor (overrides decision.codec)")
}

// load resolves the configuration, applies flag overrides, and builds
// the command logger.
func (flags *clientFlags) load(streams Streams) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Resolve(flags.configPath)
	if err != nil {
		return nil, nil, err
	}
	if flags.endpoint != "" {
		cfg.Decision.Endpoint = flags.endpoint
	}
	if flags.codec != "" {
		cfg.Decision.Codec = flags.codec
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := cli.NewCommandLogger(streams.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newClient builds an authorization client from cfg.
func newClient(cfg *config.Config, logger *slog.Logger) (*authz.Client, error) {
	if cfg.Decision.Endpoint == "" {
		return nil, errNoEndpoint
	}
	wire, err := codec.ByName(cfg.Decision.Codec)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	return authz.New(cfg.Decision.Endpoint, authz.Options{
		HTTPClient:             &http.Client{Timeout: timeout},
		Codec:                  wire,
		Logger:                 logger,
		Concurrency:            cfg.Decision.Concurrency,
		PersistActionAttribute: cfg.Decision.PersistActionAttribute,
	})
}
