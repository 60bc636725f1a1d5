// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/pflag"

	"github.com/pagegate/pagegate/cmd/pagegate/cli"
	"github.com/pagegate/pagegate/lib/config"
	"github.com/pagegate/pagegate/lib/dom"
	"github.com/pagegate/pagegate/lib/rbac"
)

func rbacCommand(streams Streams) *cli.Command {
	var (
		configPath string
		baseURL    string
		page       int
	)

	return &cli.Command{
		Name:    "rbac",
		Summary: "Render the role-binding manager",
		Description: `Fetch one page of role bindings and print the role-binding manager
HTML: a table with one role selector per user and previous/next links.

When the service refuses access the unauthorized message is printed
and the exit code is 1.`,
		Usage: "pagegate rbac [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("rbac", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file (default: $"+config.EnvVar+")")
			flagSet.StringVar(&baseURL, "base-url", "", "role-binding service URL (overrides rbac.base_url)")
			flagSet.IntVar(&page, "page", 1, "page to render, starting at 1")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("rbac takes no arguments")
			}
			cfg, err := config.Resolve(configPath)
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.RBAC.BaseURL = baseURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.RBAC.BaseURL == "" {
				return errNoBaseURL
			}
			logger, err := cli.NewCommandLogger(streams.Stderr, cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			timeout, err := cfg.TimeoutDuration()
			if err != nil {
				return err
			}

			client, err := rbac.NewClient(cfg.RBAC.BaseURL, rbac.Options{
				HTTPClient: &http.Client{Timeout: timeout},
				PageSize:   cfg.RBAC.PageSize,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			widget := rbac.NewWidget(client, rbac.WidgetOptions{Logger: logger})

			anchor := dom.Element("div", "id", rbac.AnchorID)
			renderErr := widget.Render(ctx, anchor, page)
			if errors.Is(renderErr, rbac.ErrUnauthorized) {
				fmt.Fprintln(streams.Stdout, dom.RenderString(anchor))
				return &cli.ExitError{Code: 1}
			}
			if renderErr != nil {
				return renderErr
			}
			fmt.Fprintln(streams.Stdout, dom.RenderString(anchor))
			return nil
		},
	}
}
