// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "pagegate",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(ctx context.Context, args []string) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "render",
				Run: func(ctx context.Context, args []string) error {
					called = "render"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"render"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "render" {
		t.Errorf("dispatched to %q, want %q", called, "render")
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var endpoint string
	var target string

	command := &Command{
		Name: "render",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("render", pflag.ContinueOnError)
			flagSet.StringVar(&endpoint, "endpoint", "", "decision endpoint")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--endpoint", "http://pdp/v1", "page.html"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if endpoint != "http://pdp/v1" {
		t.Errorf("endpoint = %q, want %q", endpoint, "http://pdp/v1")
	}
	if target != "page.html" {
		t.Errorf("target = %q, want %q", target, "page.html")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "render",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("render", pflag.ContinueOnError)
			flagSet.Bool("markdown", false, "parse markdown")
			flagSet.String("endpoint", "", "decision endpoint")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--markdwon"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --markdown") {
		t.Errorf("error = %q, want suggestion for '--markdown'", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "pagegate",
		Subcommands: []*Command{
			{Name: "render"},
			{Name: "check"},
			{Name: "version"},
		},
	}

	err := root.Execute(context.Background(), []string{"rendr"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"render\"") {
		t.Errorf("error = %q, want suggestion for 'render'", err.Error())
	}

	err = root.Execute(context.Background(), []string{"zzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion for distant input", err)
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			var buffer bytes.Buffer
			root := &Command{
				Name:       "pagegate",
				Summary:    "Declarative authorization",
				HelpOutput: &buffer,
				Subcommands: []*Command{
					{Name: "render", Summary: "Apply decisions to a page"},
				},
			}

			if err := root.Execute(context.Background(), []string{helpArg}); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
			if !strings.Contains(buffer.String(), "render") {
				t.Errorf("help output missing subcommand:\n%s", buffer.String())
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	var buffer bytes.Buffer
	root := &Command{
		Name:        "pagegate",
		HelpOutput:  &buffer,
		Subcommands: []*Command{{Name: "render"}},
	}

	err := root.Execute(context.Background(), []string{})
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %v, want 'subcommand required'", err)
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "render",
		Description: "Apply authorization decisions to a page.",
		Usage:       "pagegate render [flags] FILE",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("render", pflag.ContinueOnError)
			flagSet.String("endpoint", "", "decision endpoint")
			return flagSet
		},
		Examples: []Example{
			{Description: "Render a page", Command: "pagegate render page.html"},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Apply authorization decisions to a page.",
		"pagegate render [flags] FILE",
		"Flags:",
		"--endpoint",
		"Examples:",
		"# Render a page",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "pagegate"}
	render := &Command{Name: "render", parent: root}

	if got := render.fullName(); got != "pagegate render" {
		t.Errorf("render.fullName() = %q, want %q", got, "pagegate render")
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"render", "render", 0},
		{"rendr", "render", 1},
		{"chekc", "check", 2},
		{"", "abc", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestNewCommandLogger(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := NewCommandLogger(&buffer, "warn", "auto")
	if err != nil {
		t.Fatalf("NewCommandLogger: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept", "key", "value")

	// A buffer is not a terminal, so auto selects JSON.
	var record map[string]any
	if err := json.Unmarshal(buffer.Bytes(), &record); err != nil {
		t.Fatalf("log output is not a single JSON record: %v\n%s", err, buffer.String())
	}
	if record["msg"] != "kept" || record["key"] != "value" {
		t.Errorf("record = %v", record)
	}

	if _, err := NewCommandLogger(&buffer, "loud", "auto"); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := NewCommandLogger(&buffer, "info", "xml"); err == nil {
		t.Error("expected error for invalid format")
	}
}
