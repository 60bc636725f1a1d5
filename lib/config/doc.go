// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Pagegate.
//
// Configuration is loaded from a single file specified by either the
// PAGEGATE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search. [Resolve] picks
// between the two and falls back to [Default] when neither is given.
//
// Files ending in .json or .jsonc are read as JSON with comments and
// trailing commas allowed; everything else is read as YAML. Both use the
// same field names.
//
// The file may carry environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches.
//
// ${VAR} and ${VAR:-default} patterns are expanded in URL fields after
// loading. No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Decision, RBAC, and Log sections
//   - [Default] -- returns a Config with development defaults
//   - [Load], [LoadFile], and [Resolve] -- the entry points for loading
//
// This package depends on no other Pagegate packages.
package config
