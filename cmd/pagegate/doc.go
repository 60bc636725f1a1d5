// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Pagegate applies policy decisions to HTML documents from the command
// line.
//
// Usage:
//
//	pagegate render [--config F] [--endpoint URL] [--markdown] [--codec json|cbor] FILE
//	pagegate check  [--endpoint URL] PATH [INPUT]
//	pagegate query  [--endpoint URL] PATH [INPUT]
//	pagegate rbac   [--base-url URL] [--page N]
//	pagegate version
//
// Configuration comes from the file named by --config or the
// PAGEGATE_CONFIG environment variable; flags override individual
// fields. Run "pagegate <command> --help" for details.
package main
