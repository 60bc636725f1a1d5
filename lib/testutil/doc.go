// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Pagegate packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so that tests coordinating goroutines through channels fail
// with a message instead of hanging. They are the only place in the
// test suite where real wall-clock timeouts are used.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable. Call them only from
// the test goroutine.
//
// This package has no Pagegate-internal dependencies.
package testutil
