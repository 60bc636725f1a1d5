// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package pdptest provides a fake policy decision point for tests.
//
// [NewServer] starts an httptest server that speaks the batch decision
// protocol in both JSON and CBOR (selected by the request Content-Type).
// Decisions come from an ordered rule list: the first [Rule] whose Path
// glob matches the query path, and whose When constraints match the
// query input, supplies the result. Queries that match no rule get an
// empty decision, which is how a real decision point reports an
// undefined rule.
//
// Path globs use "/"-separated segments: "*" matches within one segment,
// "?" matches one non-slash character, and "**" matches any number of
// segments as a leading, trailing, or interior component:
//
//	/tickets/allow        exact
//	/tickets/*            /tickets/allow, not /tickets/a/b
//	/admin/**             /admin, /admin/users, /admin/users/edit
//	**/read               /docs/read, /a/b/read
//
// The server records every batch it receives and can be switched into a
// failure mode with [Server.FailWith] or handed a custom responder with
// [Server.Respond] for malformed-response tests.
//
// This is a test double. It is not a policy engine and must not be used
// to make real authorization decisions.
package pdptest
