// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package rbac renders and edits role bindings held by a REST service.
//
// [Client] speaks the role-binding API:
//
//	GET  /api/rbac/roles                     ["admin", "viewer"]
//	GET  /api/rbac/users?page=N&limit=M      {"result": [{"username": "u1", "role": "admin"}],
//	                                          "page": {"index": N, "of": K}}
//	POST /api/rbac/users/{username}          {"role": "viewer"}
//
// A 401 or 403 from any call matches [ErrUnauthorized].
//
// [Widget] turns one page of bindings into a table inside an anchor
// element, one role selector per user, plus previous/next links. Hosts
// wire the selectors' change events to [Widget.Update].
package rbac
