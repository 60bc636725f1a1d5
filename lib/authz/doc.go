// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package authz is the declarative authorization client.
//
// A [Client] talks to one policy decision point. It answers direct
// checks ([Client.Query], [Client.Check], [Client.BatchedQuery]) and
// refreshes documents ([Client.Render]): every element tagged with an
// authz attribute is turned into a query, all queries go out in one
// batch, and each decision is applied back onto its element.
//
//	client, err := authz.New("https://pdp.internal/v1/batch", authz.Options{
//	    Logger: logger,
//	})
//	...
//	client.Callbacks().RegisterInput("currentUser", func(ctx context.Context, element *html.Node) (any, error) {
//	    return map[string]any{"user": session.User}, nil
//	})
//	if err := client.Render(ctx, document); err != nil {
//	    // The page is still safe to serve: every element whose decision
//	    // could not be obtained or applied was left disabled or hidden.
//	}
//
// # Errors
//
// Every failure of a batched query surfaces as a single [*QueryError]
// carrying the queries that were sent. Its cause is one of
// decision.ErrInvalidArgument, *transport.HTTPError, *transport.Error, or
// a callback resolution error from scanning. Failures applying an
// individual element surface as [*ApplyError] values joined together
// after every element has been processed; one element's failure never
// stops another's.
//
// # Events
//
// Listeners registered with [Options].Listeners or [Client.AddListener]
// receive "query" after each batch, "authz" for each element before its
// decision is applied, and "error" for scan and per-element failures.
// See package events for the payload types.
package authz
