// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/pagegate/pagegate/lib/apply"
	"github.com/pagegate/pagegate/lib/callback"
	"github.com/pagegate/pagegate/lib/clock"
	"github.com/pagegate/pagegate/lib/codec"
	"github.com/pagegate/pagegate/lib/decision"
	"github.com/pagegate/pagegate/lib/dom"
	"github.com/pagegate/pagegate/lib/events"
	"github.com/pagegate/pagegate/lib/scan"
	"github.com/pagegate/pagegate/lib/transport"
)

// DefaultConcurrency bounds how many element actions run at once.
const DefaultConcurrency = 8

// Options configures a Client. The zero value is usable.
type Options struct {
	// HTTPClient sends decision batches. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Codec is the wire encoding. Defaults to codec.JSON.
	Codec codec.Codec

	// Callbacks is the client-scoped callback registry. A new registry
	// is created when nil. The built-in "disable" and "hide" actions are
	// added unless the registry already has actions under those names.
	Callbacks *callback.Registry

	// Globals is searched after Callbacks. Share one registry between
	// clients to give them common callbacks.
	Globals *callback.Registry

	// Listeners receive events in the order given.
	Listeners []events.Listener

	// Logger defaults to a discarding logger.
	Logger *slog.Logger

	// Clock measures batch durations. Defaults to clock.Real().
	Clock clock.Clock

	// Concurrency bounds concurrent element actions during Render.
	// Defaults to DefaultConcurrency.
	Concurrency int

	// PersistActionAttribute writes inferred action names back into the
	// authz:action attribute.
	PersistActionAttribute bool
}

// Client is a declarative authorization client for one decision point.
type Client struct {
	transport   *transport.Transport
	callbacks   *callback.Registry
	scanner     *scan.Scanner
	applicator  *apply.Applicator
	emitter     *events.Emitter
	logger      *slog.Logger
	clock       clock.Clock
	concurrency int
}

// New creates a Client for the decision point at endpoint.
func New(endpoint string, options Options) (*Client, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sender, err := transport.New(endpoint, transport.Options{
		HTTPClient: options.HTTPClient,
		Codec:      options.Codec,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	callbacks := options.Callbacks
	if callbacks == nil {
		callbacks = callback.NewRegistry()
	}
	apply.SeedBuiltins(callbacks)
	resolver := callback.NewResolver(callbacks, options.Globals)

	client := &Client{
		transport: sender,
		callbacks: callbacks,
		scanner:   scan.New(resolver),
		applicator: apply.New(resolver, apply.Options{
			PersistAttribute: options.PersistActionAttribute,
		}),
		emitter:     events.NewEmitter(logger, options.Listeners...),
		logger:      logger,
		clock:       options.Clock,
		concurrency: options.Concurrency,
	}
	if client.clock == nil {
		client.clock = clock.Real()
	}
	if client.concurrency <= 0 {
		client.concurrency = DefaultConcurrency
	}
	return client, nil
}

// Endpoint returns the decision point URL.
func (client *Client) Endpoint() string {
	return client.transport.Endpoint()
}

// Callbacks returns the client-scoped callback registry.
func (client *Client) Callbacks() *callback.Registry {
	return client.callbacks
}

// Applicator returns the client's applicator, for hosts that evict
// elements explicitly with Forget or Prune.
func (client *Client) Applicator() *apply.Applicator {
	return client.applicator
}

// AddListener registers listener after all existing listeners.
func (client *Client) AddListener(listener events.Listener) {
	client.emitter.Add(listener)
}

// Query evaluates the policy rule at path. At most one input may be
// given.
func (client *Client) Query(ctx context.Context, path string, input ...any) (decision.Decision, error) {
	decisions, err := client.BatchedQuery(ctx, []decision.Query{decision.NewQuery(path, input...)})
	if err != nil {
		return decision.Deny, err
	}
	return decisions[0], nil
}

// Check reports whether the rule at path allows, using decision.Allowed.
// Any error reports false.
func (client *Client) Check(ctx context.Context, path string, input ...any) (bool, error) {
	return client.CheckWith(ctx, decision.Allowed, path, input...)
}

// CheckWith is Check with a caller-supplied predicate.
func (client *Client) CheckWith(ctx context.Context, predicate decision.Predicate, path string, input ...any) (bool, error) {
	outcome, err := client.Query(ctx, path, input...)
	if err != nil {
		return false, err
	}
	return predicate(outcome), nil
}

// BatchedQuery evaluates queries in one round trip and returns their
// decisions in the same order. Any failure is returned as *QueryError.
func (client *Client) BatchedQuery(ctx context.Context, queries []decision.Query) ([]decision.Decision, error) {
	requestID := uuid.NewString()
	ctx = transport.WithRequestID(ctx, requestID)

	start := client.clock.Now()
	decisions, err := client.transport.Send(ctx, queries)
	info := events.QueryInfo{
		RequestID: requestID,
		Queries:   queries,
		Duration:  client.clock.Now().Sub(start),
	}

	if err != nil {
		info.Err = err
		client.logger.Warn("authorization query failed",
			"request_id", requestID,
			"queries", len(queries),
			"error", err,
		)
		client.emitter.Emit(events.TypeQuery, info)
		return nil, &QueryError{Queries: queries, Err: err}
	}

	info.Result = decisions
	client.logger.Debug("authorization query completed",
		"request_id", requestID,
		"queries", len(queries),
		"duration", info.Duration,
	)
	client.emitter.Emit(events.TypeQuery, info)
	return decisions, nil
}

// Render refreshes every authz element under root: scan, one batched
// query, then each decision applied to its element.
//
// If scanning or the batch fails, every authz element is left in its
// not-allowed state and the *QueryError is returned. If applying a decision fails
// for some elements, those elements are left not-allowed, the others are
// unaffected, and the *ApplyError values are returned joined.
func (client *Client) Render(ctx context.Context, root *html.Node) error {
	if root == nil {
		return &QueryError{Err: fmt.Errorf("render root is nil: %w", decision.ErrInvalidArgument)}
	}

	if pruned := client.applicator.PruneDetached(root); pruned > 0 {
		client.logger.Debug("evicted detached elements", "count", pruned)
	}

	bindings, err := client.scanner.Scan(ctx, root)
	if err != nil {
		client.logger.Warn("authorization scan failed", "error", err)
		client.emitter.Emit(events.TypeError, events.ErrorInfo{Source: "scan", Err: err})
		for _, element := range dom.FindAll(root, dom.WithAttr(scan.AttrPath)) {
			client.applicator.FailClosed(element)
		}
		return &QueryError{Err: err}
	}
	if len(bindings) == 0 {
		return nil
	}

	queries := make([]decision.Query, len(bindings))
	for index, binding := range bindings {
		queries[index] = binding.Query
	}

	decisions, err := client.BatchedQuery(ctx, queries)
	if err != nil {
		for _, binding := range bindings {
			client.applicator.FailClosed(binding.Element)
		}
		return err
	}

	for index, binding := range bindings {
		client.emitter.Emit(events.TypeAuthz, events.AuthzInfo{
			Element:  binding.Element,
			Query:    binding.Query,
			Decision: decisions[index],
		})
	}

	return client.applyAll(ctx, bindings, decisions)
}

// applyAll applies decisions concurrently and waits for every element,
// whether or not others fail.
func (client *Client) applyAll(ctx context.Context, bindings []scan.Binding, decisions []decision.Decision) error {
	failures := make([]error, len(bindings))

	var group errgroup.Group
	group.SetLimit(client.concurrency)
	for index, binding := range bindings {
		group.Go(func() error {
			failures[index] = client.applyOne(ctx, binding, decisions[index])
			return nil
		})
	}
	_ = group.Wait() // failures captured per element

	var errs []error
	for index, failure := range failures {
		if failure == nil {
			continue
		}
		element := bindings[index].Element
		client.applicator.FailClosed(element)
		client.logger.Warn("applying authorization decision failed",
			"path", bindings[index].Query.Path,
			"element", element.Data,
			"error", failure,
		)
		client.emitter.Emit(events.TypeError, events.ErrorInfo{Source: "apply", Element: element, Err: failure})
		errs = append(errs, failure)
	}
	return errors.Join(errs...)
}

// applyOne applies one decision, converting an action panic into an
// error so that it cannot take down sibling elements.
func (client *Client) applyOne(ctx context.Context, binding scan.Binding, outcome decision.Decision) (err error) {
	action := client.applicator.ActionName(binding.Element)
	defer func() {
		if recovered := recover(); recovered != nil {
			err = &ApplyError{
				Element: binding.Element,
				Path:    binding.Query.Path,
				Action:  action,
				Err:     fmt.Errorf("action panicked: %v", recovered),
			}
		}
	}()

	if applyErr := client.applicator.Apply(ctx, binding.Element, outcome); applyErr != nil {
		return &ApplyError{
			Element: binding.Element,
			Path:    binding.Query.Path,
			Action:  action,
			Err:     applyErr,
		}
	}
	return nil
}
