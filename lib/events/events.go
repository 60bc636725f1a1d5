// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package events is the notification hook shared by the authorization
// client and the role-binding widget.
//
// Listeners implement a single method, HandleEvent(type, info). Emission
// is synchronous: every listener runs, in registration order, before
// Emit returns. A listener that panics is recovered and logged; the
// remaining listeners still run and the emitting operation continues.
//
// Event types and their info payloads:
//
//	"query"        QueryInfo      after every batched query
//	"authz"        AuthzInfo      once per (element, decision) pair
//	"error"        ErrorInfo      per-element and fetch failures
//	"rbac"         rbac.RenderInfo   after a role-binding table render
//	"rbac-update"  rbac.UpdateInfo   after a role-binding update
package events

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/pagegate/pagegate/lib/decision"
)

// Event types.
const (
	TypeQuery      = "query"
	TypeAuthz      = "authz"
	TypeError      = "error"
	TypeRBAC       = "rbac"
	TypeRBACUpdate = "rbac-update"
)

// Listener receives events. Implementations must not block for long:
// they run on the emitting goroutine.
type Listener interface {
	HandleEvent(eventType string, info any)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(eventType string, info any)

// HandleEvent calls function(eventType, info).
func (function ListenerFunc) HandleEvent(eventType string, info any) {
	function(eventType, info)
}

// QueryInfo describes one batched query. Exactly one of Result and Err
// is set.
type QueryInfo struct {
	RequestID string
	Queries   []decision.Query
	Result    []decision.Decision
	Err       error
	Duration  time.Duration
}

// AuthzInfo pairs an element with the decision about to be applied.
type AuthzInfo struct {
	Element  *html.Node
	Query    decision.Query
	Decision decision.Decision
}

// ErrorInfo reports a failure that did not abort the surrounding
// operation, or one that is also returned to the caller.
type ErrorInfo struct {
	// Source names the failing step, e.g. "scan", "apply", "rbac/roles".
	Source  string
	Element *html.Node
	Err     error
}

// Emitter fans events out to registered listeners.
type Emitter struct {
	mu        sync.Mutex
	listeners []Listener
	logger    *slog.Logger
}

// NewEmitter returns an emitter that logs listener panics to logger.
// A nil logger discards.
func NewEmitter(logger *slog.Logger, listeners ...Listener) *Emitter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Emitter{listeners: append([]Listener(nil), listeners...), logger: logger}
}

// Add registers listener after all existing listeners.
func (emitter *Emitter) Add(listener Listener) {
	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	emitter.listeners = append(emitter.listeners, listener)
}

// Len returns the number of registered listeners.
func (emitter *Emitter) Len() int {
	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	return len(emitter.listeners)
}

// Emit delivers an event to every listener in registration order.
// Listeners registered during emission receive later events only.
func (emitter *Emitter) Emit(eventType string, info any) {
	emitter.mu.Lock()
	listeners := append([]Listener(nil), emitter.listeners...)
	emitter.mu.Unlock()

	for index, listener := range listeners {
		if err := deliver(listener, eventType, info); err != nil {
			emitter.logger.Warn("event listener failed",
				"event", eventType,
				"listener", index,
				"error", err,
			)
		}
	}
}

// deliver calls one listener, converting a panic into an error.
func deliver(listener Listener, eventType string, info any) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("listener panicked: %v", recovered)
		}
	}()
	listener.HandleEvent(eventType, info)
	return nil
}
