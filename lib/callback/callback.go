// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package callback holds the named functions that documents refer to by
// attribute value.
//
// A document names two kinds of callbacks: input functions
// (authz:input-func), which compute a query input from an element, and
// action functions (authz:action), which apply a decision to an element.
// Each kind lives in its own namespace of a [Registry].
//
// A [Resolver] searches two registries in order: the client-scoped one,
// then an explicitly supplied global one. The first hit wins. There is
// no lookup in ambient process state; anything a document may call must
// have been registered.
package callback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/net/html"

	"github.com/pagegate/pagegate/lib/decision"
)

// InputFunc computes the query input for element.
type InputFunc func(ctx context.Context, element *html.Node) (any, error)

// ActionFunc applies a decision to element. Actions mutate only the
// element they are given.
type ActionFunc func(ctx context.Context, outcome decision.Decision, element *html.Node) error

// Kind distinguishes the two callback namespaces.
type Kind string

const (
	KindInput  Kind = "input"
	KindAction Kind = "action"
)

// ErrUnknownCallback matches every *UnknownCallbackError.
var ErrUnknownCallback = errors.New("unknown callback")

// UnknownCallbackError reports a name that no registry knows. It is a
// configuration error and is never retried.
type UnknownCallbackError struct {
	Kind Kind
	Name string
}

func (e *UnknownCallbackError) Error() string {
	return fmt.Sprintf("unknown %s callback %q", e.Kind, e.Name)
}

func (e *UnknownCallbackError) Is(target error) bool {
	return target == ErrUnknownCallback
}

// Registry maps names to callbacks. It is safe for concurrent use;
// registration normally happens once at startup.
type Registry struct {
	mu      sync.RWMutex
	inputs  map[string]InputFunc
	actions map[string]ActionFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		inputs:  make(map[string]InputFunc),
		actions: make(map[string]ActionFunc),
	}
}

// RegisterInput adds or replaces the input function called name.
func (registry *Registry) RegisterInput(name string, function InputFunc) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.inputs[name] = function
}

// RegisterAction adds or replaces the action called name.
func (registry *Registry) RegisterAction(name string, function ActionFunc) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.actions[name] = function
}

// SeedAction registers function under name unless an action with that
// name already exists. Reports whether it registered.
func (registry *Registry) SeedAction(name string, function ActionFunc) bool {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, exists := registry.actions[name]; exists {
		return false
	}
	registry.actions[name] = function
	return true
}

// Input returns the input function called name.
func (registry *Registry) Input(name string) (InputFunc, bool) {
	if registry == nil {
		return nil, false
	}
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	function, ok := registry.inputs[name]
	return function, ok
}

// Action returns the action called name.
func (registry *Registry) Action(name string) (ActionFunc, bool) {
	if registry == nil {
		return nil, false
	}
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	function, ok := registry.actions[name]
	return function, ok
}

// Resolver looks names up in a local registry, then a global one.
// Either may be nil.
type Resolver struct {
	local  *Registry
	global *Registry
}

// NewResolver returns a resolver over local and global.
func NewResolver(local, global *Registry) *Resolver {
	return &Resolver{local: local, global: global}
}

// Input resolves an input function.
func (resolver *Resolver) Input(name string) (InputFunc, error) {
	if function, ok := resolver.local.Input(name); ok {
		return function, nil
	}
	if function, ok := resolver.global.Input(name); ok {
		return function, nil
	}
	return nil, &UnknownCallbackError{Kind: KindInput, Name: name}
}

// Action resolves an action.
func (resolver *Resolver) Action(name string) (ActionFunc, error) {
	if function, ok := resolver.local.Action(name); ok {
		return function, nil
	}
	if function, ok := resolver.global.Action(name); ok {
		return function, nil
	}
	return nil, &UnknownCallbackError{Kind: KindAction, Name: name}
}
