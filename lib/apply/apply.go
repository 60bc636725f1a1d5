// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package apply applies authorization decisions to document elements.
//
// Each element is handled by a named action. The name is chosen once
// and then reused on every later refresh of the same element:
//
//  1. An author-provided authz:action attribute always wins.
//  2. Otherwise the name remembered for the element from an earlier
//     refresh is reused.
//  3. Otherwise the name is inferred from the element's current state:
//     an element carrying the hidden class gets "hide", anything else
//     gets "disable". The inferred name is remembered.
//
// Reusing the name matters because the built-in actions change the very
// state that inference looks at: once "disable" has hidden nothing, a
// later refresh must not start treating the element differently.
//
// Remembered names live in a side-table keyed by element identity, not
// in the document. Each entry records the tree the element was last
// applied in. [Applicator.Prune] and [Applicator.PruneDetached] evict
// entries for elements that have left that tree; entries for elements
// of other live trees the client serves are kept. Hosts that still
// expect authz:action to be written back into the page can enable
// Options.PersistAttribute.
//
// The action's effect is recomputed from the fresh decision on every
// call. The built-in actions are:
//
//	disable  allowed: remove the disabled attribute; denied: disabled="true"
//	hide     allowed: remove the hidden class;       denied: add it
//
// Allowed means [decision.Allowed]; everything else denies.
package apply

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/net/html"

	"github.com/pagegate/pagegate/lib/callback"
	"github.com/pagegate/pagegate/lib/decision"
	"github.com/pagegate/pagegate/lib/dom"
)

// Attribute and marker names.
const (
	AttrAction   = "authz:action"
	AttrDisabled = "disabled"
	ClassHidden  = "hidden"
)

// Built-in action names. Registering a custom action under one of these
// names replaces the built-in for that client.
const (
	ActionDisable = "disable"
	ActionHide    = "hide"
)

// Options configures an Applicator.
type Options struct {
	// PersistAttribute writes inferred action names to the authz:action
	// attribute in addition to the side-table.
	PersistAttribute bool
}

// Applicator selects and runs the action for each element. It is safe
// for concurrent use; concurrent calls must target distinct elements.
type Applicator struct {
	resolver *callback.Resolver
	persist  bool

	mu         sync.Mutex
	remembered map[*html.Node]rememberedAction
}

// rememberedAction is a side-table entry: the action name and the root of the
// tree the element belonged to when it was last applied.
type rememberedAction struct {
	name string
	root *html.Node
}

// New returns an Applicator resolving actions with resolver.
func New(resolver *callback.Resolver, options Options) *Applicator {
	return &Applicator{
		resolver:   resolver,
		persist:    options.PersistAttribute,
		remembered: make(map[*html.Node]rememberedAction),
	}
}

// Apply runs the element's action with outcome.
func (applicator *Applicator) Apply(ctx context.Context, element *html.Node, outcome decision.Decision) error {
	name := applicator.selectAction(element)
	action, err := applicator.resolver.Action(name)
	if err != nil {
		return err
	}
	if err := action(ctx, outcome, element); err != nil {
		return fmt.Errorf("action %q: %w", name, err)
	}
	return nil
}

// ActionName returns the action Apply would run for element, without
// remembering an inferred name.
func (applicator *Applicator) ActionName(element *html.Node) string {
	if name, ok := dom.Attr(element, AttrAction); ok && name != "" {
		return name
	}
	if name, ok := applicator.Remembered(element); ok {
		return name
	}
	return InferAction(element)
}

// selectAction is ActionName plus remembering an inferred name.
func (applicator *Applicator) selectAction(element *html.Node) string {
	if name, ok := dom.Attr(element, AttrAction); ok && name != "" {
		return name
	}

	root := dom.Root(element)
	applicator.mu.Lock()
	defer applicator.mu.Unlock()
	if entry, ok := applicator.remembered[element]; ok {
		entry.root = root
		applicator.remembered[element] = entry
		return entry.name
	}
	name := InferAction(element)
	applicator.remembered[element] = rememberedAction{name: name, root: root}
	if applicator.persist {
		dom.SetAttr(element, AttrAction, name)
	}
	return name
}

// Remembered returns the action name remembered for element.
func (applicator *Applicator) Remembered(element *html.Node) (string, bool) {
	applicator.mu.Lock()
	defer applicator.mu.Unlock()
	entry, ok := applicator.remembered[element]
	return entry.name, ok
}

// Forget drops the remembered action name for element.
func (applicator *Applicator) Forget(element *html.Node) {
	applicator.mu.Lock()
	defer applicator.mu.Unlock()
	delete(applicator.remembered, element)
}

// Prune drops remembered names for elements that are no longer part of
// the tree rooted at root, and returns how many were dropped.
func (applicator *Applicator) Prune(root *html.Node) int {
	applicator.mu.Lock()
	defer applicator.mu.Unlock()
	pruned := 0
	for element := range applicator.remembered {
		if !dom.Contains(root, element) {
			delete(applicator.remembered, element)
			pruned++
		}
	}
	return pruned
}

// PruneDetached drops remembered names for elements last applied in the
// tree containing active that have since left it, and returns how many
// were dropped. Entries belonging to other trees are left alone, so a
// client can serve several documents or fragments in turn.
func (applicator *Applicator) PruneDetached(active *html.Node) int {
	activeRoot := dom.Root(active)
	applicator.mu.Lock()
	defer applicator.mu.Unlock()
	pruned := 0
	for element, entry := range applicator.remembered {
		if entry.root != activeRoot || dom.Root(element) == activeRoot {
			continue
		}
		delete(applicator.remembered, element)
		pruned++
	}
	return pruned
}

// Len returns the number of remembered elements.
func (applicator *Applicator) Len() int {
	applicator.mu.Lock()
	defer applicator.mu.Unlock()
	return len(applicator.remembered)
}

// FailClosed puts element into its not-allowed state using the built-in
// action that matches it. Used when no decision could be obtained or the
// selected action failed, so custom actions are bypassed.
func (applicator *Applicator) FailClosed(element *html.Node) {
	name := applicator.ActionName(element)
	if name != ActionHide && name != ActionDisable {
		name = InferAction(element)
	}
	if name == ActionHide {
		Hide(context.Background(), decision.Deny, element)
		return
	}
	Disable(context.Background(), decision.Deny, element)
}

// InferAction picks the built-in action for an element that names none.
func InferAction(element *html.Node) string {
	if dom.HasClass(element, ClassHidden) {
		return ActionHide
	}
	return ActionDisable
}

// Disable is the built-in "disable" action.
func Disable(_ context.Context, outcome decision.Decision, element *html.Node) error {
	if decision.Allowed(outcome) {
		dom.RemoveAttr(element, AttrDisabled)
	} else {
		dom.SetAttr(element, AttrDisabled, "true")
	}
	return nil
}

// Hide is the built-in "hide" action.
func Hide(_ context.Context, outcome decision.Decision, element *html.Node) error {
	if decision.Allowed(outcome) {
		dom.RemoveClass(element, ClassHidden)
	} else {
		dom.AddClass(element, ClassHidden)
	}
	return nil
}

// SeedBuiltins registers the built-in actions in registry under their
// reserved names, keeping any action already registered there.
func SeedBuiltins(registry *callback.Registry) {
	registry.SeedAction(ActionDisable, Disable)
	registry.SeedAction(ActionHide, Hide)
}
