// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/pagegate/pagegate/lib/dom"
	"github.com/pagegate/pagegate/lib/events"
)

// AnchorID is the conventional id of the element hosting the widget.
const AnchorID = "authz-manage-rbac"

// Markup hooks set by the widget.
const (
	AttrUser          = "data-user"
	AttrPage          = "data-page"
	AttrPending       = "data-pending"
	ClassUnauthorized = "rbac-unauthorized"
)

// UnauthorizedMessage is shown in place of the table when the service
// refuses the current user.
const UnauthorizedMessage = "You are not allowed to manage role bindings."

// RenderInfo is the payload of an "rbac" event.
type RenderInfo struct {
	Page     int
	Of       int
	Bindings []Binding
}

// UpdateInfo is the payload of an "rbac-update" event.
type UpdateInfo struct {
	Username string
	Role     string
	Err      error
}

// WidgetOptions configures a Widget.
type WidgetOptions struct {
	Listeners []events.Listener
	Logger    *slog.Logger
}

// Widget renders role bindings into anchors. It remembers the page last
// shown in each anchor so that Update can redraw it.
type Widget struct {
	client  *Client
	emitter *events.Emitter
	logger  *slog.Logger

	mu    sync.Mutex
	pages map[*html.Node]int
}

// NewWidget creates a Widget backed by client.
func NewWidget(client *Client, options WidgetOptions) *Widget {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Widget{
		client:  client,
		emitter: events.NewEmitter(logger, options.Listeners...),
		logger:  logger,
		pages:   make(map[*html.Node]int),
	}
}

// AddListener registers listener after all existing listeners.
func (widget *Widget) AddListener(listener events.Listener) {
	widget.emitter.Add(listener)
}

// FindAnchor returns the element with id AnchorID under root, or nil.
func FindAnchor(root *html.Node) *html.Node {
	return dom.ElementByID(root, AnchorID)
}

// Render replaces the children of anchor with the given page of
// bindings. When the service refuses access the anchor shows
// UnauthorizedMessage instead and the error, matching ErrUnauthorized,
// is returned. Other fetch failures leave the anchor untouched.
func (widget *Widget) Render(ctx context.Context, anchor *html.Node, page int) error {
	if anchor == nil {
		return errors.New("rbac: render anchor is nil")
	}
	if page < 1 {
		page = 1
	}

	var (
		roles []string
		users UsersPage
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		roles, err = widget.client.Roles(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		users, err = widget.client.Users(groupCtx, page)
		return err
	})
	if err := group.Wait(); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			widget.renderUnauthorized(anchor)
		}
		widget.logger.Warn("rendering role bindings failed", "page", page, "error", err)
		widget.emitter.Emit(events.TypeError, events.ErrorInfo{Source: "rbac", Element: anchor, Err: err})
		return err
	}

	dom.RemoveChildren(anchor)
	dom.Append(anchor, bindingTable(roles, users.Result), pagination(users.Page))

	widget.mu.Lock()
	widget.pages[anchor] = users.Page.Index
	widget.mu.Unlock()

	widget.emitter.Emit(events.TypeRBAC, RenderInfo{
		Page:     users.Page.Index,
		Of:       users.Page.Of,
		Bindings: users.Result,
	})
	return nil
}

// Update binds username to role and redraws the page last rendered in
// anchor. The new role is shown as selected, and marked pending, while
// the request is in flight. If the request fails the page is redrawn
// from the service, which restores the previous binding.
func (widget *Widget) Update(ctx context.Context, anchor *html.Node, username, role string) error {
	if anchor == nil {
		return errors.New("rbac: update anchor is nil")
	}
	markPending(anchor, username, role)

	err := widget.client.SetRole(ctx, username, role)
	if err != nil {
		widget.logger.Warn("updating role binding failed", "username", username, "role", role, "error", err)
	} else {
		widget.logger.Info("role binding updated", "username", username, "role", role)
	}
	widget.emitter.Emit(events.TypeRBACUpdate, UpdateInfo{Username: username, Role: role, Err: err})

	renderErr := widget.Render(ctx, anchor, widget.CurrentPage(anchor))
	if err != nil {
		return errors.Join(err, renderErr)
	}
	return renderErr
}

// CurrentPage returns the page last rendered in anchor, or 1.
func (widget *Widget) CurrentPage(anchor *html.Node) int {
	widget.mu.Lock()
	defer widget.mu.Unlock()
	if page, ok := widget.pages[anchor]; ok {
		return page
	}
	return 1
}

// Forget drops the page remembered for anchor.
func (widget *Widget) Forget(anchor *html.Node) {
	widget.mu.Lock()
	defer widget.mu.Unlock()
	delete(widget.pages, anchor)
}

func (widget *Widget) renderUnauthorized(anchor *html.Node) {
	dom.RemoveChildren(anchor)
	dom.Append(anchor, dom.Append(dom.Element("p", "class", ClassUnauthorized), dom.Text(UnauthorizedMessage)))
	widget.mu.Lock()
	delete(widget.pages, anchor)
	widget.mu.Unlock()
}

func bindingTable(roles []string, bindings []Binding) *html.Node {
	table := dom.Element("table")
	dom.Append(table, dom.Append(dom.Element("tr"),
		dom.Append(dom.Element("th"), dom.Text("User")),
		dom.Append(dom.Element("th"), dom.Text("Role")),
	))
	for _, binding := range bindings {
		dom.Append(table, dom.Append(dom.Element("tr"),
			dom.Append(dom.Element("td"), dom.Text(binding.Username)),
			dom.Append(dom.Element("td"), roleSelector(roles, binding)),
		))
	}
	return table
}

// roleSelector lists roles for one user. The first option is a disabled
// placeholder, selected when the user has no role or one that is not in
// roles; in the latter case it shows the unknown role.
func roleSelector(roles []string, binding Binding) *html.Node {
	selector := dom.Element("select", "name", "role", AttrUser, binding.Username)

	placeholder := dom.Element("option", "disabled", "true", "value", "")
	known := binding.Role != "" && slices.Contains(roles, binding.Role)
	if !known {
		dom.SetAttr(placeholder, "selected", "true")
		if binding.Role != "" {
			dom.Append(placeholder, dom.Text(binding.Role))
		}
	}
	dom.Append(selector, placeholder)

	for _, role := range roles {
		option := dom.Element("option", "value", role)
		if role == binding.Role {
			dom.SetAttr(option, "selected", "true")
		}
		dom.Append(selector, dom.Append(option, dom.Text(role)))
	}
	return selector
}

func pagination(page PageInfo) *html.Node {
	nav := dom.Element("nav", "class", "rbac-pages")
	if page.Index > 1 {
		dom.Append(nav, pageLink(page.Index-1, "prev", "Previous"))
	}
	dom.Append(nav, dom.Append(dom.Element("span"), dom.Text(fmt.Sprintf("Page %d of %d", page.Index, page.Of))))
	if page.Index < page.Of {
		dom.Append(nav, pageLink(page.Index+1, "next", "Next"))
	}
	return nav
}

func pageLink(page int, rel, label string) *html.Node {
	number := strconv.Itoa(page)
	link := dom.Element("a", "href", "?page="+number, "rel", rel, AttrPage, number)
	return dom.Append(link, dom.Text(label))
}

// markPending selects role in username's selector and flags the
// selector as pending. Missing selectors are ignored.
func markPending(anchor *html.Node, username, role string) {
	selectors := dom.FindAll(anchor, func(node *html.Node) bool {
		if node.Type != html.ElementNode || node.Data != "select" {
			return false
		}
		user, ok := dom.Attr(node, AttrUser)
		return ok && user == username
	})
	for _, selector := range selectors {
		dom.SetAttr(selector, AttrPending, "true")
		for option := selector.FirstChild; option != nil; option = option.NextSibling {
			if option.Type != html.ElementNode {
				continue
			}
			value, _ := dom.Attr(option, "value")
			if value == role && value != "" {
				dom.SetAttr(option, "selected", "true")
			} else {
				dom.RemoveAttr(option, "selected")
			}
		}
	}
}
