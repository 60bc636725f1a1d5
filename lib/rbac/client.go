// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package rbac

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pagegate/pagegate/lib/netutil"
)

// DefaultPageSize is the number of bindings requested per page.
const DefaultPageSize = 20

// ErrUnauthorized matches errors for requests the service refused with
// 401 or 403.
var ErrUnauthorized = errors.New("rbac: unauthorized")

// APIError is a non-2xx answer from the role-binding service.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	message := fmt.Sprintf("rbac: %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		message += ": " + e.Body
	}
	return message
}

// Is reports 401 and 403 as ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// Binding assigns a role to a user. Role is empty for users without one.
type Binding struct {
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// PageInfo locates a page: Index is 1-based, Of is the page count.
type PageInfo struct {
	Index int `json:"index"`
	Of    int `json:"of"`
}

// UsersPage is one page of bindings.
type UsersPage struct {
	Result []Binding `json:"result"`
	Page   PageInfo  `json:"page"`
}

// Options configures a Client.
type Options struct {
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// PageSize defaults to DefaultPageSize.
	PageSize int

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Client is a role-binding API client.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	pageSize   int
	logger     *slog.Logger
}

// NewClient creates a Client for the service at baseURL, which must be
// an absolute http or https URL.
func NewClient(baseURL string, options Options) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing rbac base URL: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("rbac base URL %q must be an absolute http or https URL", baseURL)
	}

	client := &Client{
		baseURL:    parsed,
		httpClient: options.HTTPClient,
		pageSize:   options.PageSize,
		logger:     options.Logger,
	}
	if client.httpClient == nil {
		client.httpClient = http.DefaultClient
	}
	if client.pageSize <= 0 {
		client.pageSize = DefaultPageSize
	}
	if client.logger == nil {
		client.logger = slog.New(slog.DiscardHandler)
	}
	return client, nil
}

// PageSize returns the number of bindings requested per page.
func (client *Client) PageSize() int {
	return client.pageSize
}

// Roles lists the roles a user can be bound to.
func (client *Client) Roles(ctx context.Context) ([]string, error) {
	var roles []string
	if err := client.do(ctx, http.MethodGet, "/api/rbac/roles", nil, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// Users fetches one page of bindings. Pages start at 1; smaller values
// request the first page.
func (client *Client) Users(ctx context.Context, page int) (UsersPage, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(client.pageSize)},
	}

	var users UsersPage
	if err := client.do(ctx, http.MethodGet, "/api/rbac/users", query, nil, &users); err != nil {
		return UsersPage{}, err
	}
	if users.Page.Index < 1 {
		users.Page.Index = page
	}
	if users.Page.Of < users.Page.Index {
		users.Page.Of = users.Page.Index
	}
	return users, nil
}

// SetRole binds username to role.
func (client *Client) SetRole(ctx context.Context, username, role string) error {
	if username == "" {
		return errors.New("rbac: username is empty")
	}
	body := map[string]string{"role": role}
	return client.do(ctx, http.MethodPost, "/api/rbac/users/"+url.PathEscape(username), nil, body, nil)
}

func (client *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := client.baseURL.JoinPath(path)
	target.RawQuery = query.Encode()

	var body *bytes.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("rbac: encoding %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	request, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("rbac: building %s %s: %w", method, path, err)
	}
	request.Header.Set("Accept", "application/json")
	if in != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	client.logger.Debug("rbac request", "method", method, "url", target.String())

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("rbac: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: response.StatusCode,
			Body:       netutil.ErrorBody(response.Body),
		}
	}
	if out == nil {
		return nil
	}
	if err := netutil.DecodeResponse(response.Body, out); err != nil {
		return fmt.Errorf("rbac: decoding %s %s: %w", method, path, err)
	}
	return nil
}
