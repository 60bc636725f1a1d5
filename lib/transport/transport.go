// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/pagegate/pagegate/lib/codec"
	"github.com/pagegate/pagegate/lib/decision"
	"github.com/pagegate/pagegate/lib/netutil"
)

// RequestIDHeader carries the batch correlation ID.
const RequestIDHeader = "X-Request-Id"

// Options configures a Transport. The zero value is usable.
type Options struct {
	// HTTPClient performs the request. Defaults to http.DefaultClient.
	// Timeouts, proxies, and TLS settings belong here.
	HTTPClient *http.Client

	// Codec encodes requests and decodes responses. Defaults to
	// codec.JSON.
	Codec codec.Codec

	// Logger receives debug-level request tracing. Defaults to a
	// discarding logger.
	Logger *slog.Logger
}

// Transport sends query batches to one decision point endpoint.
type Transport struct {
	endpoint   string
	httpClient *http.Client
	codec      codec.Codec
	logger     *slog.Logger
}

// New creates a Transport for endpoint, which must be an absolute http
// or https URL.
func New(endpoint string, options Options) (*Transport, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("decision endpoint %q: %w", endpoint, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("decision endpoint %q must be an absolute http(s) URL: %w", endpoint, decision.ErrInvalidArgument)
	}

	transport := &Transport{
		endpoint:   endpoint,
		httpClient: options.HTTPClient,
		codec:      options.Codec,
		logger:     options.Logger,
	}
	if transport.httpClient == nil {
		transport.httpClient = http.DefaultClient
	}
	if transport.codec == nil {
		transport.codec = codec.JSON
	}
	if transport.logger == nil {
		transport.logger = slog.New(slog.DiscardHandler)
	}
	return transport, nil
}

// Endpoint returns the decision point URL.
func (transport *Transport) Endpoint() string {
	return transport.endpoint
}

// Codec returns the wire codec in use.
func (transport *Transport) Codec() codec.Codec {
	return transport.codec
}

type requestIDKey struct{}

// WithRequestID returns a context whose batches are sent with requestID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request ID attached to ctx, or "".
func RequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}

// Send posts queries and returns one decision per query, in request
// order. See the package documentation for the error types.
func (transport *Transport) Send(ctx context.Context, queries []decision.Query) ([]decision.Decision, error) {
	if err := decision.ValidateBatch(queries); err != nil {
		return nil, err
	}

	body, err := transport.codec.EncodeQueries(queries)
	if err != nil {
		return nil, &Error{Op: "encoding request", Err: err}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, transport.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: "building request", Err: err}
	}
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	request.Header.Set("Content-Type", transport.codec.ContentType())
	request.Header.Set("Accept", transport.codec.ContentType())
	request.Header.Set(RequestIDHeader, requestID)

	transport.logger.Debug("sending decision batch",
		"endpoint", transport.endpoint,
		"request_id", requestID,
		"queries", len(queries),
		"codec", transport.codec.Name(),
	)

	response, err := transport.httpClient.Do(request)
	if err != nil {
		return nil, &Error{Op: "sending request", Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			StatusCode: response.StatusCode,
			Body:       netutil.ErrorBody(response.Body),
		}
	}

	data, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, &Error{Op: "reading response", Err: err}
	}
	decisions, err := transport.codec.DecodeDecisions(data)
	if err != nil {
		if transport.codec == codec.CBOR {
			if diagnostic, diagErr := codec.Diagnose(data); diagErr == nil {
				err = fmt.Errorf("%w (body: %s)", err, diagnostic)
			}
		}
		return nil, &Error{Op: "decoding response", Err: err}
	}
	if len(decisions) != len(queries) {
		return nil, &Error{
			Op:  "decoding response",
			Err: fmt.Errorf("got %d decisions for %d queries", len(decisions), len(queries)),
		}
	}
	return decisions, nil
}
