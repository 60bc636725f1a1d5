// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pagegate/pagegate/lib/codec"
	"github.com/pagegate/pagegate/lib/decision"
	"github.com/pagegate/pagegate/lib/pdptest"
)

func newTransport(t *testing.T, endpoint string, options Options) *Transport {
	t.Helper()
	transport, err := New(endpoint, options)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return transport
}

func TestNewRejectsRelativeEndpoint(t *testing.T) {
	t.Parallel()

	for _, endpoint := range []string{"", "/v1/batch", "ftp://pdp/v1", "http://"} {
		if _, err := New(endpoint, Options{}); err == nil {
			t.Errorf("New(%q) should fail", endpoint)
		}
	}
}

func TestSendPreservesOrder(t *testing.T) {
	t.Parallel()

	fake := pdptest.NewServer(t, pdptest.Allow("/a"), pdptest.Allow("/c"))
	transport := newTransport(t, fake.URL(), Options{})

	queries := []decision.Query{
		decision.NewQuery("/a"),
		decision.NewQuery("/b"),
		decision.NewQuery("/c", map[string]any{"user": "u1"}),
	}
	decisions, err := transport.Send(context.Background(), queries)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	want := []decision.Decision{{Result: true}, {}, {Result: true}}
	if diff := cmp.Diff(want, decisions); diff != "" {
		t.Errorf("decisions mismatch (-want +got):\n%s", diff)
	}

	batches := fake.Batches()
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	if got := batches[0].Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if batches[0].Header.Get(RequestIDHeader) == "" {
		t.Error("request should carry a request ID")
	}
	if len(batches[0].Queries) != 3 || batches[0].Queries[1].HasInput {
		t.Errorf("server saw queries %+v", batches[0].Queries)
	}
}

func TestSendRequestIDFromContext(t *testing.T) {
	t.Parallel()

	fake := pdptest.NewServer(t)
	transport := newTransport(t, fake.URL(), Options{})

	ctx := WithRequestID(context.Background(), "batch-42")
	if _, err := transport.Send(ctx, []decision.Query{decision.NewQuery("/a")}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := fake.Batches()[0].Header.Get(RequestIDHeader); got != "batch-42" {
		t.Errorf("%s = %q, want batch-42", RequestIDHeader, got)
	}
}

func TestSendCBOR(t *testing.T) {
	t.Parallel()

	fake := pdptest.NewServer(t, pdptest.Allow("/a"))
	transport := newTransport(t, fake.URL(), Options{Codec: codec.CBOR})

	decisions, err := transport.Send(context.Background(), []decision.Query{
		decision.NewQuery("/a", map[string]any{"user": "u1"}),
		decision.NewQuery("/b"),
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !decision.Allowed(decisions[0]) || decision.Allowed(decisions[1]) {
		t.Errorf("decisions = %+v, want [allow, deny]", decisions)
	}
	if got := fake.Batches()[0].Header.Get("Content-Type"); got != "application/cbor" {
		t.Errorf("Content-Type = %q, want application/cbor", got)
	}
}

func TestSendInvalidArgument(t *testing.T) {
	t.Parallel()

	fake := pdptest.NewServer(t)
	transport := newTransport(t, fake.URL(), Options{})

	if _, err := transport.Send(context.Background(), nil); !errors.Is(err, decision.ErrInvalidArgument) {
		t.Errorf("Send(nil) = %v, want ErrInvalidArgument", err)
	}
	if len(fake.Batches()) != 0 {
		t.Error("invalid batches must not reach the network")
	}
}

func TestSendEmptyBatch(t *testing.T) {
	t.Parallel()

	fake := pdptest.NewServer(t)
	transport := newTransport(t, fake.URL(), Options{})

	decisions, err := transport.Send(context.Background(), []decision.Query{})
	if err != nil {
		t.Fatalf("Send(empty): %v", err)
	}
	if len(decisions) != 0 {
		t.Errorf("got %d decisions, want 0", len(decisions))
	}
}

func TestSendHTTPError(t *testing.T) {
	t.Parallel()

	fake := pdptest.NewServer(t)
	fake.FailWith(http.StatusInternalServerError, "policy bundle not loaded")
	transport := newTransport(t, fake.URL(), Options{})

	_, err := transport.Send(context.Background(), []decision.Query{decision.NewQuery("/a")})
	var httpError *HTTPError
	if !errors.As(err, &httpError) {
		t.Fatalf("Send error = %v, want *HTTPError", err)
	}
	if httpError.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", httpError.StatusCode)
	}
	if httpError.Body != "policy bundle not loaded" {
		t.Errorf("Body = %q", httpError.Body)
	}
}

func TestSendLengthMismatch(t *testing.T) {
	t.Parallel()

	fake := pdptest.NewServer(t)
	fake.Respond(func(queries []decision.Query) []decision.Decision {
		return []decision.Decision{{Result: true}}
	})
	transport := newTransport(t, fake.URL(), Options{})

	_, err := transport.Send(context.Background(), []decision.Query{decision.NewQuery("/a"), decision.NewQuery("/b")})
	var transportError *Error
	if !errors.As(err, &transportError) {
		t.Fatalf("Send error = %v, want *Error", err)
	}
	if transportError.Op != "decoding response" {
		t.Errorf("Op = %q, want decoding response", transportError.Op)
	}
}

func TestSendMalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{"result": true}`))
	}))
	t.Cleanup(server.Close)
	transport := newTransport(t, server.URL, Options{})

	_, err := transport.Send(context.Background(), []decision.Query{decision.NewQuery("/a")})
	var transportError *Error
	if !errors.As(err, &transportError) {
		t.Fatalf("Send error = %v, want *Error", err)
	}
}

func TestSendMalformedCBORBody(t *testing.T) {
	t.Parallel()

	body, err := codec.Marshal(map[string]any{"result": true})
	if err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Write(body)
	}))
	t.Cleanup(server.Close)
	transport := newTransport(t, server.URL, Options{Codec: codec.CBOR})

	_, err = transport.Send(context.Background(), []decision.Query{decision.NewQuery("/a")})
	var transportError *Error
	if !errors.As(err, &transportError) {
		t.Fatalf("Send error = %v, want *Error", err)
	}
	if !strings.Contains(err.Error(), `{"result": true}`) {
		t.Errorf("error %q lacks the diagnostic form of the body", err)
	}
}

func TestSendNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()
	transport := newTransport(t, endpoint, Options{})

	_, err := transport.Send(context.Background(), []decision.Query{decision.NewQuery("/a")})
	var transportError *Error
	if !errors.As(err, &transportError) {
		t.Fatalf("Send error = %v, want *Error", err)
	}
	if transportError.Op != "sending request" {
		t.Errorf("Op = %q, want sending request", transportError.Op)
	}
	if errors.Unwrap(err) == nil {
		t.Error("transport error should wrap its cause")
	}
}
