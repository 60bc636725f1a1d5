// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package pdptest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/pagegate/pagegate/lib/codec"
	"github.com/pagegate/pagegate/lib/decision"
	"github.com/pagegate/pagegate/lib/netutil"
)

// Batch is one request received by the server.
type Batch struct {
	Header  http.Header
	Queries []decision.Query
}

// Responder computes the response for a batch. It may return a slice of
// the wrong length to simulate a broken decision point.
type Responder func(queries []decision.Query) []decision.Decision

// Server is a fake decision point.
type Server struct {
	server *httptest.Server

	mu         sync.Mutex
	rules      []Rule
	responder  Responder
	failStatus int
	failBody   string
	batches    []Batch
}

// NewServer starts a fake decision point answering from rules. The
// server is closed when the test completes.
func NewServer(t testing.TB, rules ...Rule) *Server {
	t.Helper()
	fake := &Server{rules: rules}
	fake.server = httptest.NewServer(http.HandlerFunc(fake.serveHTTP))
	t.Cleanup(fake.server.Close)
	return fake
}

// URL is the endpoint to pass to a client.
func (fake *Server) URL() string {
	return fake.server.URL + "/v1/batch"
}

// Client returns an HTTP client configured for the server.
func (fake *Server) Client() *http.Client {
	return fake.server.Client()
}

// SetRules replaces the rule list.
func (fake *Server) SetRules(rules ...Rule) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.rules = rules
}

// Respond replaces rule evaluation with responder. Pass nil to go back
// to rules.
func (fake *Server) Respond(responder Responder) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.responder = responder
}

// FailWith makes every subsequent batch fail with status and body.
// Status 0 restores normal operation.
func (fake *Server) FailWith(status int, body string) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.failStatus = status
	fake.failBody = body
}

// Batches returns every batch received so far, in arrival order.
func (fake *Server) Batches() []Batch {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return append([]Batch(nil), fake.batches...)
}

func (fake *Server) serveHTTP(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		http.Error(writer, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	wire := codec.JSON
	if strings.HasPrefix(request.Header.Get("Content-Type"), codec.CBOR.ContentType()) {
		wire = codec.CBOR
	}

	body, err := netutil.ReadResponse(request.Body)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}
	queries, err := decodeQueries(wire, body)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	fake.mu.Lock()
	fake.batches = append(fake.batches, Batch{Header: request.Header.Clone(), Queries: queries})
	failStatus, failBody := fake.failStatus, fake.failBody
	rules, responder := fake.rules, fake.responder
	fake.mu.Unlock()

	if failStatus != 0 {
		writer.WriteHeader(failStatus)
		writer.Write([]byte(failBody))
		return
	}

	var decisions []decision.Decision
	if responder != nil {
		decisions = responder(queries)
	} else {
		decisions = make([]decision.Decision, len(queries))
		for index, query := range queries {
			decisions[index] = Evaluate(rules, query)
		}
	}

	encoded, err := encodeDecisions(wire, decisions)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
		return
	}
	writer.Header().Set("Content-Type", wire.ContentType())
	writer.Write(encoded)
}
