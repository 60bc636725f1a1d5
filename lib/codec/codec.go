// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pagegate/pagegate/lib/decision"
)

// Codec encodes query batches and decodes decision batches.
type Codec interface {
	// Name is the configuration name of the codec ("json", "cbor").
	Name() string

	// ContentType is sent as both Content-Type and Accept.
	ContentType() string

	// EncodeQueries encodes a batch request body.
	EncodeQueries(queries []decision.Query) ([]byte, error)

	// DecodeDecisions decodes a batch response body. A body that is not
	// an array is an error.
	DecodeDecisions(data []byte) ([]decision.Decision, error)
}

// JSON is the default codec.
var JSON Codec = jsonCodec{}

// CBOR is the RFC 8949 codec.
var CBOR Codec = cborCodec{}

// ByName returns the codec registered under name.
func ByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	default:
		return nil, fmt.Errorf("unknown codec %q (expected json or cbor)", name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string        { return "json" }
func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) EncodeQueries(queries []decision.Query) ([]byte, error) {
	return json.Marshal(queries)
}

func (jsonCodec) DecodeDecisions(data []byte) ([]decision.Decision, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("decision response is not a JSON array")
	}
	var decisions []decision.Decision
	if err := json.Unmarshal(trimmed, &decisions); err != nil {
		return nil, fmt.Errorf("decoding decision response: %w", err)
	}
	return decisions, nil
}

type cborCodec struct{}

func (cborCodec) Name() string        { return "cbor" }
func (cborCodec) ContentType() string { return "application/cbor" }

// EncodeQueries builds explicit maps so that an input that was set to
// nil is still sent, mirroring the JSON encoding.
func (cborCodec) EncodeQueries(queries []decision.Query) ([]byte, error) {
	wire := make([]map[string]any, len(queries))
	for index, query := range queries {
		entry := map[string]any{"path": query.Path}
		if query.HasInput {
			entry["input"] = query.Input
		}
		wire[index] = entry
	}
	return Marshal(wire)
}

func (cborCodec) DecodeDecisions(data []byte) ([]decision.Decision, error) {
	var wire []map[string]any
	if err := Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decoding decision response: %w", err)
	}
	decisions := make([]decision.Decision, len(wire))
	for index, entry := range wire {
		decisions[index] = decision.Decision{Result: entry["result"]}
	}
	return decisions, nil
}
