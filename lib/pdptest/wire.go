// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package pdptest

import (
	"encoding/json"

	"github.com/pagegate/pagegate/lib/codec"
	"github.com/pagegate/pagegate/lib/decision"
)

// decodeQueries is the server side of codec.Codec.EncodeQueries.
func decodeQueries(wire codec.Codec, body []byte) ([]decision.Query, error) {
	if wire == codec.CBOR {
		var entries []map[string]any
		if err := codec.Unmarshal(body, &entries); err != nil {
			return nil, err
		}
		queries := make([]decision.Query, len(entries))
		for index, entry := range entries {
			policyPath, _ := entry["path"].(string)
			queries[index] = decision.Query{Path: policyPath}
			if input, present := entry["input"]; present {
				queries[index] = queries[index].WithInput(input)
			}
		}
		return queries, nil
	}

	var queries []decision.Query
	if err := json.Unmarshal(body, &queries); err != nil {
		return nil, err
	}
	return queries, nil
}

// encodeDecisions is the server side of codec.Codec.DecodeDecisions.
func encodeDecisions(wire codec.Codec, decisions []decision.Decision) ([]byte, error) {
	if wire == codec.CBOR {
		entries := make([]map[string]any, len(decisions))
		for index, outcome := range decisions {
			entries[index] = map[string]any{}
			if outcome.Result != nil {
				entries[index]["result"] = outcome.Result
			}
		}
		return codec.Marshal(entries)
	}
	if decisions == nil {
		decisions = []decision.Decision{}
	}
	return json.Marshal(decisions)
}
