// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pagegate/pagegate/lib/decision"
)

func TestByName(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		name        string
		contentType string
	}{
		{"", "application/json"},
		{"json", "application/json"},
		{"cbor", "application/cbor"},
	} {
		selected, err := ByName(test.name)
		if err != nil {
			t.Fatalf("ByName(%q): %v", test.name, err)
		}
		if selected.ContentType() != test.contentType {
			t.Errorf("ByName(%q).ContentType() = %q, want %q", test.name, selected.ContentType(), test.contentType)
		}
	}

	if _, err := ByName("xml"); err == nil {
		t.Error("ByName(xml) should fail")
	}
}

func TestJSONEncodeQueries(t *testing.T) {
	t.Parallel()

	queries := []decision.Query{
		decision.NewQuery("/a"),
		decision.NewQuery("/b", map[string]any{"user": "u1"}),
		decision.NewQuery("/c", nil),
	}
	data, err := JSON.EncodeQueries(queries)
	if err != nil {
		t.Fatalf("EncodeQueries: %v", err)
	}
	want := `[{"path":"/a"},{"path":"/b","input":{"user":"u1"}},{"path":"/c","input":null}]`
	if string(data) != want {
		t.Errorf("EncodeQueries = %s, want %s", data, want)
	}
}

func TestJSONDecodeDecisions(t *testing.T) {
	t.Parallel()

	decisions, err := JSON.DecodeDecisions([]byte(` [{"result":true},{},{"result":"x"}]`))
	if err != nil {
		t.Fatalf("DecodeDecisions: %v", err)
	}
	want := []decision.Decision{{Result: true}, {}, {Result: "x"}}
	if diff := cmp.Diff(want, decisions); diff != "" {
		t.Errorf("decisions mismatch (-want +got):\n%s", diff)
	}

	for _, body := range []string{``, `{"result":true}`, `[{"result":`} {
		if _, err := JSON.DecodeDecisions([]byte(body)); err == nil {
			t.Errorf("DecodeDecisions(%q) should fail", body)
		}
	}
}

func TestCBORRoundTrip(t *testing.T) {
	t.Parallel()

	queries := []decision.Query{
		decision.NewQuery("/a"),
		decision.NewQuery("/b", map[string]any{"user": "u1"}),
	}
	data, err := CBOR.EncodeQueries(queries)
	if err != nil {
		t.Fatalf("EncodeQueries: %v", err)
	}

	var wire []map[string]any
	if err := Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(wire) != 2 {
		t.Fatalf("got %d entries, want 2", len(wire))
	}
	if _, present := wire[0]["input"]; present {
		t.Error("query without input should not carry an input key")
	}
	input, ok := wire[1]["input"].(map[string]any)
	if !ok || input["user"] != "u1" {
		t.Errorf("input = %#v, want map with user=u1", wire[1]["input"])
	}

	response, err := Marshal([]map[string]any{{"result": true}, {}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decisions, err := CBOR.DecodeDecisions(response)
	if err != nil {
		t.Fatalf("DecodeDecisions: %v", err)
	}
	if len(decisions) != 2 || !decision.Allowed(decisions[0]) || decision.Allowed(decisions[1]) {
		t.Errorf("decisions = %#v, want [allow, deny]", decisions)
	}
}

func TestCBORDeterministic(t *testing.T) {
	t.Parallel()

	queries := []decision.Query{decision.NewQuery("/a", map[string]any{"z": 1, "a": 2, "m": 3})}
	first, err := CBOR.EncodeQueries(queries)
	if err != nil {
		t.Fatalf("EncodeQueries: %v", err)
	}
	for range 10 {
		again, err := CBOR.EncodeQueries(queries)
		if err != nil {
			t.Fatalf("EncodeQueries: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("CBOR encoding is not deterministic")
		}
	}

	diagnostic, err := Diagnose(first)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(diagnostic, `"path"`) {
		t.Errorf("diagnostic %q should mention the path key", diagnostic)
	}
}
