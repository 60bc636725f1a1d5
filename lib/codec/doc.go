// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the wire encodings for decision batches.
//
// A decision point speaks JSON by default. Deployments that front the
// decision point with a CBOR-capable gateway can switch to CBOR to cut
// payload size for large pages; both encodings carry the same logical
// shape:
//
//	request:  [{"path": "...", "input": ...}, ...]
//	response: [{"result": ...}, ...]
//
// The CBOR encoder uses Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding, no indefinite-length
// items. The decoder maps CBOR maps onto map[string]any so decoded
// inputs and results look the same as their JSON counterparts.
//
// Select an encoding by name with [ByName]; "" and "json" give [JSON],
// "cbor" gives [CBOR].
package codec
