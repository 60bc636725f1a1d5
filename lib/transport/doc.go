// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport sends query batches to a policy decision point.
//
// A [Transport] performs exactly one HTTP round trip per [Transport.Send]:
// a POST of the encoded query array, answered by an array of decisions of
// the same length and order. There are no retries; a failed call is
// reported to the caller immediately.
//
// Failures are typed:
//
//   - [decision.ErrInvalidArgument]: the batch was malformed before any
//     I/O happened (nil slice, empty path).
//   - [*HTTPError]: the decision point answered with a non-200 status.
//     The body is captured best-effort for diagnostics.
//   - [*Error]: the request could not be made or the response could not
//     be decoded, including a decision count that does not match the
//     query count. The cause is available through errors.Unwrap.
//
// Every request carries an X-Request-Id header so decision point logs
// can be correlated with client events. Attach a caller-chosen ID with
// [WithRequestID]; otherwise a random UUID is generated.
package transport
