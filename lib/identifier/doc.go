// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package identifier generates the opaque 6-character tokens used for
// post IDs and reply IDs.
//
// Production code injects Real(), which draws tokens uniformly from
// the A-Z0-9 alphabet using crypto/rand. Tests inject Fake() with a
// scripted token sequence for deterministic routing assertions. The
// generator itself performs no uniqueness checks: collision handling
// (retry against the set of open posts) lives in lib/board, where the
// set to check against is known.
package identifier
