// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Corkboard's standard CBOR encoding.
//
// The state document is persisted as CBOR with Core Deterministic
// Encoding: the same logical document always produces identical
// bytes, which keeps the on-disk state diffable and makes the
// load/save round-trip property easy to verify. Consumers import only
// this package, never fxamacker/cbor directly.
package codec
