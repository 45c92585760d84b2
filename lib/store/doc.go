// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package store implements the board.Store contract.
//
// FileStore is the production store: one zstd-compressed CBOR file
// holding the whole document, replaced atomically on every save
// (write to a temp file in the same directory, fsync, rename).
// MemoryStore backs tests.
//
// Both stores round-trip exactly: Load after Save yields an equal
// document, and neither ever returns nil maps (documents are
// normalized on the way out).
package store
