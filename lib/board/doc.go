// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package board implements the anonymous message-board relay: the
// moderation state machine for posts (submitted, approved, closed) and
// the identity-preserving routing of anonymous replies.
//
// The Relay is the data model, the identifier allocator, and the
// routing logic in one place. It holds no post state in memory: every
// operation is a full load → mutate → save cycle against the injected
// Store, serialized behind a single mutex so concurrent commands can
// never clobber each other's unseen mutations.
//
// Anonymity invariant: outbound messages built here contain only
// opaque tokens (post IDs, reply IDs), never a real user identity.
// The Relay alone can map a token back to the identity behind it.
package board
