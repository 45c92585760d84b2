// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging wraps the Matrix client-server API for the
// corkboard service.
//
// [Client] is an unauthenticated Matrix client holding the homeserver
// URL and HTTP transport. Login and SessionFromToken return
// authenticated [Session] values for the API surface the service
// needs: room management (create, join, leave, invite), sending
// message events, incremental sync with long-polling, room alias
// resolution, profile lookup, and identity verification (WhoAmI).
//
// [Messenger] sits on top of a Session and implements the board
// package's delivery contract: notices to a user go to a per-user
// direct-message room (found or created on first contact, then
// cached), notices to a channel go to the room directly. Card bodies
// are rendered from markdown to HTML so posts keep their formatting.
//
// All API errors are returned as [*MatrixError] with the standard
// Matrix error code (M_FORBIDDEN, M_NOT_FOUND, etc.) and HTTP status
// code. [IsMatrixError] tests for a specific error code. Request URLs
// are built by string concatenation rather than url.URL to avoid
// double-encoding of path segments.
package messaging
