// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated identifier types for Corkboard.
//
// Two families of identifiers exist. Matrix identifiers (UserID,
// RoomID, RoomAlias) come from the homeserver and are parsed into
// typed values at the API boundary: Corkboard code never constructs
// them from raw strings outside this package. Board identifiers
// (PostID, ReplyID) are Corkboard's own opaque 6-character tokens;
// they appear in user-facing command hints and are parsed back out of
// user input, so their format contract (exactly 6 symbols from A-Z,
// 0-9) is enforced here in one place.
//
// All types are immutable values. The zero value of each type is not
// valid; use IsZero to check.
package ref
