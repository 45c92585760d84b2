// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import "errors"

// Relay operations fail with one of these sentinel errors (possibly
// wrapped with context). The dispatcher reports the error text back to
// the invoking user verbatim, so the messages are written for end
// users, not logs. A failed operation performs no state mutation.
var (
	// ErrNotFound: the referenced post does not exist (never created,
	// or already closed).
	ErrNotFound = errors.New("no post found with that ID")

	// ErrForbidden: the actor is neither a moderator nor the post's
	// author.
	ErrForbidden = errors.New("you do not have permission to do that")

	// ErrInvalidTarget: malformed reply addressing: the author used a
	// bare post ID where a composite POSTID_REPLYID token is required,
	// or named a reply ID that is not on record for the post.
	ErrInvalidTarget = errors.New("invalid reply target")

	// ErrMalformedInput: a required message body is missing.
	ErrMalformedInput = errors.New("missing message text")
)
