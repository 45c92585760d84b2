// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// TokenAlphabet is the set of symbols board tokens are drawn from.
// Uppercase letters and digits only: tokens are typed back by users,
// so the alphabet avoids case ambiguity.
const TokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TokenLength is the exact length of every board token. The length is
// part of the user-facing contract: command hints embed tokens of
// this shape: so it is a constant, not a configuration knob.
const TokenLength = 6

// replySeparator joins a post ID and a reply ID into the composite
// addressing token the original poster uses ("ABC123_XYZ789"). The
// character is reserved: it can never appear inside a token.
const replySeparator = "_"

// validateToken checks the board token format contract: exactly
// TokenLength symbols, all from TokenAlphabet.
func validateToken(raw, label string) error {
	if raw == "" {
		return fmt.Errorf("empty %s", label)
	}
	if len(raw) != TokenLength {
		return fmt.Errorf("%s must be exactly %d characters: %q", label, TokenLength, raw)
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return fmt.Errorf("%s has invalid character %q at position %d (allowed: A-Z, 0-9)", label, c, i)
		}
	}
	return nil
}

// PostID is a validated board post identifier: an opaque 6-character
// token over the A-Z0-9 alphabet, unique among currently open posts.
type PostID struct {
	id string
}

// ParsePostID validates and wraps a raw post ID string.
func ParsePostID(raw string) (PostID, error) {
	if err := validateToken(raw, "post ID"); err != nil {
		return PostID{}, err
	}
	return PostID{id: raw}, nil
}

// String returns the post ID string (e.g., "ABC123").
func (p PostID) String() string { return p.id }

// IsZero reports whether the PostID is the zero value (uninitialized).
func (p PostID) IsZero() bool { return p.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (p PostID) MarshalText() ([]byte, error) {
	if p.id == "" {
		return []byte{}, nil
	}
	return []byte(p.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Validates the
// token format. An empty input produces the zero value.
func (p *PostID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*p = PostID{}
		return nil
	}
	parsed, err := ParsePostID(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ReplyID is a validated reply identifier: the same opaque token format
// as PostID, scoped to a single post. A ReplyID is the only handle the
// original poster ever holds on a replier: the relay maps it back to
// the real identity, which never appears in message text.
type ReplyID struct {
	id string
}

// ParseReplyID validates and wraps a raw reply ID string.
func ParseReplyID(raw string) (ReplyID, error) {
	if err := validateToken(raw, "reply ID"); err != nil {
		return ReplyID{}, err
	}
	return ReplyID{id: raw}, nil
}

// String returns the reply ID string (e.g., "XYZ789").
func (r ReplyID) String() string { return r.id }

// IsZero reports whether the ReplyID is the zero value (uninitialized).
func (r ReplyID) IsZero() bool { return r.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (r ReplyID) MarshalText() ([]byte, error) {
	if r.id == "" {
		return []byte{}, nil
	}
	return []byte(r.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Validates the
// token format. An empty input produces the zero value.
func (r *ReplyID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*r = ReplyID{}
		return nil
	}
	parsed, err := ParseReplyID(string(data))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ReplyTarget is the parsed form of a reply addressing token: either a
// bare post ID ("ABC123") or a composite post-and-reply token
// ("ABC123_XYZ789"). The composite form is how the original poster
// addresses a specific prior replier.
type ReplyTarget struct {
	Post  PostID
	Reply ReplyID // zero when the token was a bare post ID
}

// ParseReplyTarget parses a reply addressing token. The token is split
// on a single replySeparator; both halves must satisfy the board token
// format. More than one separator is an error.
func ParseReplyTarget(raw string) (ReplyTarget, error) {
	if raw == "" {
		return ReplyTarget{}, fmt.Errorf("empty reply target")
	}

	parts := strings.Split(raw, replySeparator)
	switch len(parts) {
	case 1:
		postID, err := ParsePostID(parts[0])
		if err != nil {
			return ReplyTarget{}, err
		}
		return ReplyTarget{Post: postID}, nil
	case 2:
		postID, err := ParsePostID(parts[0])
		if err != nil {
			return ReplyTarget{}, err
		}
		replyID, err := ParseReplyID(parts[1])
		if err != nil {
			return ReplyTarget{}, err
		}
		return ReplyTarget{Post: postID, Reply: replyID}, nil
	default:
		return ReplyTarget{}, fmt.Errorf("reply target %q has more than one %q separator", raw, replySeparator)
	}
}

// IsComposite reports whether the target names a specific reply.
func (t ReplyTarget) IsComposite() bool { return !t.Reply.IsZero() }

// String returns the token form of the target: bare post ID, or
// post and reply IDs joined by the separator.
func (t ReplyTarget) String() string {
	if t.Reply.IsZero() {
		return t.Post.String()
	}
	return t.Post.String() + replySeparator + t.Reply.String()
}

// CompositeToken joins a post ID and reply ID into the composite
// addressing form. Used when building the reply-back hint sent to the
// original poster.
func CompositeToken(post PostID, reply ReplyID) string {
	return post.String() + replySeparator + reply.String()
}
