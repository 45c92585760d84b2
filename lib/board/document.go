// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import "github.com/corkboard/corkboard/lib/ref"

// Post is a single board submission. While unapproved it is visible
// only to its author and the moderators; once approved it is publicly
// known by ID, but the poster identity stays inside this struct: the
// store document is the only place the mapping exists.
type Post struct {
	// Poster is the real identity of the anonymous author.
	Poster ref.UserID `cbor:"poster"`

	// Message is the submitted text, stored verbatim. May span
	// multiple lines and contain markup; the relay never sanitizes
	// or truncates it.
	Message string `cbor:"message"`

	// Color is the display accent assigned at creation, a 24-bit RGB
	// value. Cosmetic only: it threads through every notice about
	// this post so readers can visually correlate a conversation.
	Color int `cbor:"color"`

	// Approved starts false and is set true exactly once by a
	// successful approve operation.
	Approved bool `cbor:"approved"`

	// Replies maps each reply ID to the real identity of the replier
	// behind it. A given replier keeps one stable reply ID for the
	// lifetime of the post.
	Replies map[ref.ReplyID]ref.UserID `cbor:"replies"`

	// CreatedAt records submission time as Unix seconds.
	// Informational; plays no part in routing.
	CreatedAt int64 `cbor:"created_at"`
}

// replyIDFor returns the existing reply ID bound to the given user on
// this post, or a zero ReplyID when the user has never replied. Linear
// scan: replies per post are few.
func (p *Post) replyIDFor(user ref.UserID) ref.ReplyID {
	for replyID, replier := range p.Replies {
		if replier == user {
			return replyID
		}
	}
	return ref.ReplyID{}
}

// Document is the full persisted board state. The Store owns it; the
// Relay reads and writes it wholesale.
type Document struct {
	Posts map[ref.PostID]*Post `cbor:"posts"`
}

// NewDocument returns an empty document with an initialized posts map.
func NewDocument() *Document {
	return &Document{Posts: make(map[ref.PostID]*Post)}
}

// Normalize repairs a partially populated document: a nil posts map
// (fresh or hand-edited state file) becomes an empty one. Stores call
// this after loading so the Relay never sees nil maps.
func (d *Document) Normalize() {
	if d.Posts == nil {
		d.Posts = make(map[ref.PostID]*Post)
	}
	for _, post := range d.Posts {
		if post.Replies == nil {
			post.Replies = make(map[ref.ReplyID]ref.UserID)
		}
	}
}

// accentColor derives the display accent for a post from its ID: the
// first three token symbols are scaled from their alphabet positions
// to the 0-255 range and packed as RGB. Deterministic, so tests can
// assert on it, and stable for the lifetime of the post.
func accentColor(postID ref.PostID) int {
	token := postID.String()
	component := func(c byte) int {
		var index int
		switch {
		case c >= 'A' && c <= 'Z':
			index = int(c - 'A')
		default:
			index = 26 + int(c-'0')
		}
		return index * 255 / (len(ref.TokenAlphabet) - 1)
	}
	return component(token[0])<<16 | component(token[1])<<8 | component(token[2])
}
