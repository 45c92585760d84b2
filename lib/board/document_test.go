// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"testing"

	"github.com/corkboard/corkboard/lib/ref"
)

func TestNormalizeRepairsNilMaps(t *testing.T) {
	postID, err := ref.ParsePostID("ABC123")
	if err != nil {
		t.Fatalf("ParsePostID: %v", err)
	}

	document := &Document{}
	document.Normalize()
	if document.Posts == nil {
		t.Fatal("Normalize left the posts map nil")
	}

	document.Posts[postID] = &Post{Message: "hello"}
	document.Normalize()
	if document.Posts[postID].Replies == nil {
		t.Fatal("Normalize left a reply map nil")
	}
}

func TestReplyIDFor(t *testing.T) {
	userID, err := ref.ParseUserID("@alice:corkboard.local")
	if err != nil {
		t.Fatalf("ParseUserID: %v", err)
	}
	replyID, err := ref.ParseReplyID("XYZ789")
	if err != nil {
		t.Fatalf("ParseReplyID: %v", err)
	}
	otherID, err := ref.ParseUserID("@bob:corkboard.local")
	if err != nil {
		t.Fatalf("ParseUserID: %v", err)
	}

	post := &Post{Replies: map[ref.ReplyID]ref.UserID{replyID: userID}}
	if got := post.replyIDFor(userID); got != replyID {
		t.Errorf("replyIDFor(known replier): got %q, want %q", got, replyID)
	}
	if got := post.replyIDFor(otherID); !got.IsZero() {
		t.Errorf("replyIDFor(stranger): got %q, want zero", got)
	}
}

func TestAccentColor(t *testing.T) {
	tests := []struct {
		token string
		want  int
	}{
		// 'A' is index 0, '9' is index 35; full scale is 0-255.
		{"AAAAAA", 0x000000},
		{"999999", 0xFFFFFF},
		// Only the first three symbols matter.
		{"AAA999", 0x000000},
		// 'Z' is index 25: 25*255/35 = 182 = 0xB6.
		{"ZZZAAA", 0xB6B6B6},
	}
	for _, test := range tests {
		postID, err := ref.ParsePostID(test.token)
		if err != nil {
			t.Fatalf("ParsePostID(%q): %v", test.token, err)
		}
		if got := accentColor(postID); got != test.want {
			t.Errorf("accentColor(%q): got %#06x, want %#06x", test.token, got, test.want)
		}
	}
}
