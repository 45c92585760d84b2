// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "testing"

func TestParsePostID(t *testing.T) {
	valid := []string{"ABC123", "ZZZZZZ", "000000", "A1B2C3"}
	for _, raw := range valid {
		postID, err := ParsePostID(raw)
		if err != nil {
			t.Errorf("ParsePostID(%q) failed: %v", raw, err)
			continue
		}
		if postID.String() != raw {
			t.Errorf("ParsePostID(%q).String() = %q", raw, postID.String())
		}
	}

	invalid := []string{
		"",        // empty
		"ABC12",   // too short
		"ABC1234", // too long
		"abc123",  // lowercase
		"ABC-12",  // symbol outside alphabet
		"ABC 12",  // whitespace
		"ABC_12",  // separator is reserved
	}
	for _, raw := range invalid {
		if _, err := ParsePostID(raw); err == nil {
			t.Errorf("ParsePostID(%q) should have failed", raw)
		}
	}
}

func TestParseReplyTargetBare(t *testing.T) {
	target, err := ParseReplyTarget("ABC123")
	if err != nil {
		t.Fatalf("ParseReplyTarget failed: %v", err)
	}
	if target.Post.String() != "ABC123" {
		t.Errorf("post: got %q, want ABC123", target.Post)
	}
	if target.IsComposite() {
		t.Error("bare post ID should not be composite")
	}
	if target.String() != "ABC123" {
		t.Errorf("String() = %q, want ABC123", target.String())
	}
}

func TestParseReplyTargetComposite(t *testing.T) {
	target, err := ParseReplyTarget("ABC123_XYZ789")
	if err != nil {
		t.Fatalf("ParseReplyTarget failed: %v", err)
	}
	if target.Post.String() != "ABC123" {
		t.Errorf("post: got %q, want ABC123", target.Post)
	}
	if target.Reply.String() != "XYZ789" {
		t.Errorf("reply: got %q, want XYZ789", target.Reply)
	}
	if !target.IsComposite() {
		t.Error("composite token should report IsComposite")
	}
	if target.String() != "ABC123_XYZ789" {
		t.Errorf("String() = %q", target.String())
	}
}

func TestParseReplyTargetMalformed(t *testing.T) {
	invalid := []string{
		"",
		"ABC123_",        // empty reply half
		"_XYZ789",        // empty post half
		"ABC123_XYZ_789", // two separators
		"abc123",         // bad post token
		"ABC123_xyz789",  // bad reply token
	}
	for _, raw := range invalid {
		if _, err := ParseReplyTarget(raw); err == nil {
			t.Errorf("ParseReplyTarget(%q) should have failed", raw)
		}
	}
}

func TestCompositeToken(t *testing.T) {
	post, _ := ParsePostID("ABC123")
	reply, _ := ParseReplyID("XYZ789")
	if token := CompositeToken(post, reply); token != "ABC123_XYZ789" {
		t.Errorf("CompositeToken = %q", token)
	}
}
