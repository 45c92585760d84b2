// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/corkboard/corkboard/lib/board"
	"github.com/corkboard/corkboard/lib/ref"
)

func testDocument(t *testing.T) *board.Document {
	t.Helper()

	postID, err := ref.ParsePostID("ABC123")
	if err != nil {
		t.Fatalf("parsing post ID: %v", err)
	}
	poster, err := ref.ParseUserID("@alice:corkboard.local")
	if err != nil {
		t.Fatalf("parsing poster: %v", err)
	}
	replyID, err := ref.ParseReplyID("XYZ789")
	if err != nil {
		t.Fatalf("parsing reply ID: %v", err)
	}
	replier, err := ref.ParseUserID("@bob:corkboard.local")
	if err != nil {
		t.Fatalf("parsing replier: %v", err)
	}

	document := board.NewDocument()
	document.Posts[postID] = &board.Post{
		Poster:    poster,
		Message:   "hello\nboard **with markup**",
		Color:     0x12AB34,
		Approved:  true,
		Replies:   map[ref.ReplyID]ref.UserID{replyID: replier},
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC).Unix(),
	}
	return document
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.state")
	fileStore, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	original := testDocument(t)
	if err := fileStore.Save(original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := fileStore.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, original) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, original)
	}
}

func TestFileStoreMissingFileIsEmptyDocument(t *testing.T) {
	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "missing.state"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	document, err := fileStore.Load()
	if err != nil {
		t.Fatalf("Load of missing file failed: %v", err)
	}
	if document.Posts == nil {
		t.Fatal("Posts map is nil, want empty")
	}
	if len(document.Posts) != 0 {
		t.Errorf("Posts has %d entries, want 0", len(document.Posts))
	}
}

func TestFileStoreCreatesStateDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "board.state")
	fileStore, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := fileStore.Save(board.NewDocument()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("state file not created: %v", err)
	}
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	directory := t.TempDir()
	fileStore, err := NewFileStore(filepath.Join(directory, "board.state"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := fileStore.Save(testDocument(t)); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatalf("reading state directory: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, len(entries))
		for i, entry := range entries {
			names[i] = entry.Name()
		}
		t.Errorf("state directory has %v, want only board.state", names)
	}
}

func TestFileStoreDeterministicBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.state")
	fileStore, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	document := testDocument(t)
	if err := fileStore.Save(document); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading first write: %v", err)
	}

	// Save the logically identical document loaded back from disk.
	reloaded, err := fileStore.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := fileStore.Save(reloaded); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading second write: %v", err)
	}

	if string(first) != string(second) {
		t.Error("unchanged document produced different file bytes")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	memoryStore := NewMemoryStore()

	original := testDocument(t)
	if err := memoryStore.Save(original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := memoryStore.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, original) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, original)
	}

	// Mutating the loaded copy must not leak into the stored snapshot.
	for postID := range loaded.Posts {
		loaded.Posts[postID].Message = "mutated"
	}
	reloaded, err := memoryStore.Load()
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	for _, post := range reloaded.Posts {
		if post.Message == "mutated" {
			t.Error("mutation of a loaded copy leaked into the store")
		}
	}
}
