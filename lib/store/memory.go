// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"

	"github.com/corkboard/corkboard/lib/board"
	"github.com/corkboard/corkboard/lib/codec"
)

// MemoryStore is an in-memory board.Store for tests. It snapshots
// documents through the CBOR codec on both Load and Save, so callers
// never share map references with the stored copy: aliasing bugs in
// the Relay's load-mutate-save cycle surface in tests instead of
// hiding behind shared state.
type MemoryStore struct {
	snapshot []byte

	// SaveCount counts successful Save calls. Tests assert on it to
	// verify that failed operations perform no mutation.
	SaveCount int

	// FailLoad and FailSave force the next corresponding call to
	// return an error, for store-failure paths.
	FailLoad bool
	FailSave bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load decodes the current snapshot into a fresh document.
func (s *MemoryStore) Load() (*board.Document, error) {
	if s.FailLoad {
		return nil, fmt.Errorf("store: forced load failure")
	}
	if s.snapshot == nil {
		return board.NewDocument(), nil
	}
	var document board.Document
	if err := codec.Unmarshal(s.snapshot, &document); err != nil {
		return nil, fmt.Errorf("store: decoding snapshot: %w", err)
	}
	document.Normalize()
	return &document, nil
}

// Save encodes the document into the snapshot.
func (s *MemoryStore) Save(document *board.Document) error {
	if s.FailSave {
		return fmt.Errorf("store: forced save failure")
	}
	data, err := codec.Marshal(document)
	if err != nil {
		return fmt.Errorf("store: encoding document: %w", err)
	}
	s.snapshot = data
	s.SaveCount++
	return nil
}
