// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/corkboard/corkboard/lib/board"
	"github.com/corkboard/corkboard/lib/codec"
)

// FileStore persists the board document to a single file: CBOR (Core
// Deterministic Encoding) compressed with zstd. The document is tiny,
// but post bodies are free text and compress well; more importantly
// the deterministic encoding means an unchanged document produces an
// identical file.
//
// FileStore performs no locking of its own: the Relay serializes all
// access. One process owns the file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at the given path. The parent
// directory is created if missing. The file itself is created lazily
// on first Save; Load of a nonexistent file returns an empty document.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("store: creating state directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads and decodes the document. A missing file is a fresh
// deployment, not an error.
func (s *FileStore) Load() (*board.Document, error) {
	compressed, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return board.NewDocument(), nil
		}
		return nil, fmt.Errorf("store: reading %s: %w", s.path, err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("store: creating zstd reader: %w", err)
	}
	defer decoder.Close()

	data, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("store: decompressing %s: %w", s.path, err)
	}

	var document board.Document
	if err := codec.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("store: decoding %s: %w", s.path, err)
	}
	document.Normalize()
	return &document, nil
}

// Save encodes the document and atomically replaces the state file.
// The temp file lives in the same directory so the rename never
// crosses a filesystem boundary.
func (s *FileStore) Save(document *board.Document) error {
	data, err := codec.Marshal(document)
	if err != nil {
		return fmt.Errorf("store: encoding document: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("store: creating zstd writer: %w", err)
	}
	compressed := encoder.EncodeAll(data, nil)
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("store: closing zstd writer: %w", err)
	}

	temp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(compressed); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("store: writing %s: %w", tempPath, err)
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("store: syncing %s: %w", tempPath, err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("store: closing %s: %w", tempPath, err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("store: replacing %s: %w", s.path, err)
	}
	return nil
}
