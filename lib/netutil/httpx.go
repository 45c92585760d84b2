// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP I/O utilities for corkboard.
//
// The response helpers bound all body reads at MaxResponseSize to
// prevent unbounded memory allocation from a misbehaving homeserver.
// They are for JSON API responses, not for streaming transfers.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// MaxResponseSize is the bound on JSON API response body reads: 64 MB.
// Legitimate Matrix client-server responses are orders of magnitude
// smaller; the limit is generous so that it never interferes with a
// large initial sync.
const MaxResponseSize int64 = 64 << 20

// ReadResponse reads a JSON API response body up to MaxResponseSize
// bytes. Use instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a JSON API response body (up to MaxResponseSize
// bytes) and JSON-decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}
