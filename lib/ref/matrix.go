// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// parsePrefixedID validates a Matrix identifier of the form
// <sigil>localpart:server and returns its parts. Used for user IDs
// ('@') and room aliases ('#').
func parsePrefixedID(raw string, sigil byte, label string) (localpart, server string, err error) {
	if raw == "" {
		return "", "", fmt.Errorf("empty %s", label)
	}
	if raw[0] != sigil {
		return "", "", fmt.Errorf("%s must start with %q: %q", label, string(sigil), raw)
	}

	colonIndex := strings.IndexByte(raw[1:], ':')
	if colonIndex < 0 {
		return "", "", fmt.Errorf("%s missing ':server' suffix: %q", label, raw)
	}
	if colonIndex == 0 {
		return "", "", fmt.Errorf("%s has empty localpart: %q", label, raw)
	}

	localpart = raw[1 : 1+colonIndex]
	server = raw[1+colonIndex+1:]
	if server == "" {
		return "", "", fmt.Errorf("%s has empty server name: %q", label, raw)
	}
	return localpart, server, nil
}
