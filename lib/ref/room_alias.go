// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package ref

// RoomAlias is a validated Matrix room alias (e.g., "#board:corkboard.local").
//
// Aliases are the human-readable room names used in configuration
// (board room, approval room). They are resolved to RoomIDs at startup
// via the directory API and never used for sending.
type RoomAlias struct {
	alias string
}

// ParseRoomAlias validates and wraps a raw Matrix room alias string.
// Returns an error if the string is empty, doesn't start with '#',
// has an empty localpart, or is missing the ':server' suffix.
func ParseRoomAlias(raw string) (RoomAlias, error) {
	_, _, err := parsePrefixedID(raw, '#', "room alias")
	if err != nil {
		return RoomAlias{}, err
	}
	return RoomAlias{alias: raw}, nil
}

// MatrixRoomAlias constructs a room alias (#localpart:server) from its
// parts. Use for configured room names (e.g., the board and approval
// rooms named by localpart in corkboard.yaml).
func MatrixRoomAlias(localpart, server string) RoomAlias {
	return RoomAlias{alias: "#" + localpart + ":" + server}
}

// String returns the full alias string (e.g., "#board:corkboard.local").
func (a RoomAlias) String() string { return a.alias }

// IsZero reports whether the RoomAlias is the zero value.
func (a RoomAlias) IsZero() bool { return a.alias == "" }
