// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// UserID is a validated Matrix user ID (e.g., "@alice:corkboard.local").
//
// A Matrix user ID always starts with '@' and contains a ':' separating
// the localpart from the server name. This is also the relay's notion
// of an actor identity: posters, repliers, and moderators are all
// UserIDs. The relay stores UserIDs in its document but never places
// them in outbound message text: anonymity rests on that.
type UserID struct {
	id string
}

// ParseUserID validates and wraps a raw Matrix user ID string.
// Returns an error if the string is empty, doesn't start with '@',
// has an empty localpart, or is missing the ':server' suffix.
func ParseUserID(raw string) (UserID, error) {
	_, _, err := parsePrefixedID(raw, '@', "Matrix user ID")
	if err != nil {
		return UserID{}, err
	}
	return UserID{id: raw}, nil
}

// MatrixUserID constructs a Matrix user ID (@localpart:server) from its
// parts. Use for configured identities (e.g., moderators named by
// localpart in corkboard.yaml).
func MatrixUserID(localpart, server string) UserID {
	return UserID{id: "@" + localpart + ":" + server}
}

// String returns the full user ID string (e.g., "@alice:corkboard.local").
func (u UserID) String() string { return u.id }

// IsZero reports whether the UserID is the zero value (uninitialized).
func (u UserID) IsZero() bool { return u.id == "" }

// Localpart returns the localpart portion of the user ID (without the
// '@' prefix or ':server' suffix). Panics if called on a zero value.
func (u UserID) Localpart() string {
	if u.id == "" {
		panic("UserID.Localpart called on zero value")
	}
	localpart, _, err := parsePrefixedID(u.id, '@', "Matrix user ID")
	if err != nil {
		// UserID was validated at construction: this is unreachable.
		panic(fmt.Sprintf("UserID.Localpart: internal error parsing %q: %v", u.id, err))
	}
	return localpart
}

// MarshalText implements encoding.TextMarshaler for JSON, CBOR, and
// other text-based serialization formats.
func (u UserID) MarshalText() ([]byte, error) {
	if u.id == "" {
		return []byte{}, nil
	}
	return []byte(u.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Validates the
// user ID format. An empty input produces the zero value.
func (u *UserID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*u = UserID{}
		return nil
	}
	parsed, err := ParseUserID(string(data))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
