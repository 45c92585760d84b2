// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

// Corkboardd is the moderated anonymous message board service. Users
// DM it `post` commands: submissions go to a moderation room for
// approval, approved posts are broadcast to the public board room, and
// replies are relayed in both directions through opaque tokens so
// neither side learns the other's identity.
//
// # Startup
//
// The service loads its configuration from --config (or the
// CORKBOARD_CONFIG environment variable) and its Matrix session from
// paths.state/session.json. When no session file exists it logs in
// with the CORKBOARD_USER and CORKBOARD_PASSWORD environment variables
// and writes the session file for subsequent restarts. It then
// resolves and joins the board and approval rooms, performs an initial
// /sync, and enters the incremental sync loop.
//
// # Command surface
//
//	post create <message>
//	post approve <post-id>
//	post close <post-id> [message]    (aliases: reject, decline)
//	post reply <post-id> <message>
//	post help
//
// Commands are accepted in any room except the public board room,
// which is broadcast-only. Room invites are auto-accepted so users can
// open a DM with the service at any time.
//
// # State
//
// Board state lives in a single zstd-compressed CBOR file under
// paths.state, rewritten atomically on every mutation. The file is the
// only place poster and replier identities exist.
package main
