// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package command parses direct-message text into typed board
// commands. The grammar is a single "post" verb with subcommands:
//
//	post create <message>
//	post approve <post-id>
//	post close <post-id> [message]          (aliases: reject, decline)
//	post reply <post-id[_reply-id]> <message>
//	post help
//
// Parse returns a tagged Command value, ErrNotCommand for text that
// does not start with the verb (the dispatcher ignores it), or a
// usage error for text that names a subcommand but is missing its
// arguments.
package command
