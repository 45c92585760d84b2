// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"errors"
	"strings"
	"unicode"

	"github.com/corkboard/corkboard/lib/board"
	"github.com/corkboard/corkboard/lib/ref"
)

// Command is a parsed board command. The concrete type is one of
// Create, Approve, Close, Reply, or Help.
type Command interface {
	isCommand()
}

// Create submits a new post with the given message text. The text is
// everything after the subcommand, whitespace and line breaks intact.
type Create struct {
	Message string
}

// Approve marks the named post approved.
type Approve struct {
	Post ref.PostID
}

// Close closes the named post, optionally with a farewell message.
type Close struct {
	Post    ref.PostID
	Message string
}

// Reply relays a message to the target's anonymous counterpart.
type Reply struct {
	Target  ref.ReplyTarget
	Message string
}

// Help asks for the command overview.
type Help struct{}

func (Create) isCommand()  {}
func (Approve) isCommand() {}
func (Close) isCommand()   {}
func (Reply) isCommand()   {}
func (Help) isCommand()    {}

// ErrNotCommand marks text that does not start with the command verb.
// The dispatcher drops such messages silently.
var ErrNotCommand = errors.New("not a board command")

// UsageError is a parse failure on text that did address the command
// verb: a missing argument, an unknown subcommand, or a malformed
// token. The hint is user-facing and sent back verbatim.
type UsageError struct {
	Hint string
}

func (e *UsageError) Error() string { return e.Hint }

// Unwrap classifies every usage error as malformed input.
func (e *UsageError) Unwrap() error { return board.ErrMalformedInput }

// HelpText is the command overview sent in response to `post help`
// (and to a bare `post`).
const HelpText = "post\n" +
	" ├ create <message>                Submit a post for approval\n" +
	" ├ approve <post-id>               Moderators only: approve a post\n" +
	" ├ reply <post-id> <message>       Reply to a post anonymously\n" +
	" │       (post authors address a replier as <post-id>_<reply-id>)\n" +
	" └ close <post-id> [message]       Close a post, message optional\n" +
	"                                   aliases: reject, decline"

// Parse parses a direct-message body into a Command. It returns
// ErrNotCommand when the text does not start with the "post" verb,
// and a *UsageError when it does but the rest is unusable.
func Parse(text string) (Command, error) {
	verb, rest := splitWord(text)
	if !strings.EqualFold(verb, "post") {
		return nil, ErrNotCommand
	}

	subcommand, rest := splitWord(rest)
	switch strings.ToLower(subcommand) {
	case "", "help":
		return Help{}, nil

	case "create":
		if strings.TrimSpace(rest) == "" {
			return nil, &UsageError{Hint: "usage: `post create <message>`"}
		}
		return Create{Message: rest}, nil

	case "approve":
		token, trailing := splitWord(rest)
		if token == "" || strings.TrimSpace(trailing) != "" {
			return nil, &UsageError{Hint: "usage: `post approve <post-id>`"}
		}
		postID, err := ref.ParsePostID(token)
		if err != nil {
			return nil, &UsageError{Hint: "that does not look like a post ID: " + err.Error()}
		}
		return Approve{Post: postID}, nil

	case "close", "reject", "decline":
		token, message := splitWord(rest)
		if token == "" {
			return nil, &UsageError{Hint: "usage: `post close <post-id> [message]`"}
		}
		postID, err := ref.ParsePostID(token)
		if err != nil {
			return nil, &UsageError{Hint: "that does not look like a post ID: " + err.Error()}
		}
		return Close{Post: postID, Message: message}, nil

	case "reply":
		token, message := splitWord(rest)
		if token == "" || strings.TrimSpace(message) == "" {
			return nil, &UsageError{Hint: "usage: `post reply <post-id> <message>`"}
		}
		target, err := ref.ParseReplyTarget(token)
		if err != nil {
			return nil, &UsageError{Hint: "that does not look like a reply target: " + err.Error()}
		}
		return Reply{Target: target, Message: message}, nil

	default:
		return nil, &UsageError{Hint: "unknown command `post " + subcommand + "`, try `post help`"}
	}
}

// splitWord splits text into its first whitespace-delimited word and
// the remainder. The remainder keeps its internal whitespace (message
// bodies are stored verbatim); only the separator run is consumed.
func splitWord(text string) (word, rest string) {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	boundary := strings.IndexFunc(text, unicode.IsSpace)
	if boundary < 0 {
		return text, ""
	}
	return text[:boundary], strings.TrimLeftFunc(text[boundary:], unicode.IsSpace)
}
