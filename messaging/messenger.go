// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/corkboard/corkboard/lib/board"
	"github.com/corkboard/corkboard/lib/ref"
)

// Messenger delivers board notices over Matrix. Notices to a user go
// to a per-user direct-message room, found or created on first contact
// and cached for the life of the process. Notices to a channel go to
// the room directly.
type Messenger struct {
	session *Session
	logger  *slog.Logger

	mu          sync.Mutex
	directRooms map[ref.UserID]ref.RoomID
}

// NewMessenger creates a Messenger on top of an authenticated session.
// If logger is nil, slog.Default() is used.
func NewMessenger(session *Session, logger *slog.Logger) *Messenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Messenger{
		session:     session,
		logger:      logger,
		directRooms: make(map[ref.UserID]ref.RoomID),
	}
}

// SendToUser delivers a notice to the user's direct-message room.
func (m *Messenger) SendToUser(ctx context.Context, user ref.UserID, text string, card board.Card) error {
	roomID, err := m.directRoom(ctx, user)
	if err != nil {
		return fmt.Errorf("messaging: direct room for %q: %w", user, err)
	}
	if _, err := m.session.SendMessage(ctx, roomID, renderNotice(text, card)); err != nil {
		return err
	}
	return nil
}

// SendToChannel delivers a notice to a shared room.
func (m *Messenger) SendToChannel(ctx context.Context, room ref.RoomID, text string, card board.Card) error {
	if _, err := m.session.SendMessage(ctx, room, renderNotice(text, card)); err != nil {
		return err
	}
	return nil
}

// ResolveUser confirms the user exists on the homeserver and returns
// their handle. A user the homeserver does not know fails here, before
// any room is created for them.
func (m *Messenger) ResolveUser(ctx context.Context, user ref.UserID) (board.UserHandle, error) {
	displayName, err := m.session.GetDisplayName(ctx, user)
	if err != nil {
		return board.UserHandle{}, err
	}
	return board.UserHandle{ID: user, DisplayName: displayName}, nil
}

// directRoom returns the direct-message room shared with the given
// user. On first contact it rediscovers an existing two-party room
// from the homeserver (so restarts do not pile up duplicate DMs) and
// creates one only when none exists. The result is cached for the
// life of the process.
func (m *Messenger) directRoom(ctx context.Context, user ref.UserID) (ref.RoomID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if roomID, cached := m.directRooms[user]; cached {
		return roomID, nil
	}

	if roomID, found := m.findDirectRoom(ctx, user); found {
		m.logger.Info("reusing direct room", "room_id", roomID, "user", user)
		m.directRooms[user] = roomID
		return roomID, nil
	}

	response, err := m.session.CreateRoom(ctx, CreateRoomRequest{
		Preset:   "trusted_private_chat",
		Invite:   []string{user.String()},
		IsDirect: true,
	})
	if err != nil {
		return ref.RoomID{}, err
	}

	m.logger.Info("created direct room", "room_id", response.RoomID)
	m.directRooms[user] = response.RoomID
	return response.RoomID, nil
}

// findDirectRoom scans the session's joined rooms for an existing
// two-party room with the user. Lookup failures are logged and treated
// as not-found; creating a fresh room is a correct fallback.
func (m *Messenger) findDirectRoom(ctx context.Context, user ref.UserID) (ref.RoomID, bool) {
	rooms, err := m.session.JoinedRooms(ctx)
	if err != nil {
		m.logger.Warn("listing joined rooms", "error", err)
		return ref.RoomID{}, false
	}

	self := m.session.UserID()
	for _, roomID := range rooms {
		members, err := m.session.GetRoomMembers(ctx, roomID)
		if err != nil {
			m.logger.Warn("listing room members", "room_id", roomID, "error", err)
			continue
		}
		if isDirectPair(members, self, user) {
			return roomID, true
		}
	}
	return ref.RoomID{}, false
}

// isDirectPair reports whether the membership list is exactly the
// service and the user, each joined or still invited. A room the user
// has left does not qualify; sending there would go nowhere.
func isDirectPair(members []RoomMember, self, user ref.UserID) bool {
	if len(members) != 2 {
		return false
	}
	seen := make(map[ref.UserID]bool, 2)
	for _, member := range members {
		if member.Membership != "join" && member.Membership != "invite" {
			return false
		}
		seen[member.UserID] = true
	}
	return seen[self] && seen[user]
}

// markdownRenderer converts message bodies to Matrix HTML. The
// configuration never changes and goldmark instances are safe to
// share, so one is initialized lazily and reused.
var (
	markdownRenderer     goldmark.Markdown
	markdownRendererOnce sync.Once
)

func getMarkdownRenderer() goldmark.Markdown {
	markdownRendererOnce.Do(func() {
		markdownRenderer = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// Posts are chat messages: a single newline is a line
			// break, not a paragraph join.
			goldmark.WithRendererOptions(html.WithHardWraps()),
		)
	})
	return markdownRenderer
}

// markdownToHTML renders markdown to HTML for the formatted_body of a
// Matrix message. On a rendering error the raw text is returned so the
// notice still carries its content.
func markdownToHTML(source string) string {
	var buffer bytes.Buffer
	if err := getMarkdownRenderer().Convert([]byte(source), &buffer); err != nil {
		return source
	}
	return strings.TrimSpace(buffer.String())
}

// renderNotice builds the Matrix message for a notice: a plain-text
// fallback plus an HTML rendering with the card title colored by the
// post's accent and the body converted from markdown.
func renderNotice(text string, card board.Card) MessageContent {
	var plainParts []string
	for _, part := range []string{text, card.Title, card.Body} {
		if part != "" {
			plainParts = append(plainParts, part)
		}
	}
	plain := strings.Join(plainParts, "\n")

	var formatted strings.Builder
	if card.Title != "" {
		formatted.WriteString(fmt.Sprintf("<p><strong><font color=\"#%06x\">%s</font></strong></p>",
			card.Color&0xFFFFFF, renderInline(card.Title)))
	}
	if card.Body != "" {
		formatted.WriteString(markdownToHTML(card.Body))
	}
	if formatted.Len() == 0 {
		return NewTextMessage(plain)
	}
	return NewFormattedMessage(plain, formatted.String())
}

// renderInline renders a one-line markdown fragment (command hints use
// backticks) without the wrapping paragraph element.
func renderInline(source string) string {
	rendered := markdownToHTML(source)
	rendered = strings.TrimPrefix(rendered, "<p>")
	rendered = strings.TrimSuffix(rendered, "</p>")
	return rendered
}
