// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/corkboard/corkboard/lib/board"
	"github.com/corkboard/corkboard/lib/ref"
)

// messengerTestServer fakes the homeserver endpoints the Messenger
// touches: joined-room listing, membership lookup, room creation, and
// message sending.
type messengerTestServer struct {
	t *testing.T

	joinedRooms  []string
	members      map[string][]RoomMemberEvent // room ID -> membership events
	roomsCreated []CreateRoomRequest
	messages     map[string][]MessageContent // room ID -> sent messages
}

func (s *messengerTestServer) handler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch {
		case request.URL.Path == "/_matrix/client/v3/joined_rooms":
			writeJSON(writer, map[string]any{"joined_rooms": s.joinedRooms})

		case strings.HasSuffix(request.URL.Path, "/members"):
			roomID := strings.TrimSuffix(strings.TrimPrefix(request.URL.Path, "/_matrix/client/v3/rooms/"), "/members")
			writeJSON(writer, map[string]any{"chunk": s.members[roomID]})

		case request.URL.Path == "/_matrix/client/v3/createRoom":
			var body CreateRoomRequest
			if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
				s.t.Fatalf("decoding createRoom request: %v", err)
			}
			s.roomsCreated = append(s.roomsCreated, body)
			writeJSON(writer, map[string]string{"room_id": "!dm" + string(rune('0'+len(s.roomsCreated))) + ":local"})

		case strings.Contains(request.URL.Path, "/send/m.room.message/"):
			parts := strings.SplitN(strings.TrimPrefix(request.URL.Path, "/_matrix/client/v3/rooms/"), "/", 2)
			roomID := parts[0]
			var content MessageContent
			if err := json.NewDecoder(request.Body).Decode(&content); err != nil {
				s.t.Fatalf("decoding message: %v", err)
			}
			s.messages[roomID] = append(s.messages[roomID], content)
			writeJSON(writer, map[string]string{"event_id": "$evt"})

		case strings.HasSuffix(request.URL.Path, "/displayname"):
			writeJSON(writer, map[string]string{"displayname": "Alice"})

		default:
			s.t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
			http.NotFound(writer, request)
		}
	})
}

func newTestMessenger(t *testing.T) (*Messenger, *messengerTestServer) {
	t.Helper()
	testServer := &messengerTestServer{t: t, messages: make(map[string][]MessageContent)}
	_, session := newTestSession(t, testServer.handler())
	return NewMessenger(session, nil), testServer
}

func TestSendToUserCreatesDirectRoomOnce(t *testing.T) {
	messenger, server := newTestMessenger(t)
	alice := testUserID(t, "@alice:local")
	card := board.Card{Title: "Post ABC123 has been closed", Color: 0x336699}

	if err := messenger.SendToUser(context.Background(), alice, "first", card); err != nil {
		t.Fatalf("SendToUser failed: %v", err)
	}
	if err := messenger.SendToUser(context.Background(), alice, "second", card); err != nil {
		t.Fatalf("second SendToUser failed: %v", err)
	}

	if len(server.roomsCreated) != 1 {
		t.Fatalf("created %d rooms, want 1 (cached after first contact)", len(server.roomsCreated))
	}
	created := server.roomsCreated[0]
	if !created.IsDirect {
		t.Error("direct room not flagged is_direct")
	}
	if created.Preset != "trusted_private_chat" {
		t.Errorf("preset: got %q", created.Preset)
	}
	if len(created.Invite) != 1 || created.Invite[0] != "@alice:local" {
		t.Errorf("invite list: %v", created.Invite)
	}

	sent := server.messages["!dm1:local"]
	if len(sent) != 2 {
		t.Fatalf("DM room got %d messages, want 2", len(sent))
	}
}

func TestSendToUserReusesExistingDirectRoom(t *testing.T) {
	messenger, server := newTestMessenger(t)
	alice := testUserID(t, "@alice:local")

	server.joinedRooms = []string{"!board:local", "!existing:local"}
	server.members = map[string][]RoomMemberEvent{
		// A shared room with a third member must not be mistaken for
		// the DM.
		"!board:local": {
			{StateKey: "@corkboard:local", Content: RoomMemberContent{Membership: "join"}},
			{StateKey: "@alice:local", Content: RoomMemberContent{Membership: "join"}},
			{StateKey: "@mod:local", Content: RoomMemberContent{Membership: "join"}},
		},
		"!existing:local": {
			{StateKey: "@corkboard:local", Content: RoomMemberContent{Membership: "join"}},
			{StateKey: "@alice:local", Content: RoomMemberContent{Membership: "join"}},
		},
	}

	if err := messenger.SendToUser(context.Background(), alice, "welcome back", board.Card{}); err != nil {
		t.Fatalf("SendToUser failed: %v", err)
	}

	if len(server.roomsCreated) != 0 {
		t.Fatalf("created %d rooms, want 0 (existing DM rediscovered)", len(server.roomsCreated))
	}
	if got := len(server.messages["!existing:local"]); got != 1 {
		t.Errorf("existing DM room got %d messages, want 1", got)
	}
}

func TestSendToUserIgnoresDepartedDirectRoom(t *testing.T) {
	messenger, server := newTestMessenger(t)
	alice := testUserID(t, "@alice:local")

	server.joinedRooms = []string{"!departed:local"}
	server.members = map[string][]RoomMemberEvent{
		"!departed:local": {
			{StateKey: "@corkboard:local", Content: RoomMemberContent{Membership: "join"}},
			{StateKey: "@alice:local", Content: RoomMemberContent{Membership: "leave"}},
		},
	}

	if err := messenger.SendToUser(context.Background(), alice, "hello again", board.Card{}); err != nil {
		t.Fatalf("SendToUser failed: %v", err)
	}

	if len(server.roomsCreated) != 1 {
		t.Fatalf("created %d rooms, want 1 (departed room must not be reused)", len(server.roomsCreated))
	}
	if got := len(server.messages["!dm1:local"]); got != 1 {
		t.Errorf("fresh DM room got %d messages, want 1", got)
	}
}

func TestSendToChannelRendersCard(t *testing.T) {
	messenger, server := newTestMessenger(t)
	roomID, _ := ref.ParseRoomID("!board:local")

	card := board.Card{
		Title: "To reply, DM me `post reply ABC123` followed by your message",
		Body:  "hello **board**",
		Color: 0xB62F00,
	}
	if err := messenger.SendToChannel(context.Background(), roomID, "New post ABC123", card); err != nil {
		t.Fatalf("SendToChannel failed: %v", err)
	}

	sent := server.messages["!board:local"]
	if len(sent) != 1 {
		t.Fatalf("got %d messages, want 1", len(sent))
	}
	message := sent[0]

	// Plain fallback carries everything.
	for _, fragment := range []string{"New post ABC123", "post reply ABC123", "hello **board**"} {
		if !strings.Contains(message.Body, fragment) {
			t.Errorf("plain body missing %q: %q", fragment, message.Body)
		}
	}

	// HTML rendering: accent-colored title with the hint as code, and
	// the markdown body converted.
	if message.Format != "org.matrix.custom.html" {
		t.Errorf("format: got %q", message.Format)
	}
	for _, fragment := range []string{`#b62f00`, "<code>post reply ABC123</code>", "<strong>board</strong>"} {
		if !strings.Contains(message.FormattedBody, fragment) {
			t.Errorf("formatted body missing %q: %q", fragment, message.FormattedBody)
		}
	}
}

func TestRenderNoticePlainOnly(t *testing.T) {
	message := renderNotice("just text", board.Card{})
	if message.Body != "just text" {
		t.Errorf("body: got %q", message.Body)
	}
	if message.Format != "" || message.FormattedBody != "" {
		t.Errorf("empty card should produce a plain message: %+v", message)
	}
}

func TestMarkdownToHTMLHardWraps(t *testing.T) {
	rendered := markdownToHTML("line one\nline two")
	if !strings.Contains(rendered, "<br") {
		t.Errorf("single newline should render as a line break: %q", rendered)
	}
}

func TestResolveUser(t *testing.T) {
	messenger, _ := newTestMessenger(t)
	alice := testUserID(t, "@alice:local")

	handle, err := messenger.ResolveUser(context.Background(), alice)
	if err != nil {
		t.Fatalf("ResolveUser failed: %v", err)
	}
	if handle.ID != alice || handle.DisplayName != "Alice" {
		t.Errorf("handle: %+v", handle)
	}
}
