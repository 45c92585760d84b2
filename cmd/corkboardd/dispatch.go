// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/corkboard/corkboard/lib/board"
	"github.com/corkboard/corkboard/lib/command"
	"github.com/corkboard/corkboard/lib/ref"
	"github.com/corkboard/corkboard/lib/service"
	"github.com/corkboard/corkboard/messaging"
)

// replySender posts a plain text message into a room. Satisfied by
// *messaging.Session.
type replySender interface {
	SendMessage(ctx context.Context, roomID ref.RoomID, content messaging.MessageContent) (string, error)
}

// dispatcher routes sync events to board operations. Commands are
// accepted from any room except the public board room: the relay's
// own broadcasts land there, and processing them would loop.
type dispatcher struct {
	relay     *board.Relay
	session   *messaging.Session
	sender    replySender
	botUserID ref.UserID
	boardRoom ref.RoomID
	logger    *slog.Logger
}

func newDispatcher(relay *board.Relay, session *messaging.Session, botUserID ref.UserID, boardRoom ref.RoomID, logger *slog.Logger) *dispatcher {
	return &dispatcher{
		relay:     relay,
		session:   session,
		sender:    session,
		botUserID: botUserID,
		boardRoom: boardRoom,
		logger:    logger,
	}
}

// handleSync processes one incremental sync response: accept pending
// invites, then dispatch message events in joined rooms.
func (d *dispatcher) handleSync(ctx context.Context, response *messaging.SyncResponse) {
	if len(response.Rooms.Invite) > 0 {
		service.AcceptInvites(ctx, d.session, response.Rooms.Invite, d.logger)
	}

	for roomID, room := range response.Rooms.Join {
		if roomID == d.boardRoom {
			continue
		}
		for _, event := range room.Timeline.Events {
			d.handleEvent(ctx, roomID, event)
		}
	}
}

func (d *dispatcher) handleEvent(ctx context.Context, roomID ref.RoomID, event messaging.Event) {
	if event.Type != "m.room.message" {
		return
	}
	if event.Sender == d.botUserID {
		return
	}
	body, ok := event.Content["body"].(string)
	if !ok {
		return
	}

	parsed, err := command.Parse(body)
	if err != nil {
		if errors.Is(err, command.ErrNotCommand) {
			return
		}
		d.respond(ctx, roomID, err.Error())
		return
	}

	switch cmd := parsed.(type) {
	case command.Create:
		_, err = d.relay.Create(ctx, event.Sender, cmd.Message)
	case command.Approve:
		err = d.relay.Approve(ctx, cmd.Post, event.Sender)
		if err == nil {
			d.respond(ctx, roomID, "Post "+cmd.Post.String()+" approved.")
		}
	case command.Close:
		err = d.relay.Close(ctx, cmd.Post, cmd.Message, event.Sender)
	case command.Reply:
		err = d.relay.Reply(ctx, cmd.Target, cmd.Message, event.Sender)
	case command.Help:
		d.respond(ctx, roomID, command.HelpText)
	}
	if err != nil {
		d.respond(ctx, roomID, userFacingError(err))
		d.logger.Debug("command failed",
			"room", roomID,
			"sender", event.Sender,
			"error", err)
	}
}

// userFacingError maps operation errors to reply text. The board
// sentinels carry text written for users; anything else is an internal
// failure and gets a generic message.
func userFacingError(err error) string {
	switch {
	case errors.Is(err, board.ErrNotFound),
		errors.Is(err, board.ErrForbidden),
		errors.Is(err, board.ErrInvalidTarget),
		errors.Is(err, board.ErrMalformedInput):
		return err.Error()
	}
	return "Something went wrong. Please try again later."
}

func (d *dispatcher) respond(ctx context.Context, roomID ref.RoomID, text string) {
	if _, err := d.sender.SendMessage(ctx, roomID, messaging.NewTextMessage(text)); err != nil {
		d.logger.Warn("sending reply",
			"room", roomID,
			"error", err)
	}
}
