// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/corkboard/corkboard/lib/board"
	"github.com/corkboard/corkboard/lib/clock"
	"github.com/corkboard/corkboard/lib/config"
	"github.com/corkboard/corkboard/lib/ref"
	"github.com/corkboard/corkboard/lib/service"
	"github.com/corkboard/corkboard/lib/store"
	"github.com/corkboard/corkboard/messaging"
)

func main() {
	if err := run(); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "corkboardd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("corkboardd", pflag.ContinueOnError)
	configPath := flagSet.String("config", "",
		"path to the configuration file (overrides CORKBOARD_CONFIG)")
	homeserverURL := flagSet.String("homeserver", "",
		"homeserver URL (overrides the configuration file)")
	logLevel := flagSet.String("log-level", "info",
		"log level: debug, info, warn, or error")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("parsing --log-level: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *homeserverURL != "" {
		cfg.Homeserver.URL = *homeserverURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := establishSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer session.CloseIdleConnections()

	botUserID, err := service.ValidateSession(ctx, session)
	if err != nil {
		return fmt.Errorf("validating session: %w", err)
	}
	logger.Info("session validated", "user_id", botUserID)

	boardRoom, err := resolveAndJoin(ctx, session, cfg.BoardRoomAlias())
	if err != nil {
		return fmt.Errorf("joining board room: %w", err)
	}
	approvalRoom, err := resolveAndJoin(ctx, session, cfg.ApprovalRoomAlias())
	if err != nil {
		return fmt.Errorf("joining approval room: %w", err)
	}
	logger.Info("rooms joined",
		"board_room", boardRoom,
		"approval_room", approvalRoom)

	moderators, err := cfg.ModeratorIDs()
	if err != nil {
		return err
	}

	boardStore, err := store.NewFileStore(cfg.StateFilePath())
	if err != nil {
		return err
	}
	messenger := messaging.NewMessenger(session, logger)
	relay, err := board.NewRelay(board.RelayConfig{
		Store:        boardStore,
		Messenger:    messenger,
		Moderators:   moderators,
		BoardRoom:    boardRoom,
		ApprovalRoom: approvalRoom,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	dispatcher := newDispatcher(relay, session, botUserID, boardRoom, logger)

	syncFilter := buildSyncFilter()
	sinceToken, initial, err := service.InitialSync(ctx, session, syncFilter)
	if err != nil {
		return fmt.Errorf("initial sync: %w", err)
	}
	service.AcceptInvites(ctx, session, initial.Rooms.Invite, logger)

	logger.Info("entering sync loop", "since", sinceToken)
	service.RunSyncLoop(ctx, session, service.SyncConfig{Filter: syncFilter},
		sinceToken, dispatcher.handleSync, clock.Real(), logger)

	logger.Info("shutting down")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// establishSession restores the saved session from the state directory,
// or performs a first-run password login using the CORKBOARD_USER and
// CORKBOARD_PASSWORD environment variables and saves the result.
func establishSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*messaging.Session, error) {
	_, session, err := service.LoadSession(cfg.Paths.State, cfg.Homeserver.URL, logger)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		logger.Warn("stored session unusable, logging in fresh", "error", err)
	}

	username := os.Getenv("CORKBOARD_USER")
	password := os.Getenv("CORKBOARD_PASSWORD")
	if username == "" || password == "" {
		return nil, fmt.Errorf("no stored session and CORKBOARD_USER/CORKBOARD_PASSWORD are not set")
	}

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: cfg.Homeserver.URL,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	session, err = client.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("logging in as %s: %w", username, err)
	}
	if err := service.SaveSession(cfg.Paths.State, cfg.Homeserver.URL, session); err != nil {
		logger.Warn("saving session", "error", err)
	}
	logger.Info("logged in", "user_id", session.UserID())
	return session, nil
}

func resolveAndJoin(ctx context.Context, session *messaging.Session, alias ref.RoomAlias) (ref.RoomID, error) {
	roomID, err := session.ResolveAlias(ctx, alias)
	if err != nil {
		return ref.RoomID{}, fmt.Errorf("resolving %s: %w", alias, err)
	}
	if _, err := session.JoinRoom(ctx, roomID); err != nil {
		return ref.RoomID{}, fmt.Errorf("joining %s: %w", alias, err)
	}
	return roomID, nil
}

// buildSyncFilter returns the /sync filter JSON. Only message events
// and membership changes matter to the service; presence and account
// data are suppressed entirely.
func buildSyncFilter() string {
	filter := map[string]any{
		"room": map[string]any{
			"timeline": map[string]any{
				"types": []string{"m.room.message"},
				"limit": 50,
			},
			"state": map[string]any{
				"types": []string{"m.room.member"},
			},
			"ephemeral": map[string]any{
				"types": []string{},
			},
		},
		"presence": map[string]any{
			"types": []string{},
		},
		"account_data": map[string]any{
			"types": []string{},
		},
	}
	data, err := json.Marshal(filter)
	if err != nil {
		panic(fmt.Sprintf("marshaling sync filter: %v", err))
	}
	return string(data)
}
