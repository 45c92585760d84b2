// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/corkboard/corkboard/lib/clock"
	"github.com/corkboard/corkboard/lib/ref"
	"github.com/corkboard/corkboard/lib/testutil"
	"github.com/corkboard/corkboard/messaging"
)

func newSyncTestSession(t *testing.T, handler http.Handler) *messaging.Session {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: server.URL,
		Logger:        discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	userID, err := ref.ParseUserID("@corkboard:local")
	if err != nil {
		t.Fatalf("ParseUserID: %v", err)
	}
	return client.SessionFromToken(userID, "test-token")
}

func TestInitialSync(t *testing.T) {
	session := newSyncTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Query().Get("since") != "" {
			t.Error("initial sync must not send a since token")
		}
		json.NewEncoder(writer).Encode(map[string]any{"next_batch": "batch1"})
	}))

	nextBatch, response, err := InitialSync(context.Background(), session, "")
	if err != nil {
		t.Fatalf("InitialSync failed: %v", err)
	}
	if nextBatch != "batch1" {
		t.Errorf("next batch: got %q", nextBatch)
	}
	if response == nil {
		t.Fatal("response is nil")
	}
}

func TestRunSyncLoopAdvancesSinceToken(t *testing.T) {
	var requestCount atomic.Int64
	session := newSyncTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		count := requestCount.Add(1)
		since := request.URL.Query().Get("since")
		if want := fmt.Sprintf("batch%d", count-1); since != want {
			t.Errorf("request %d since token: got %q, want %q", count, since, want)
		}
		json.NewEncoder(writer).Encode(map[string]any{"next_batch": fmt.Sprintf("batch%d", count)})
	}))

	ctx, cancel := context.WithCancel(context.Background())
	handled := 0
	handler := func(ctx context.Context, response *messaging.SyncResponse) {
		handled++
		if handled == 3 {
			cancel()
		}
	}

	RunSyncLoop(ctx, session, SyncConfig{}, "batch0", handler, clock.Real(), discardLogger())

	if handled != 3 {
		t.Errorf("handler ran %d times, want 3", handled)
	}
}

func TestRunSyncLoopExitsOnCancelWhileRunning(t *testing.T) {
	var requestCount atomic.Int64
	session := newSyncTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		count := requestCount.Add(1)
		json.NewEncoder(writer).Encode(map[string]any{"next_batch": fmt.Sprintf("batch%d", count)})
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	responses := make(chan *messaging.SyncResponse, 1)
	done := make(chan struct{})
	go func() {
		RunSyncLoop(ctx, session, SyncConfig{}, "batch0", func(_ context.Context, response *messaging.SyncResponse) {
			select {
			case responses <- response:
			default:
			}
		}, clock.Real(), discardLogger())
		close(done)
	}()

	response := testutil.RequireReceive(t, responses, 5*time.Second, "first sync response")
	if response.NextBatch == "" {
		t.Error("response missing next_batch token")
	}

	cancel()
	testutil.RequireClosed(t, done, 5*time.Second, "sync loop exit after cancel")
}

func TestRunSyncLoopStopsOnCancelledContext(t *testing.T) {
	session := newSyncTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		t.Error("no request should be made with a cancelled context")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	RunSyncLoop(ctx, session, SyncConfig{}, "", func(context.Context, *messaging.SyncResponse) {
		t.Error("handler should not run")
	}, clock.Real(), discardLogger())
}

func TestAcceptInvites(t *testing.T) {
	var joined []string
	session := newSyncTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if strings.Contains(request.URL.Path, "bad:local") {
			writer.WriteHeader(http.StatusForbidden)
			writer.Write([]byte(`{"errcode":"M_FORBIDDEN","error":"no"}`))
			return
		}
		joined = append(joined, request.URL.Path)
		json.NewEncoder(writer).Encode(map[string]string{"room_id": "!good:local"})
	}))

	goodRoom, _ := ref.ParseRoomID("!good:local")
	badRoom, _ := ref.ParseRoomID("!bad:local")
	invites := map[ref.RoomID]messaging.InvitedRoom{
		goodRoom: {},
		badRoom:  {},
	}

	accepted := AcceptInvites(context.Background(), session, invites, discardLogger())
	if len(accepted) != 1 {
		t.Fatalf("accepted %d rooms, want 1 (failed join skipped)", len(accepted))
	}
	if accepted[0] != goodRoom {
		t.Errorf("accepted room: got %s", accepted[0])
	}
	if len(joined) != 1 {
		t.Errorf("server saw %d successful joins, want 1", len(joined))
	}
}
