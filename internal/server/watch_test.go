package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

func TestWatchFeed(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	_, created := do(t, srv, "POST", "/api/duel/create", map[string]any{"participant": 1})
	code := sessionCode(t, created)
	do(t, srv, "POST", "/api/duel/join", map[string]any{"participant": 2, "code": code})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + fmt.Sprintf("/api/duel/%d/watch", code)
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	readSnap := func() map[string]any {
		t.Helper()
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var snap map[string]any
		if err := json.Unmarshal(data, &snap); err != nil {
			t.Fatalf("decode %q: %v", data, err)
		}
		return snap
	}

	// current state arrives first
	snap := readSnap()
	if snap["status"] != "playing" {
		t.Fatalf("initial snapshot: %v", snap)
	}

	// a mutation pushes an update
	do(t, srv, "POST", "/api/duel/action", map[string]any{"participant": 1, "code": code, "choice": "rock"})
	snap = readSnap()
	state := snap["state"].(map[string]any)
	if chosen := state["chosen"].([]any); len(chosen) != 1 {
		t.Fatalf("update snapshot: %v", snap)
	}
}

func TestWatchUnknownSession(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/api/duel/123456/watch"
	if _, _, err := websocket.Dial(ctx, wsURL, nil); err == nil {
		t.Fatal("expected dial to fail for unknown session")
	}
}
