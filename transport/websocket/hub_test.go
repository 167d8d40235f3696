package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/geocoin-game/game/engine"
)

func testState() *engine.GameState {
	return &engine.GameState{
		ConfigName: "test",
		Score:      2,
		Position:   engine.LatLng{Lat: 0.00055, Lng: 0.00055},
		PlayerCell: engine.GridCell{I: 5, J: 5},
		Message:    "2 points accumulated.",
	}
}

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}
	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}
	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
	client2 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}

	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	sessionID := "broadcast-test"

	client := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
	other := &Client{hub: hub, sessionID: "other", send: make(chan []byte, 256)}
	hub.registerClient(client)
	hub.registerClient(other)

	hub.BroadcastToSession(sessionID, testState())
	hub.broadcastMessage(<-hub.broadcast)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != sessionID {
			t.Errorf("Expected sessionID %s, got %s", sessionID, message.SessionID)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event %q, got %s", EventStateUpdate, message.Event)
		}
		if message.GameState.Score != 2 || message.GameState.PlayerCell != (engine.GridCell{I: 5, J: 5}) {
			t.Error("GameState not correctly transmitted")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No message received within timeout")
	}

	select {
	case <-other.send:
		t.Error("Client of another session should not receive the update")
	default:
	}
}

func TestHubBroadcastIgnoresSessionCase(t *testing.T) {
	hub := NewHub()

	client := &Client{hub: hub, sessionID: "ABCD", send: make(chan []byte, 256)}
	hub.registerClient(client)

	hub.BroadcastToSession("abcd", testState())
	hub.broadcastMessage(<-hub.broadcast)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event %q, got %s", EventStateUpdate, message.Event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Expected client on ABCD to receive broadcast for abcd")
	}

	hub.unregisterClient(client)
	if len(hub.sessions) != 0 {
		t.Errorf("Expected no sessions after unregister, got %d", len(hub.sessions))
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" {
			t.Errorf("Expected sessionID 'event-test', got %s", message.SessionID)
		}
		if message.Event != "custom-event" {
			t.Errorf("Expected event 'custom-event', got %s", message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message received within timeout")
	}
}

func TestHubBroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub()
	for i := 0; i < engine.WebSocketBufferSize+10; i++ {
		hub.BroadcastEvent("full", "tick", i)
	}
	if len(hub.broadcast) != engine.WebSocketBufferSize {
		t.Errorf("Expected queue capped at %d, got %d", engine.WebSocketBufferSize, len(hub.broadcast))
	}
}

func TestHubSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: "tick"})

	if _, exists := hub.sessions["slow"]; exists {
		t.Error("Client with a full send channel should be unregistered")
	}
}

func newWSServer(t *testing.T, hub *Hub, initial *engine.GameState) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID, initial)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestWebSocketInitialState(t *testing.T) {
	hub := runHub(t)
	server := newWSServer(t, hub, testState())

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=init-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var message Message
	if err := conn.ReadJSON(&message); err != nil {
		t.Fatalf("Failed to read initial state: %v", err)
	}
	if message.Event != EventStateUpdate || message.GameState == nil || message.GameState.Score != 2 {
		t.Errorf("Expected initial state_update, got %+v", message)
	}
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := runHub(t)
	server := newWSServer(t, hub, nil)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=msg-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Give time for registration
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastToSession("msg-test", testState())
	hub.BroadcastEvent("msg-test", EventGame, map[string]string{"type": "collect"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var first, second Message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	if first.SessionID != "msg-test" || first.GameState == nil {
		t.Fatalf("Expected state update for msg-test, got %+v", first)
	}
	if first.GameState.Position.Lat != 0.00055 || first.GameState.Message != "2 points accumulated." {
		t.Error("GameState not correctly received")
	}
	if second.Event != EventGame {
		t.Errorf("Expected %q event, got %q", EventGame, second.Event)
	}
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketCommands(t *testing.T) {
	hub := NewHub()
	received := make(chan Command, 4)
	hub.SetCommandHandler(func(ctx context.Context, sessionID string, cmd Command) error {
		if sessionID != "cmd" {
			t.Errorf("Expected session cmd, got %s", sessionID)
		}
		if cmd.Action == ActionUndo {
			return errors.New("no snapshot to restore")
		}
		received <- cmd
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := newWSServer(t, hub, nil)
	sender := dial(t, server, "cmd")
	other := dial(t, server, "cmd")

	// Give time for registration
	time.Sleep(50 * time.Millisecond)

	t.Run("command reaches handler", func(t *testing.T) {
		if err := sender.WriteMessage(websocket.TextMessage, []byte(`{"action":"collect","cell":"5,5","coin":"5:5#0"}`)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		select {
		case cmd := <-received:
			if cmd.Action != ActionCollect || cmd.Cell != "5,5" || cmd.Coin != "5:5#0" {
				t.Errorf("Unexpected command %+v", cmd)
			}
		case <-time.After(time.Second):
			t.Fatal("Handler was not called")
		}
	})

	tests := []struct {
		name     string
		payload  string
		expected string
	}{
		{"handler error", `{"action":"undo"}`, "no snapshot to restore"},
		{"invalid json", `not json`, "invalid command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sender.WriteMessage(websocket.TextMessage, []byte(tt.payload)); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			sender.SetReadDeadline(time.Now().Add(time.Second))
			var message Message
			if err := sender.ReadJSON(&message); err != nil {
				t.Fatalf("Failed to read error: %v", err)
			}
			data, _ := message.Data.(map[string]interface{})
			if message.Event != EventError || !strings.Contains(data["error"].(string), tt.expected) {
				t.Errorf("Expected error containing %q, got %+v", tt.expected, message)
			}
		})
	}

	t.Run("errors stay with the sender", func(t *testing.T) {
		hub.BroadcastToSession("cmd", testState())
		other.SetReadDeadline(time.Now().Add(time.Second))
		var message Message
		if err := other.ReadJSON(&message); err != nil {
			t.Fatalf("Failed to read: %v", err)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected the other client to see only the state update, got %+v", message)
		}
	})
}

func TestServeWSAfterStop(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	server := newWSServer(t, hub, nil)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=late"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed by a stopped hub")
	}
}
