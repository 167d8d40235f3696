// Package websocket provides WebSocket transport for the coin cache game.
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read and a
// write goroutine; the hub's Run loop owns the client registry.
//
// Message Protocol:
//
// Server frames are JSON Messages:
//   - {"event": "state_update", "session_id": "...", "game_state": {...}}
//     after every mutating action and once on connect
//   - {"event": "game_event", "session_id": "...", "data": {...}} for
//     collect, deposit, spawn and similar events
//   - {"event": "error", "data": {"error": "...", "action": "..."}} sent
//     only to the client whose command failed
//
// When a CommandHandler is set, clients may send Commands:
//
//	{"action": "move", "direction": "north"}
//	{"action": "locate", "lat": 36.9895, "lng": -122.0628}
//	{"action": "collect", "cell": "5,5", "coin": "5:5#0"}
//	{"action": "deposit", "cell": "5,5"}
//	{"action": "snapshot"}
//	{"action": "undo"}
//
// Clients pick their session with the query parameter ?session=abc1.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetCommandHandler(handler)
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID, state)
//	hub.BroadcastToSession(sessionID, state)
package websocket
