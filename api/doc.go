// Package api provides the HTTP REST API for the coin cache game.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                 create a session, body {"config_id": "classic"}
//   - GET    /api/sessions                 list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/unified         aggregate view (?sessionIds=a,b or ?configName=classic)
//   - GET    /api/sessions/{id}            session details
//   - DELETE /api/sessions/{id}            delete a session and its stored record
//
// Movement:
//   - GET  /api/sessions/{id}/state        full game state
//   - POST /api/sessions/{id}/move         body {"direction": "north"}
//   - POST /api/sessions/{id}/locate       body {"lat": 36.98, "lng": -122.06}
//   - GET  /api/sessions/{id}/neighborhood cells around the player (?radius=N)
//
// Caches (cell is "i,j"):
//   - GET  /api/sessions/{id}/caches/{cell}              inspect without materializing
//   - POST /api/sessions/{id}/caches/{cell}/materialize  spawn the cache if the cell has one
//   - POST /api/sessions/{id}/caches/{cell}/collect      body {"coin": "i:j#n"}
//   - POST /api/sessions/{id}/caches/{cell}/deposit      deposit the most recent coin
//
// Snapshots and persistence:
//   - POST /api/sessions/{id}/snapshot | undo | reset | save
//   - GET  /api/sessions/{id}/export      persisted record
//   - POST /api/sessions/{id}/import      replace state with a record
//
// Configuration:
//   - GET  /api/configs, GET /api/configs/{name}, POST /api/configs
//
// Other:
//   - GET /health
//   - GET /ws?session={id}                WebSocket state stream and commands
//
// A collect or deposit whose precondition fails is not an HTTP error: the
// response is 200 with "success": false and the state unchanged. Errors
// are returned as {"error": "..."} with 400 for bad input, 404 for unknown
// sessions, configs or cells without a cache, and 500 otherwise.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
