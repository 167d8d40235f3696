// Package mcp exposes the coin cache game to AI agents over the Model
// Context Protocol.
//
// Client is a thin proxy: every tool call becomes a REST request against
// the api package, so an agent sees exactly the state a browser or the
// terminal client would.
//
// Tools:
//   - create_session, get_session, list_sessions, list_configs
//   - game_state: position, score, inventory and a map of nearby caches
//   - move, locate, neighborhood
//   - inspect_cache, collect, deposit
//   - save_snapshot, undo, reset_game
//   - game_instructions
//
// Transport Modes:
//   - Stdio via server.ServeStdio(client.GetMCPServer())
//   - HTTP via client.GetMCPServer().HandleMessage on the /mcp route
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
