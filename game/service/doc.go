// Package service provides the business logic layer for the coin cache game.
//
// The service package implements:
//   - Multi-session game management
//   - Movement, cache inspection and coin transfers per session
//   - Snapshots, undo and reset
//   - Export and import of a session's persisted record
//   - Configuration listing and loading
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, persistence and lifecycle.
// ConfigManager manages world configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP/TUI)
// and the game engine. Engines are not synchronized; the service serializes
// every engine access behind a single mutex, so concurrent clients acting on
// the same cache see one collect succeed and the rest report success=false.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, sessionInfo.ID, "north")
//
// Precondition failures (collecting a coin that is gone, depositing with an
// empty inventory, undo with no snapshot) are not errors: the ActionResult
// has Success false and the state is unchanged.
package service
