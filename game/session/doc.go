// Package session provides session management and persistence for the coin
// cache game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique, case-insensitive session ID generation
//   - Session persistence to JSON files or a SQLite database
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// SessionPersistence is implemented by FilePersistence and SQLitePersistence.
//
// Persistence:
//
// A session is stored as its metadata (ID, config ID, timestamps) plus the
// engine record: playerPoints, playerInventory, cacheCoins and playerPath.
// FilePersistence writes one document per session; SQLitePersistence keeps
// each record field in its own row keyed by field name. Loading is tolerant:
// a record that cannot be decoded is logged and the session starts from the
// world's initial state. Resetting a session deletes its stored record via
// Manager.Forget.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Printf("Warning: %v", err)
//	}
//
//	sess, err := manager.Create("", config)
//
// Cleanup:
//
// CleanupExpiredSessions saves idle sessions and evicts them from memory.
// Their records stay in storage and are loaded again on the next Get. A
// session whose save fails stays in memory.
package session
