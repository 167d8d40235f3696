// Package config provides configuration management for the coin cache game.
//
// The config package handles:
//   - Loading world configurations from JSON files
//   - Configuration validation and defaults
//   - Default configuration management
//   - Configuration discovery and listing
//   - Process settings read from the environment
//
// Configuration Format:
//
// World configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - Tile size in degrees and the visible neighborhood radius
//   - Cache spawn probability and the initial coin multiplier
//   - An optional generation salt producing a different world
//   - The start location
//   - Status messages shown to the player
//
// Omitted tuning fields take the classic values.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("classic")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// Settings:
//
// LoadSettings reads HOST, PORT, CONFIG_DIR, STORE, SESSIONS_DIR,
// SQLITE_PATH, AUTOSAVE_INTERVAL, SESSION_TTL and the NGROK_* variables.
package config
