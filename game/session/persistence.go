package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wricardo/geocoin-game/game/engine"
	"github.com/wricardo/geocoin-game/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions.
// Record holds the engine record document; it is absent after a reset.
type PersistedSessionData struct {
	ID             string          `json:"id"`
	ConfigName     string          `json:"config_name"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	Record         json.RawMessage `json:"record,omitempty"`
}

// configIDFromName returns the config ID (filename without extension) from display name
func configIDFromName(configs service.ConfigManager, displayName string) (string, error) {
	list, err := configs.ListConfigs()
	if err != nil {
		return "", fmt.Errorf("failed to list configs: %w", err)
	}

	for _, config := range list {
		if config.Name == displayName {
			return config.ConfigID, nil
		}
	}

	// If not found, assume the displayName is already the config ID
	return displayName, nil
}

// restoreSession rebuilds a session from its stored parts. decode returns
// the stored record, or nil when none is stored. A malformed record is
// logged and the session starts from the world's initial state.
func restoreSession(configs service.ConfigManager, data PersistedSessionData, decode func() (*engine.Record, error)) (*service.Session, error) {
	gameConfig, err := configs.LoadConfig(data.ConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigName, err)
	}

	gameEngine, err := engine.NewEngine(gameConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}

	record, err := decode()
	switch {
	case errors.Is(err, engine.ErrMalformedRecord):
		log.Printf("Warning: Ignoring stored state for session %s: %v", data.ID, err)
	case err != nil:
		return nil, err
	case record != nil:
		if err := gameEngine.ImportState(record); err != nil {
			log.Printf("Warning: Ignoring stored state for session %s: %v", data.ID, err)
		}
	}
	gameEngine.Refresh()

	return &service.Session{
		ID:             data.ID,
		Engine:         gameEngine,
		Config:         gameConfig,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
