package service

import (
	"context"
	"time"

	"github.com/wricardo/geocoin-game/game/engine"
)

// DefaultRadius asks Neighborhood for the world's configured radius
const DefaultRadius = -1

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SaveSession(ctx context.Context, sessionID string) error
	SaveAllSessions(ctx context.Context) error
	CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) int

	// Movement
	Move(ctx context.Context, sessionID, direction string) (*ActionResult, error)
	MoveTo(ctx context.Context, sessionID string, pos engine.LatLng) (*ActionResult, error)
	Neighborhood(ctx context.Context, sessionID string, radius int) (*NeighborhoodResult, error)

	// Caches and transfers
	GetCache(ctx context.Context, sessionID string, cell engine.GridCell) (*CacheResult, error)
	MaterializeCache(ctx context.Context, sessionID string, cell engine.GridCell) (*CacheResult, error)
	Collect(ctx context.Context, sessionID string, cell engine.GridCell, coin engine.Coin) (*ActionResult, error)
	Deposit(ctx context.Context, sessionID string, cell engine.GridCell) (*ActionResult, error)

	// Snapshots and lifecycle
	SaveSnapshot(ctx context.Context, sessionID string) (*ActionResult, error)
	Undo(ctx context.Context, sessionID string) (*ActionResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	ExportState(ctx context.Context, sessionID string) (*engine.Record, error)
	ImportState(ctx context.Context, sessionID string, record *engine.Record) (*engine.GameState, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
	SaveAllSessions() error
	CleanupExpiredSessions(maxAge time.Duration) int
	Forget(id string) error
}

// ConfigManager handles world configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
