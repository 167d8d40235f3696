package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/geocoin-game/game/engine"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidPosition  = errors.New("invalid position")
	ErrInvalidRadius    = errors.New("invalid radius")
	ErrNoCache          = errors.New("no cache at cell")
)

// gameServiceImpl implements the GameService interface. The engines are
// not synchronized, so every engine access goes through mu. Calls that bump
// a session's access time hold the write lock.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", configName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     strings.TrimSuffix(configID, ".json"),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSessionNotFound, sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

func (s *gameServiceImpl) sessionInfo(session *Session) *SessionInfo {
	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}
}

// DeleteSession removes a session and its persisted record
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// SaveSession persists a session now
func (s *gameServiceImpl) SaveSession(ctx context.Context, sessionID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.sessions.Get(sessionID); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSessionNotFound, sessionID, err)
	}
	return s.sessions.Save(sessionID)
}

// SaveAllSessions persists every in-memory session
func (s *gameServiceImpl) SaveAllSessions(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessions.SaveAllSessions()
}

// CleanupExpiredSessions saves and evicts sessions idle for longer than
// maxAge
func (s *gameServiceImpl) CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.CleanupExpiredSessions(maxAge)
}

// getSession fetches a session for a command and bumps its access time.
// Callers hold mu for writing.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSessionNotFound, sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// Move steps the player one tile
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*ActionResult, error) {
	if !engine.ValidDirection(direction) {
		return nil, fmt.Errorf("%w: %q (use north, south, east or west)", ErrInvalidDirection, direction)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	before := sess.Engine.GetState().WorldCells
	success := sess.Engine.Move(direction)
	return s.moveResult(sess, success, before), nil
}

// MoveTo relocates the player to a reported position
func (s *gameServiceImpl) MoveTo(ctx context.Context, sessionID string, pos engine.LatLng) (*ActionResult, error) {
	if !engine.ValidLatLng(pos) {
		return nil, fmt.Errorf("%w: (%g, %g)", ErrInvalidPosition, pos.Lat, pos.Lng)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	before := sess.Engine.GetState().WorldCells
	success := sess.Engine.MoveTo(pos)
	return s.moveResult(sess, success, before), nil
}

func (s *gameServiceImpl) moveResult(sess *Session, success bool, cellsBefore int) *ActionResult {
	state := sess.Engine.GetState()
	result := &ActionResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
	}
	if success {
		pos := state.Position
		result.Events = append(result.Events, GameEvent{
			Type:      "move",
			Message:   fmt.Sprintf("Moved to cell %s", state.PlayerCell),
			Timestamp: time.Now(),
			Position:  &pos,
		})
		if spawned := state.WorldCells - cellsBefore; spawned > 0 {
			result.Events = append(result.Events, GameEvent{
				Type:      "spawn",
				Message:   fmt.Sprintf("%d new caches in range", spawned),
				Timestamp: time.Now(),
				Position:  &pos,
			})
		}
	}
	return result
}

// Neighborhood lists the cells around the player. DefaultRadius uses the
// world's configured radius.
func (s *gameServiceImpl) Neighborhood(ctx context.Context, sessionID string, radius int) (*NeighborhoodResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if radius == DefaultRadius {
		radius = sess.Config.NeighborhoodSize
	}
	if radius < 0 || radius > engine.MaxNeighborhoodSize {
		return nil, fmt.Errorf("%w: %d (must be between 0 and %d)", ErrInvalidRadius, radius, engine.MaxNeighborhoodSize)
	}

	result := &NeighborhoodResult{
		Center: sess.Engine.GetPlayerCell(),
		Radius: radius,
	}
	for _, cell := range sess.Engine.Neighborhood(radius) {
		nc := NeighborhoodCell{
			Cell:   cell,
			Key:    cell.Key(),
			Spawns: sess.Engine.SpawnsCache(cell),
		}
		if cache, ok := sess.Engine.GetCache(cell); ok {
			nc.Materialized = true
			nc.Coins = len(cache.Coins)
		}
		result.Cells = append(result.Cells, nc)
	}
	return result, nil
}

// GetCache describes the cache at cell without materializing it
func (s *gameServiceImpl) GetCache(ctx context.Context, sessionID string, cell engine.GridCell) (*CacheResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &CacheResult{
		Cell:   cell,
		Key:    cell.Key(),
		Spawns: sess.Engine.SpawnsCache(cell),
	}
	if cache, ok := sess.Engine.GetCache(cell); ok {
		view := sess.Engine.CacheView(cache)
		result.Materialized = true
		result.Cache = &view
	}
	return result, nil
}

// MaterializeCache mints the cache at cell if needed. Cells where the
// generator places no cache are rejected with ErrNoCache.
func (s *gameServiceImpl) MaterializeCache(ctx context.Context, sessionID string, cell engine.GridCell) (*CacheResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	_, already := sess.Engine.GetCache(cell)
	if !already && !sess.Engine.SpawnsCache(cell) {
		return nil, fmt.Errorf("%w %s", ErrNoCache, cell.Key())
	}

	view := sess.Engine.CacheView(sess.Engine.Materialize(cell))
	return &CacheResult{
		Cell:         cell,
		Key:          cell.Key(),
		Spawns:       sess.Engine.SpawnsCache(cell),
		Materialized: true,
		Cache:        &view,
	}, nil
}

// Collect moves coin from the cache at cell into the inventory
func (s *gameServiceImpl) Collect(ctx context.Context, sessionID string, cell engine.GridCell, coin engine.Coin) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	success := sess.Engine.Collect(cell, coin)
	result := s.transferResult(sess, success, cell, coin, "collect")
	return result, nil
}

// Deposit moves the most recently collected coin into the cache at cell
func (s *gameServiceImpl) Deposit(ctx context.Context, sessionID string, cell engine.GridCell) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	inventory := sess.Engine.GetInventory()
	var coin engine.Coin
	if len(inventory) > 0 {
		coin = inventory[len(inventory)-1]
	}

	success := sess.Engine.Deposit(cell)
	return s.transferResult(sess, success, cell, coin, "deposit"), nil
}

func (s *gameServiceImpl) transferResult(sess *Session, success bool, cell engine.GridCell, coin engine.Coin, kind string) *ActionResult {
	state := sess.Engine.GetState()
	result := &ActionResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
	}
	if cache, ok := sess.Engine.GetCache(cell); ok {
		view := sess.Engine.CacheView(cache)
		result.Cache = &view
	}
	if success {
		home := sess.Engine.Grid().Anchor(coin.Original)
		result.Coin = &engine.CoinView{Coin: coin, Label: coin.String(), Home: home}
		result.Events = append(result.Events, GameEvent{
			Type:      kind,
			Message:   state.Message,
			Timestamp: time.Now(),
		})
	}
	return result
}

// SaveSnapshot pushes a copy of the world onto the undo stack
func (s *gameServiceImpl) SaveSnapshot(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	depth := sess.Engine.SaveSnapshot()
	state := sess.Engine.GetState()
	return &ActionResult{
		Success:   true,
		GameState: state,
		Message:   state.Message,
		Events: []GameEvent{{
			Type:      "snapshot",
			Message:   fmt.Sprintf("Snapshot %d saved", depth),
			Timestamp: time.Now(),
		}},
	}, nil
}

// Undo restores the world from the most recent snapshot
func (s *gameServiceImpl) Undo(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	success := sess.Engine.Undo()
	state := sess.Engine.GetState()
	result := &ActionResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
	}
	if success {
		result.Events = append(result.Events, GameEvent{
			Type:      "undo",
			Message:   state.Message,
			Timestamp: time.Now(),
		})
	}
	return result, nil
}

// Reset returns the session to its initial state and deletes the
// persisted record
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.Reset()
	sess.Engine.Refresh()

	if err := s.sessions.Forget(sessionID); err != nil {
		log.Printf("Warning: Failed to delete persisted record for session %s: %v", sessionID, err)
	}

	return sess.Engine.GetState(), nil
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetState(), nil
}

// ExportState returns the persisted form of a session
func (s *gameServiceImpl) ExportState(ctx context.Context, sessionID string) (*engine.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.ExportState(), nil
}

// ImportState replaces a session's state with record and spawns the
// caches around the restored position
func (s *gameServiceImpl) ImportState(ctx context.Context, sessionID string, record *engine.Record) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Engine.ImportState(record); err != nil {
		return nil, err
	}
	sess.Engine.Refresh()

	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after import: %v", sessionID, err)
	}

	return sess.Engine.GetState(), nil
}

// ListConfigs returns available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}
