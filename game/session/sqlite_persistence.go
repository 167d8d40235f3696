package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/wricardo/geocoin-game/game/engine"
	"github.com/wricardo/geocoin-game/game/service"
	_ "modernc.org/sqlite"
)

// storeTimeout bounds each storage call made through SessionPersistence
const storeTimeout = 5 * time.Second

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    config_name TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    last_accessed_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS session_state (
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    key TEXT NOT NULL,
    value BLOB NOT NULL,
    PRIMARY KEY (session_id, key)
);`

// SQLitePersistence implements SessionPersistence on a SQLite database.
// Each record field is stored as its own row under the field name.
type SQLitePersistence struct {
	sqlDB         *sql.DB
	configManager service.ConfigManager
}

// OpenSQLitePersistence opens and migrates a session store at path
func OpenSQLitePersistence(path string, configManager service.ConfigManager) (*SQLitePersistence, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := ensureForeignKeysEnabled(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLitePersistence{sqlDB: sqlDB, configManager: configManager}, nil
}

func ensureForeignKeysEnabled(db *sql.DB) error {
	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign key pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("sqlite foreign keys are disabled")
	}
	return nil
}

// Close releases the underlying SQLite connection
func (s *SQLitePersistence) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save persists a session
func (s *SQLitePersistence) Save(session *service.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	return s.SaveContext(ctx, session)
}

// SaveContext upserts the session row and replaces its record fields in
// one transaction
func (s *SQLitePersistence) SaveContext(ctx context.Context, session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	configID, err := configIDFromName(s.configManager, session.Config.Name)
	if err != nil {
		return fmt.Errorf("failed to get config ID: %w", err)
	}

	fields, err := engine.EncodeRecord(session.Engine.ExportState())
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	id := strings.ToLower(session.ID)
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO sessions (id, config_name, created_at, last_accessed_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    config_name = excluded.config_name,
		    last_accessed_at = excluded.last_accessed_at`,
		id,
		configID,
		timeToUnixMillis(session.CreatedAt),
		timeToUnixMillis(session.LastAccessedAt),
	); err != nil {
		return fmt.Errorf("put session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_state WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear session state: %w", err)
	}
	for _, key := range engine.RecordFields {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO session_state (session_id, key, value) VALUES (?, ?, ?)`,
			id, key, fields[key],
		); err != nil {
			return fmt.Errorf("put session state %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load retrieves a session by ID
func (s *SQLitePersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	return s.LoadContext(ctx, id)
}

// LoadContext reads a session and its record fields. A session without
// stored fields, or whose fields cannot be decoded, starts from the
// world's initial state.
func (s *SQLitePersistence) LoadContext(ctx context.Context, id string) (*service.Session, error) {
	id = strings.ToLower(id)

	var data PersistedSessionData
	var createdAt, lastAccessedAt int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, config_name, created_at, last_accessed_at FROM sessions WHERE id = ?`,
		id,
	).Scan(&data.ID, &data.ConfigName, &createdAt, &lastAccessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	data.CreatedAt = unixMillisToTime(createdAt)
	data.LastAccessedAt = unixMillisToTime(lastAccessedAt)

	fields, err := s.loadFields(ctx, id)
	if err != nil {
		return nil, err
	}

	return restoreSession(s.configManager, data, func() (*engine.Record, error) {
		if len(fields) == 0 {
			return nil, nil
		}
		return engine.DecodeRecord(fields)
	})
}

func (s *SQLitePersistence) loadFields(ctx context.Context, id string) (map[string][]byte, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT key, value FROM session_state WHERE session_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("list session state: %w", err)
	}
	defer rows.Close()

	fields := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan session state: %w", err)
		}
		fields[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list session state: %w", err)
	}
	return fields, nil
}

// Delete removes a session and its record fields
func (s *SQLitePersistence) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	return s.DeleteContext(ctx, id)
}

// DeleteContext removes a session and its record fields in one transaction
func (s *SQLitePersistence) DeleteContext(ctx context.Context, id string) error {
	id = strings.ToLower(id)
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_state WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete session state: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// ListAll returns all persisted session IDs
func (s *SQLitePersistence) ListAll() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}

// Exists checks if a session is stored
func (s *SQLitePersistence) Exists(id string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	var one int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&one)
	return err == nil
}

func timeToUnixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func unixMillisToTime(v int64) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(v).UTC()
}
