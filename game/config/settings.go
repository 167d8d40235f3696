package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Session store backends
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Settings holds process-level settings read from the environment.
// Command-line flags default to these values.
type Settings struct {
	Host      string `env:"HOST" envDefault:"localhost"`
	Port      int    `env:"PORT" envDefault:"8080"`
	ConfigDir string `env:"CONFIG_DIR" envDefault:"configs"`
	Debug     bool   `env:"DEBUG"`

	Store       string `env:"STORE" envDefault:"file"`
	SessionsDir string `env:"SESSIONS_DIR" envDefault:"sessions"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"sessions.db"`

	AutosaveInterval time.Duration `env:"AUTOSAVE_INTERVAL" envDefault:"30s"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`

	// Underscore spelling of NGROK_AUTHTOKEN, also accepted
	NgrokAuthTokenAlt string `env:"NGROK_AUTH_TOKEN"`
}

// LoadSettings parses Settings from the environment
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if s.NgrokAuthToken == "" {
		s.NgrokAuthToken = s.NgrokAuthTokenAlt
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks settings that flags may have overridden
func (s *Settings) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	switch s.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("invalid store %q: expected %q or %q", s.Store, StoreFile, StoreSQLite)
	}
	if s.AutosaveInterval < 0 {
		return fmt.Errorf("invalid autosave interval %s", s.AutosaveInterval)
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("invalid session ttl %s", s.SessionTTL)
	}
	return nil
}

// Addr returns the host:port listen address
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
