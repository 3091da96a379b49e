package progress

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// BackendConfig selects and configures a backend.
type BackendConfig struct {
	Backend    string        `yaml:"backend,omitempty"` // memory, file, sqlite, redis
	Dir        string        `yaml:"dir,omitempty"`     // file backend state directory
	SQLitePath string        `yaml:"sqlite_path,omitempty"`
	RedisAddr  string        `yaml:"redis_addr,omitempty"`
	RedisDB    int           `yaml:"redis_db,omitempty"`
	SessionTTL time.Duration `yaml:"session_ttl,omitempty"`
	// RedisPassword comes from the environment only.
	RedisPassword string `yaml:"-"`
}

// Open builds the configured backend for session. The memory backend is the
// fallback callers use when Open fails.
func Open(ctx context.Context, cfg BackendConfig, session string) (Backend, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryBackend(), nil
	case "file":
		return NewFileBackend(cfg.Dir, session)
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.Dir, "progress.db")
		}
		b, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		if cfg.SessionTTL > 0 {
			if _, err := b.Purge(ctx, time.Now().Add(-cfg.SessionTTL)); err != nil {
				b.Close()
				return nil, err
			}
		}
		return b, nil
	case "redis":
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
	default:
		return nil, fmt.Errorf("unknown progress backend %q", cfg.Backend)
	}
}
