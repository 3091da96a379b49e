package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{`
CREATE TABLE IF NOT EXISTS progress (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS sessions (
	prefix    TEXT PRIMARY KEY,
	last_seen INTEGER NOT NULL
)`,
}

// SQLiteBackend stores progress in a SQLite database shared by every session
// on the machine. Each write refreshes its session's last_seen; Purge removes
// whole sessions that have gone quiet.
type SQLiteBackend struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the progress database at path.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	// One writer keeps Take's read-then-delete atomic without BEGIN IMMEDIATE.
	db.SetMaxOpenConns(1)
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: creating schema: %v", ErrStorageUnavailable, err)
		}
	}
	return &SQLiteBackend{db: db, now: time.Now}, nil
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM progress WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return v, true, nil
}

func (b *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	defer tx.Rollback()

	now := b.now().Unix()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO progress (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := touchSession(ctx, tx, sessionPrefix(key), now); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// touchSession records activity for the session owning prefix.
func touchSession(ctx context.Context, tx *sql.Tx, prefix string, now int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (prefix, last_seen) VALUES (?, ?)
		ON CONFLICT(prefix) DO UPDATE SET last_seen = MAX(last_seen, excluded.last_seen)`,
		prefix, now)
	return err
}

func (b *SQLiteBackend) Take(ctx context.Context, key string) (string, bool, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("taking %s: %w", key, err)
	}
	defer tx.Rollback()

	var v string
	err = tx.QueryRowContext(ctx, `SELECT value FROM progress WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("taking %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM progress WHERE key = ?`, key); err != nil {
		return "", false, fmt.Errorf("taking %s: %w", key, err)
	}
	if err := touchSession(ctx, tx, sessionPrefix(key), b.now().Unix()); err != nil {
		return "", false, fmt.Errorf("taking %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("taking %s: %w", key, err)
	}
	return v, true, nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deleting progress: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	prefixes := make(map[string]bool)
	for i, k := range keys {
		args[i] = k
		prefixes[sessionPrefix(k)] = true
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM progress WHERE key IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("deleting progress: %w", err)
	}
	now := b.now().Unix()
	for prefix := range prefixes {
		if err := touchSession(ctx, tx, prefix, now); err != nil {
			return fmt.Errorf("deleting progress: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("deleting progress: %w", err)
	}
	return nil
}

// Purge ends every session whose last write is older than before, deleting
// all of its rows together. Rows with no session record fall back to their
// own write time. It returns the number of progress rows removed.
func (b *SQLiteBackend) Purge(ctx context.Context, before time.Time) (int64, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("purging progress: %w", err)
	}
	defer tx.Rollback()

	cutoff := before.Unix()
	res, err := tx.ExecContext(ctx, `
		DELETE FROM progress
		WHERE EXISTS (
			SELECT 1 FROM sessions s
			WHERE s.last_seen < ? AND substr(progress.key, 1, length(s.prefix)) = s.prefix
		) OR (
			updated_at < ? AND NOT EXISTS (
				SELECT 1 FROM sessions s
				WHERE substr(progress.key, 1, length(s.prefix)) = s.prefix
			)
		)`, cutoff, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging progress: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE last_seen < ?`, cutoff); err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("purging progress: %w", err)
	}
	return res.RowsAffected()
}

func (b *SQLiteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
