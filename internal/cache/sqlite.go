package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache persists entries in a single-table sqlite database.
// Survives restarts like DiskCache but keeps everything in one file.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLiteCache opens (or creates) the cache database at path. An empty
// path resolves to ~/.climateview/cache.db.
func NewSQLiteCache(path string, ttl time.Duration) (*SQLiteCache, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir := filepath.Join(home, ".climateview")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		path = filepath.Join(dir, "cache.db")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	c := &SQLiteCache{db: db, ttl: ttl}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	);`)
	return err
}

// Get retrieves a value, removing it if expired
func (c *SQLiteCache) Get(key string) ([]byte, bool) {
	var data []byte
	var expiresAt int64
	err := c.db.QueryRow(
		`SELECT data, expires_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&data, &expiresAt)
	if err != nil {
		return nil, false
	}

	if time.Now().Unix() > expiresAt {
		_, _ = c.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key)
		return nil, false
	}

	return data, true
}

// Set stores a value; ttl 0 falls back to the cache default
func (c *SQLiteCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	_, err := c.db.Exec(`
		INSERT INTO cache_entries (key, data, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			expires_at = excluded.expires_at
	`, key, value, time.Now().Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Delete removes a value from the cache
func (c *SQLiteCache) Delete(key string) error {
	_, err := c.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key)
	return err
}

// Clear removes all cache entries
func (c *SQLiteCache) Clear() error {
	_, err := c.db.Exec(`DELETE FROM cache_entries`)
	return err
}

// Close closes the underlying database
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
