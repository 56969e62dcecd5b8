// Package cache stores generated docstrings keyed by node content so
// unchanged nodes skip the provider round-trip on later runs.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Cache is a SQLite-backed docstring cache. All methods are safe to call
// on a nil receiver, which behaves as an always-miss cache.
type Cache struct {
	db  *sql.DB
	log *zap.Logger
}

// Open initializes the cache database at the given path, creating parent
// directories as needed.
func Open(path string, log *zap.Logger) (*Cache, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS docstrings (
		key TEXT PRIMARY KEY,
		doc TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Cache{db: db, log: log}, nil
}

// Key derives the cache key for a node request. Any change to the node's
// code, the requested style or the provider/model pair invalidates it.
func Key(code, style, provider, model string) string {
	h := sha256.New()
	for _, part := range []string{code, style, provider, model} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get looks up a cached docstring. Failures degrade to a miss.
func (c *Cache) Get(key string) (string, bool) {
	if c == nil || c.db == nil {
		return "", false
	}
	var doc string
	err := c.db.QueryRow(`SELECT doc FROM docstrings WHERE key = ?`, key).Scan(&doc)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		c.log.Debug("cache lookup failed", zap.Error(err))
		return "", false
	}
	return doc, true
}

// Put stores a docstring. Failures are logged and ignored.
func (c *Cache) Put(key, doc string) {
	if c == nil || c.db == nil {
		return
	}
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO docstrings (key, doc, created_at) VALUES (?, ?, ?)`,
		key, doc, time.Now().Unix(),
	)
	if err != nil {
		c.log.Debug("cache write failed", zap.Error(err))
	}
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
