package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	intconfig "storefront/internal/config"
	intdb "storefront/internal/db"
)

// KVStore is the key-value side channel used to carry session state across
// restarts.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

const kvTable = "kv_store"

// KVRepository stores entries in a SQL table. Dialect selects the upsert and
// schema flavour (mysql or sqlite).
type KVRepository struct {
	DB      *sql.DB
	Dialect string
}

func (r KVRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r KVRepository) dialect() string {
	return intdb.NormalizeDialect(r.Dialect)
}

// EnsureSchema creates the table when it is missing.
func (r KVRepository) EnsureSchema(ctx context.Context) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	if intdb.HasTable(ctx, db, r.dialect(), kvTable) {
		return nil
	}

	ddl := `
		CREATE TABLE IF NOT EXISTS ` + kvTable + ` (
			k VARCHAR(191) NOT NULL PRIMARY KEY,
			v MEDIUMTEXT NOT NULL,
			updated_at DATETIME NOT NULL
		) DEFAULT CHARSET=utf8mb4`
	if r.dialect() == intdb.DialectSQLite {
		ddl = `
		CREATE TABLE IF NOT EXISTS ` + kvTable + ` (
			k TEXT NOT NULL PRIMARY KEY,
			v TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", kvTable, err)
	}
	return nil
}

func (r KVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	db := r.db()
	if db == nil {
		return "", false, fmt.Errorf("database not connected")
	}

	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM `+kvTable+` WHERE k = ? LIMIT 1`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}

func (r KVRepository) Set(ctx context.Context, key, value string) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("database not connected")
	}

	query := `
		INSERT INTO ` + kvTable + ` (k, v, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = VALUES(updated_at)`
	if r.dialect() == intdb.DialectSQLite {
		query = `
		INSERT INTO ` + kvTable + ` (k, v, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`
	}
	if _, err := db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Remove deletes key; a missing key is not an error.
func (r KVRepository) Remove(ctx context.Context, key string) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM `+kvTable+` WHERE k = ?`, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// MemoryKV keeps entries in process memory; it is the default persistence.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: map[string]string{}}
}

func (s *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryKV) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
