// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

// goose keeps its dialect and base FS in package globals.
var migrateMu sync.Mutex

// SQL dialect names accepted by NewSQL.
const (
	DialectSQLite   = "sqlite"
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
)

type sqlDialect struct {
	driver string
	goose  string
	dir    string
	upsert string
	get    string
	del    string
	keys   string
}

var dialects = map[string]sqlDialect{
	DialectSQLite: {
		driver: "sqlite",
		goose:  "sqlite3",
		dir:    "migrations/sqlite",
		upsert: `INSERT INTO kv_store (store_key, payload, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(store_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		get:  `SELECT payload FROM kv_store WHERE store_key = ?`,
		del:  `DELETE FROM kv_store WHERE store_key = ?`,
		keys: `SELECT store_key FROM kv_store`,
	},
	DialectMySQL: {
		driver: "mysql",
		goose:  "mysql",
		dir:    "migrations/mysql",
		upsert: `INSERT INTO kv_store (store_key, payload, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`,
		get:  `SELECT payload FROM kv_store WHERE store_key = ?`,
		del:  `DELETE FROM kv_store WHERE store_key = ?`,
		keys: `SELECT store_key FROM kv_store`,
	},
	DialectPostgres: {
		driver: "pgx",
		goose:  "postgres",
		dir:    "migrations/postgres",
		upsert: `INSERT INTO kv_store (store_key, payload, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (store_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		get:  `SELECT payload FROM kv_store WHERE store_key = $1`,
		del:  `DELETE FROM kv_store WHERE store_key = $1`,
		keys: `SELECT store_key FROM kv_store`,
	},
}

// sqlitePragmas tune SQLite for a single writer with concurrent readers.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
}

// SQL stores keys as rows of the kv_store table.
type SQL struct {
	db      *sql.DB
	dialect sqlDialect
	closed  atomic.Bool
}

// NewSQL opens the database, applies pending migrations and returns the
// backend. For SQLite the DSN is a file path.
func NewSQL(ctx context.Context, dialect, dsn string) (*SQL, error) {
	d, ok := dialects[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	if dsn == "" {
		return nil, errors.New("database DSN is required")
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if dialect == DialectSQLite {
		// One connection avoids SQLITE_BUSY between pooled writers.
		db.SetMaxOpenConns(1)
		for _, pragma := range sqlitePragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
			}
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := migrate(db, d); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQL{db: db, dialect: d}, nil
}

func migrate(db *sql.DB, d sqlDialect) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(d.goose); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	if err := goose.Up(db, d.dir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Get reads a row.
func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return payload, nil
}

// Put upserts a row.
func (s *SQL) Put(ctx context.Context, key string, value []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrInvalidKey
	}
	if value == nil {
		value = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes a row.
func (s *SQL) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.del, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Keys lists keys with the given prefix. Filtering happens in Go so that
// LIKE escaping rules of the three dialects do not matter.
func (s *SQL) Keys(ctx context.Context, prefix string) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, s.dialect.keys)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := make([]string, 0)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	slices.Sort(keys)
	return keys, nil
}

// Close closes the database.
func (s *SQL) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying database for health checks.
func (s *SQL) DB() *sql.DB { return s.db }

// SQLite reports whether the database is SQLite, whose migrations also
// create the sessions table.
func (s *SQL) SQLite() bool { return s.dialect.driver == dialects[DialectSQLite].driver }

var _ Backend = (*SQL)(nil)
