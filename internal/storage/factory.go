// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = DialectSQLite
	DriverMySQL    = DialectMySQL
	DriverPostgres = DialectPostgres
	DriverRedis    = "redis"
	DriverS3       = "s3"
)

// Drivers lists every supported driver.
var Drivers = []string{DriverMemory, DriverFile, DriverSQLite, DriverMySQL, DriverPostgres, DriverRedis, DriverS3}

// Config holds configuration for backend creation.
type Config struct {
	// Driver selects the backend.
	Driver string

	// Path is the data directory for the file driver, or the database file
	// for sqlite when DSN is empty.
	Path string

	// DSN is the database connection string for sqlite, mysql and postgres.
	DSN string

	// RedisURL and RedisPrefix configure the redis driver.
	RedisURL    string
	RedisPrefix string

	// S3 configures the s3 driver.
	S3 S3Options

	Logger *slog.Logger
}

// Open creates the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch cfg.Driver {
	case DriverMemory, "":
		b = NewMemory()
	case DriverFile:
		b, err = asBackend(NewFile(FileOptions{Dir: cfg.Path, Logger: cfg.Logger}))
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
			dsn = filepath.Join(cfg.Path, "charity.db")
		}
		b, err = asBackend(NewSQL(ctx, DialectSQLite, dsn))
	case DriverMySQL, DriverPostgres:
		b, err = asBackend(NewSQL(ctx, cfg.Driver, cfg.DSN))
	case DriverRedis:
		opts := DefaultRedisOptions()
		opts.URL = cfg.RedisURL
		if cfg.RedisPrefix != "" {
			opts.Prefix = cfg.RedisPrefix
		}
		b, err = asBackend(NewRedis(ctx, opts))
	case DriverS3:
		b, err = asBackend(NewS3(ctx, cfg.S3))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Driver, err)
	}
	return b, nil
}

// asBackend drops the typed nil a failed constructor returns.
func asBackend[B Backend](b B, err error) (Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}
