// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

// Package database wraps the DuckDB connection and provides data access
// for predictions, feedback, album metadata and graph input tables.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/MikeStrusz/nmf-dashboard/internal/config"
	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
	"github.com/MikeStrusz/nmf-dashboard/internal/metrics"
)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens the DuckDB database and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Create the parent directory so a first run on a clean volume works.
	if dbDir := filepath.Dir(cfg.Path); dbDir != "" && dbDir != "." && cfg.Path != ":memory:" {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	// Auto-install/auto-load stays off so startup cannot hang on network
	// fetches in restricted environments.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}

	db.configureConnectionPool()

	if err := db.createTables(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Str("max_memory", cfg.MaxMemory).
		Msg("Database opened")

	return db, nil
}

// configureConnectionPool tunes the sql.DB pool. DuckDB is embedded, so a
// small pool is enough and avoids holding file handles open.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(4)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
}

// Conn returns the underlying SQL connection for packages that need direct
// access, such as the backup manager's EXPORT DATABASE call.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// query, queryRow and exec wrap the connection so every request-serving
// statement lands in the duckdb_query_duration_seconds histogram. The
// operation label is the SQL verb, the table label names the primary table.

func (db *DB) query(ctx context.Context, op, table, q string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, q, args...)
	metrics.ObserveDBQuery(op, table, time.Since(start), err)
	return rows, err
}

func (db *DB) queryRow(ctx context.Context, op, table, q string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, q, args...)
	// Row errors surface at Scan; only the duration is recorded here.
	metrics.ObserveDBQuery(op, table, time.Since(start), nil)
	return row
}

func (db *DB) exec(ctx context.Context, op, table, q string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx, q, args...)
	metrics.ObserveDBQuery(op, table, time.Since(start), err)
	return res, err
}

// Path returns the database file path from configuration.
func (db *DB) Path() string {
	return db.cfg.Path
}

// Checkpoint flushes the WAL so the database file on disk is consistent.
// The backup manager calls this before archiving.
func (db *DB) Checkpoint(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Close flushes and closes the database.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		logging.Warn().Err(err).Msg("Checkpoint before close failed")
	}
	return db.conn.Close()
}

// createTables creates the schema if it does not exist. DuckDB executes
// each DDL statement transactionally, so partial failures leave a usable
// database.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			artist    VARCHAR NOT NULL,
			album     VARCHAR NOT NULL,
			genres    VARCHAR,
			avg_score DOUBLE NOT NULL,
			week_of   DATE NOT NULL,
			PRIMARY KEY (artist, album, week_of)
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			artist     VARCHAR NOT NULL,
			album      VARCHAR NOT NULL,
			verdict    VARCHAR NOT NULL,
			review     VARCHAR,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (artist, album)
		)`,
		`CREATE TABLE IF NOT EXISTS public_feedback (
			id       UUID PRIMARY KEY,
			artist   VARCHAR NOT NULL,
			album    VARCHAR NOT NULL,
			verdict  VARCHAR NOT NULL,
			username VARCHAR NOT NULL,
			review   VARCHAR,
			ts       TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS album_covers (
			artist    VARCHAR NOT NULL,
			album     VARCHAR NOT NULL,
			cover_url VARCHAR NOT NULL,
			PRIMARY KEY (artist, album)
		)`,
		`CREATE TABLE IF NOT EXISTS album_links (
			artist      VARCHAR NOT NULL,
			album       VARCHAR NOT NULL,
			spotify_url VARCHAR NOT NULL,
			PRIMARY KEY (artist, album)
		)`,
		`CREATE TABLE IF NOT EXISTS nuked_albums (
			artist   VARCHAR NOT NULL,
			album    VARCHAR NOT NULL,
			reason   VARCHAR,
			nuked_at TIMESTAMP NOT NULL,
			PRIMARY KEY (artist, album)
		)`,
		`CREATE TABLE IF NOT EXISTS artist_ratings (
			artist          VARCHAR NOT NULL,
			playlist_origin VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS similar_artists (
			artist          VARCHAR NOT NULL,
			similar_artists VARCHAR NOT NULL,
			source          VARCHAR NOT NULL DEFAULT 'nmf'
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// closeQuietly closes a connection, logging rather than returning the error.
func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database connection")
	}
}
