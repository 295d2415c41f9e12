// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

// Package cache provides a BadgerDB-backed memoization store for graph
// query results. Entries are keyed by the graph content fingerprint plus
// the query parameters, so a changed dataset never serves stale answers
// even before the TTL expires.
package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/MikeStrusz/nmf-dashboard/internal/metrics"
)

// Key prefixes for BadgerDB storage
const (
	dacusKeyPrefix  = "dacus:"
	figureKeyPrefix = "figure:"
)

// Store memoizes graph query results in BadgerDB. A nil-db Store is a
// valid disabled cache: every lookup misses and every write is a no-op.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// New opens a BadgerDB-backed store at path. An empty path returns a
// disabled store, which is useful for tests and cache-less deployments.
func New(path string, ttl time.Duration) (*Store, error) {
	if path == "" {
		return &Store{ttl: ttl}, nil
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs
	// Cached figures are small, keep the value log proportionate
	opts.ValueLogFileSize = 16 << 20 // 16MB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for graph cache: %w", err)
	}

	return &Store{db: db, ttl: ttl}, nil
}

// Enabled reports whether the store is backed by a database.
func (s *Store) Enabled() bool {
	return s.db != nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DacusKey builds the cache key for a distance query.
func DacusKey(fingerprint, artist string) string {
	return dacusKeyPrefix + fingerprint + ":" + artist
}

// FigureKey builds the cache key for a rendered path figure.
func FigureKey(fingerprint, artist string, seed int64, maxNeighbors int) string {
	return fmt.Sprintf("%s%s:%s:%d:%d", figureKeyPrefix, fingerprint, artist, seed, maxNeighbors)
}

// Get unmarshals the cached value for key into out. The boolean reports
// whether the lookup hit; misses and expired entries are not errors.
func (s *Store) Get(key string, out interface{}) (bool, error) {
	if s.db == nil {
		metrics.GraphCacheMisses.Inc()
		return false, nil
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		metrics.GraphCacheMisses.Inc()
		return false, nil
	}
	if err != nil {
		metrics.GraphCacheMisses.Inc()
		return false, fmt.Errorf("cache get: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		// A decode failure means the stored shape changed, treat as a miss
		metrics.GraphCacheMisses.Inc()
		return false, nil
	}

	metrics.GraphCacheHits.Inc()
	return true, nil
}

// Set stores value under key with the configured TTL. BadgerDB expires
// the entry itself, no sweeper goroutine is needed.
func (s *Store) Set(key string, value interface{}) error {
	if s.db == nil {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), raw)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// InvalidateAll drops every cached entry. Called after a data re-import,
// where the fingerprint change already prevents stale hits but the old
// entries would otherwise linger until TTL.
func (s *Store) InvalidateAll() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
