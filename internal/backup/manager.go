// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/MikeStrusz/nmf-dashboard/internal/config"
	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
	"github.com/MikeStrusz/nmf-dashboard/internal/metrics"
)

// ErrBackupNotFound is returned for lookups of unknown backup IDs.
var ErrBackupNotFound = fmt.Errorf("backup not found")

// DatabaseInterface defines the database operations needed for backup.
type DatabaseInterface interface {
	// Path returns the path to the database file
	Path() string
	// Checkpoint forces a WAL checkpoint for a consistent backup
	Checkpoint(ctx context.Context) error
}

// Manager handles backup creation, listing, retention, and restore.
// Metadata lives in metadata.json alongside the archives; all metadata
// operations are protected by a mutex for concurrent admin requests.
type Manager struct {
	cfg     *config.BackupConfig
	db      DatabaseInterface
	dataDir string

	metadataFile string
	metadata     *metadataStore
	metadataMu   sync.RWMutex
}

// metadataStore holds all backup metadata persisted between runs.
type metadataStore struct {
	Backups       []*Backup  `json:"backups"`
	LastScheduled *time.Time `json:"last_scheduled,omitempty"`
}

// NewManager creates a backup manager. dataDir is the prediction CSV
// directory archived alongside the database.
func NewManager(cfg *config.BackupConfig, db DatabaseInterface, dataDir string) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("backup configuration is required")
	}

	if cfg.Enabled {
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create backup directory: %w", err)
		}
	}

	m := &Manager{
		cfg:          cfg,
		db:           db,
		dataDir:      dataDir,
		metadataFile: filepath.Join(cfg.Dir, "metadata.json"),
	}

	if err := m.loadMetadata(); err != nil {
		// First run, start with an empty store
		m.metadata = &metadataStore{Backups: make([]*Backup, 0)}
	}

	return m, nil
}

// CreateBackup archives the database and CSV data directory into a new
// tar.gz file, then applies the retention policy.
func (m *Manager) CreateBackup(ctx context.Context, trigger BackupTrigger) (*Backup, error) {
	if !m.cfg.Enabled {
		return nil, fmt.Errorf("backups are disabled")
	}

	start := time.Now()
	id := uuid.NewString()[:8]
	b := &Backup{
		ID:        id,
		Trigger:   trigger,
		Status:    StatusInProgress,
		CreatedAt: start.UTC(),
		FilePath:  filepath.Join(m.cfg.Dir, fmt.Sprintf("backup-%s-%s.tar.gz", start.UTC().Format("20060102-150405"), id)),
	}
	m.saveBackup(b)

	if err := m.createArchive(ctx, b); err != nil {
		b.Status = StatusFailed
		b.Error = err.Error()
		m.saveBackup(b)
		// Remove the partial archive, metadata keeps the failure record
		_ = os.Remove(b.FilePath)
		return nil, err
	}

	checksum, err := fileChecksum(b.FilePath)
	if err != nil {
		b.Status = StatusFailed
		b.Error = err.Error()
		m.saveBackup(b)
		return nil, fmt.Errorf("failed to checksum archive: %w", err)
	}

	now := time.Now().UTC()
	b.Checksum = checksum
	b.SizeBytes = fileSize(b.FilePath)
	b.Status = StatusCompleted
	b.CompletedAt = &now
	if trigger == TriggerScheduled {
		m.metadataMu.Lock()
		m.metadata.LastScheduled = &now
		m.metadataMu.Unlock()
	}
	m.saveBackup(b)

	metrics.BackupDuration.Observe(time.Since(start).Seconds())
	metrics.BackupLastSuccess.SetToCurrentTime()
	logging.Info().
		Str("backup_id", b.ID).
		Str("trigger", string(trigger)).
		Int64("size_bytes", b.SizeBytes).
		Dur("duration", time.Since(start)).
		Msg("backup completed")

	if err := m.applyRetention(); err != nil {
		logging.Warn().Err(err).Msg("backup retention pass failed")
	}

	return b, nil
}

// ListBackups returns all known backups, newest first.
func (m *Manager) ListBackups() []*Backup {
	m.metadataMu.RLock()
	defer m.metadataMu.RUnlock()

	out := make([]*Backup, len(m.metadata.Backups))
	copy(out, m.metadata.Backups)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// GetBackup returns the backup with the given ID.
func (m *Manager) GetBackup(id string) (*Backup, error) {
	m.metadataMu.RLock()
	defer m.metadataMu.RUnlock()

	for _, b := range m.metadata.Backups {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, ErrBackupNotFound
}

// saveBackup inserts or updates a backup in the metadata store.
func (m *Manager) saveBackup(backup *Backup) {
	m.metadataMu.Lock()
	defer m.metadataMu.Unlock()

	found := false
	for i, b := range m.metadata.Backups {
		if b.ID == backup.ID {
			m.metadata.Backups[i] = backup
			found = true
			break
		}
	}
	if !found {
		m.metadata.Backups = append(m.metadata.Backups, backup)
	}

	if err := m.saveMetadataLocked(); err != nil {
		logging.Warn().Err(err).Msg("failed to persist backup metadata")
	}
}

func (m *Manager) loadMetadata() error {
	m.metadataMu.Lock()
	defer m.metadataMu.Unlock()

	data, err := os.ReadFile(m.metadataFile)
	if err != nil {
		return err
	}

	var store metadataStore
	if err := json.Unmarshal(data, &store); err != nil {
		return err
	}

	m.metadata = &store
	return nil
}

// saveMetadataLocked writes metadata to disk. Caller must hold metadataMu.
func (m *Manager) saveMetadataLocked() error {
	data, err := json.MarshalIndent(m.metadata, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.metadataFile, data, 0o600)
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
