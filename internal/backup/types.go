// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

// Package backup provides disaster recovery for the dashboard's DuckDB
// database and prediction CSV archive.
//
// Archive layout:
//
//	backup-{timestamp}-{id}.tar.gz
//	├── database/nmf.duckdb        (checkpointed database file)
//	├── data/                      (prediction and pipeline CSVs)
//	└── backup-metadata.json       (backup details and per-file checksums)
//
// Retention removes completed backups past the configured age and count
// limits after every successful backup run.
package backup

import "time"

// BackupStatus represents the current state of a backup
type BackupStatus string

const (
	// StatusInProgress indicates the backup is currently running
	StatusInProgress BackupStatus = "in_progress"

	// StatusCompleted indicates the backup finished successfully
	StatusCompleted BackupStatus = "completed"

	// StatusFailed indicates the backup failed
	StatusFailed BackupStatus = "failed"

	// StatusCorrupted indicates the backup file failed checksum verification
	StatusCorrupted BackupStatus = "corrupted"
)

// BackupTrigger indicates what initiated the backup
type BackupTrigger string

const (
	// TriggerManual indicates the backup was triggered by admin request
	TriggerManual BackupTrigger = "manual"

	// TriggerScheduled indicates the backup was triggered by the scheduler
	TriggerScheduled BackupTrigger = "scheduled"

	// TriggerPreRestore indicates the safety backup taken before a restore
	TriggerPreRestore BackupTrigger = "pre_restore"
)

// BackupFile records one file inside a backup archive.
type BackupFile struct {
	Path         string    `json:"path"`
	OriginalPath string    `json:"original_path"`
	Size         int64     `json:"size"`
	ModTime      time.Time `json:"mod_time"`
	Checksum     string    `json:"checksum"`
}

// Backup represents metadata about a backup archive.
type Backup struct {
	ID          string        `json:"id"`
	Trigger     BackupTrigger `json:"trigger"`
	Status      BackupStatus  `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	FilePath    string        `json:"file_path"`
	SizeBytes   int64         `json:"size_bytes"`

	// Checksum is the SHA-256 of the finished archive file.
	Checksum string `json:"checksum"`

	// Files lists archive members with their individual checksums.
	Files []BackupFile `json:"files"`

	// Error holds the failure message when Status is failed.
	Error string `json:"error,omitempty"`
}
