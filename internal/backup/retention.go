// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package backup

import (
	"os"
	"sort"
	"time"

	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
)

// applyRetention deletes completed backups older than RetentionDays and,
// independently, trims the completed set down to MaxBackups newest-first.
// Failed and corrupted records are kept for diagnosis but their archive
// files were already removed.
func (m *Manager) applyRetention() error {
	m.metadataMu.Lock()
	defer m.metadataMu.Unlock()

	var completed []*Backup
	for _, b := range m.metadata.Backups {
		if b.Status == StatusCompleted {
			completed = append(completed, b)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].CreatedAt.After(completed[j].CreatedAt)
	})

	expired := make(map[string]bool)

	if m.cfg.RetentionDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -m.cfg.RetentionDays)
		for _, b := range completed {
			if b.CreatedAt.Before(cutoff) {
				expired[b.ID] = true
			}
		}
	}

	if m.cfg.MaxBackups > 0 {
		for i, b := range completed {
			if i >= m.cfg.MaxBackups {
				expired[b.ID] = true
			}
		}
	}

	if len(expired) == 0 {
		return nil
	}

	kept := m.metadata.Backups[:0]
	for _, b := range m.metadata.Backups {
		if !expired[b.ID] {
			kept = append(kept, b)
			continue
		}
		if err := os.Remove(b.FilePath); err != nil && !os.IsNotExist(err) {
			logging.Warn().Err(err).Str("backup_id", b.ID).Msg("failed to delete expired backup archive")
			// Keep the record so a later pass can retry the delete
			kept = append(kept, b)
			continue
		}
		logging.Info().Str("backup_id", b.ID).Time("created_at", b.CreatedAt).Msg("expired backup removed")
	}
	m.metadata.Backups = kept

	return m.saveMetadataLocked()
}
