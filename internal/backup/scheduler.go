// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package backup

import (
	"context"
	"time"

	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
)

// Scheduler runs periodic backups. It implements the suture.Service shape:
// Serve blocks until the context is canceled and returns ctx.Err() so the
// supervisor treats cancellation as a normal stop.
type Scheduler struct {
	manager  *Manager
	interval time.Duration
}

// NewScheduler creates a scheduler around an existing manager.
func NewScheduler(manager *Manager, interval time.Duration) *Scheduler {
	return &Scheduler{manager: manager, interval: interval}
}

// Serve ticks at the configured interval and creates scheduled backups.
// A failed run is logged and the ticker keeps going; transient disk
// pressure should not kill the schedule.
func (s *Scheduler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", s.interval).Msg("backup scheduler started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("backup scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.manager.CreateBackup(ctx, TriggerScheduled); err != nil {
				logging.Error().Err(err).Msg("scheduled backup failed")
			}
		}
	}
}

// String names the service in supervisor logs.
func (s *Scheduler) String() string {
	return "backup-scheduler"
}
