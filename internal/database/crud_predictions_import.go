// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package database

import (
	"context"
	"fmt"
	"time"
)

// ImportPredictionsCSV replaces one week's predictions with the rows of a
// weekly recommendations file. Duplicate (Artist, Album Name) pairs keep
// the first occurrence; rows without a parseable score are dropped.
func (db *DB) ImportPredictionsCSV(ctx context.Context, path string, weekOf time.Time) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM predictions WHERE week_of = ?`, weekOf); err != nil {
		return fmt.Errorf("failed to clear week %s: %w", weekOf.Format("2006-01-02"), err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO predictions (artist, album, genres, avg_score, week_of)
		 SELECT "Artist", "Album Name", "Genres", score, ?
		 FROM (
		   SELECT "Artist", "Album Name", "Genres",
		          TRY_CAST(avg_score AS DOUBLE) AS score,
		          ROW_NUMBER() OVER (PARTITION BY "Artist", "Album Name") AS rn
		   FROM read_csv(`+quotePath(path)+`, header = true, all_varchar = true)
		   WHERE "Artist" IS NOT NULL AND "Album Name" IS NOT NULL
		 )
		 WHERE rn = 1 AND score IS NOT NULL`, weekOf)
	if err != nil {
		return fmt.Errorf("failed to import predictions from %s: %w", path, err)
	}
	return tx.Commit()
}
