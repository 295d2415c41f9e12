// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

// Package importer discovers the pipeline's CSV drops and loads them into
// DuckDB: the weekly prediction archive plus the supporting metadata files.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MikeStrusz/nmf-dashboard/internal/config"
	"github.com/MikeStrusz/nmf-dashboard/internal/database"
	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
)

// predictionSuffix names the weekly archive files: the MM-DD-YY date prefix
// identifies the week.
const predictionSuffix = "_Album_Recommendations.csv"

// Supporting CSV filenames, as written by the pipeline.
const (
	fileArtistRatings = "df_cleaned_pre_standardized.csv"
	fileLikedSimilar  = "liked_artists_only_similar.csv"
	fileNMFSimilar    = "nmf_similar_artists.csv"
	fileAlbumCovers   = "nmf_album_covers.csv"
	fileAlbumLinks    = "nmf_album_links.csv"
	fileNukedAlbums   = "nuked_albums.csv"
)

// PredictionFile is one discovered weekly archive file.
type PredictionFile struct {
	Path   string
	WeekOf time.Time
}

// Importer loads the pipeline CSV exports into the database.
type Importer struct {
	db  *database.DB
	cfg *config.DataConfig
}

// New creates an importer for the configured data directories.
func New(db *database.DB, cfg *config.DataConfig) *Importer {
	return &Importer{db: db, cfg: cfg}
}

// DiscoverPredictionFiles lists the weekly archive files, newest week first.
// Files whose name does not parse as MM-DD-YY are skipped with a warning.
func (imp *Importer) DiscoverPredictionFiles() ([]PredictionFile, error) {
	entries, err := os.ReadDir(imp.cfg.PredictionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read predictions directory %s: %w", imp.cfg.PredictionsDir, err)
	}

	var files []PredictionFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), predictionSuffix) {
			continue
		}
		weekOf, err := ParseWeekFromFilename(entry.Name())
		if err != nil {
			logging.Warn().Str("file", entry.Name()).Err(err).Msg("Skipping prediction file with unparseable date")
			continue
		}
		files = append(files, PredictionFile{
			Path:   filepath.Join(imp.cfg.PredictionsDir, entry.Name()),
			WeekOf: weekOf,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].WeekOf.After(files[j].WeekOf)
	})
	return files, nil
}

// ParseWeekFromFilename extracts the week date from an archive filename
// such as 08-21-26_Album_Recommendations.csv.
func ParseWeekFromFilename(name string) (time.Time, error) {
	base := strings.TrimSuffix(filepath.Base(name), predictionSuffix)
	weekOf, err := time.Parse("01-02-06", base)
	if err != nil {
		return time.Time{}, fmt.Errorf("filename %q has no MM-DD-YY prefix: %w", name, err)
	}
	return weekOf, nil
}

// ImportAll loads every discovered prediction file and each supporting CSV
// that exists. Missing supporting files are normal on a fresh install and
// are logged, not failed on.
func (imp *Importer) ImportAll(ctx context.Context) error {
	files, err := imp.DiscoverPredictionFiles()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := imp.db.ImportPredictionsCSV(ctx, f.Path, f.WeekOf); err != nil {
			return fmt.Errorf("failed to import %s: %w", f.Path, err)
		}
		logging.Info().
			Str("file", filepath.Base(f.Path)).
			Str("week_of", f.WeekOf.Format("2006-01-02")).
			Msg("Imported prediction archive")
	}

	loaders := []struct {
		file string
		load func(context.Context, string) error
	}{
		{fileArtistRatings, imp.db.ImportArtistRatingsCSV},
		{fileLikedSimilar, func(ctx context.Context, p string) error {
			return imp.db.ImportSimilarArtistsCSV(ctx, p, "liked")
		}},
		{fileNMFSimilar, func(ctx context.Context, p string) error {
			return imp.db.ImportSimilarArtistsCSV(ctx, p, "nmf")
		}},
		{fileAlbumCovers, imp.db.ImportAlbumCoversCSV},
		{fileAlbumLinks, imp.db.ImportAlbumLinksCSV},
		{fileNukedAlbums, imp.db.ImportNukedAlbumsCSV},
	}

	for _, l := range loaders {
		path := filepath.Join(imp.cfg.Dir, l.file)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			logging.Debug().Str("file", l.file).Msg("Supporting CSV not present, skipping")
			continue
		}
		if err := l.load(ctx, path); err != nil {
			return fmt.Errorf("failed to import %s: %w", l.file, err)
		}
		logging.Info().Str("file", l.file).Msg("Imported supporting CSV")
	}

	return nil
}
