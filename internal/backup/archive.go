// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
)

// databaseArchiveName is the fixed member path for the database file so
// restore does not depend on the configured filename.
const databaseArchiveName = "database/nmf.duckdb"

// createArchive writes the tar.gz archive for backup b.
func (m *Manager) createArchive(ctx context.Context, b *Backup) (err error) {
	outFile, err := os.Create(b.FilePath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}

	gzWriter := gzip.NewWriter(outFile)
	tarWriter := tar.NewWriter(gzWriter)
	defer func() {
		// Close in reverse order, keep the first error
		for _, c := range []io.Closer{tarWriter, gzWriter, outFile} {
			if closeErr := c.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}
	}()

	if err := m.addDatabase(ctx, tarWriter, b); err != nil {
		return err
	}
	if err := m.addDataDir(tarWriter, b); err != nil {
		return err
	}
	return addMetadataEntry(tarWriter, b)
}

// addDatabase checkpoints and archives the DuckDB file.
func (m *Manager) addDatabase(ctx context.Context, tw *tar.Writer, b *Backup) error {
	if m.db == nil {
		return fmt.Errorf("database connection not available")
	}

	// Flush the WAL so the file on disk is self-contained
	if err := m.db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("checkpoint failed, backup may miss recent writes")
	}

	if err := addFileEntry(tw, m.db.Path(), databaseArchiveName, b); err != nil {
		return fmt.Errorf("failed to add database file: %w", err)
	}
	return nil
}

// addDataDir archives every CSV in the predictions data directory.
func (m *Manager) addDataDir(tw *tar.Writer, b *Backup) error {
	if m.dataDir == "" {
		return nil
	}

	entries, err := os.ReadDir(m.dataDir)
	if err != nil {
		// A missing data directory is not fatal, the database is the
		// primary payload
		logging.Warn().Err(err).Str("dir", m.dataDir).Msg("skipping data directory in backup")
		return nil
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		src := filepath.Join(m.dataDir, entry.Name())
		if err := addFileEntry(tw, src, "data/"+entry.Name(), b); err != nil {
			return fmt.Errorf("failed to add %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// addMetadataEntry writes the backup descriptor as the final archive member.
func addMetadataEntry(tw *tar.Writer, b *Backup) error {
	metadataJSON, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup metadata: %w", err)
	}

	header := &tar.Header{
		Name:    "backup-metadata.json",
		Size:    int64(len(metadataJSON)),
		Mode:    0o640,
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write metadata header: %w", err)
	}
	if _, err := tw.Write(metadataJSON); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// addFileEntry copies one file into the archive, recording its checksum.
func addFileEntry(tw *tar.Writer, srcPath, destPath string, b *Backup) error {
	file, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", srcPath, err)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to create tar header for %s: %w", srcPath, err)
	}
	header.Name = destPath

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", srcPath, err)
	}

	// Checksum while copying
	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tw, hasher), file); err != nil {
		return fmt.Errorf("failed to copy %s to archive: %w", srcPath, err)
	}

	b.Files = append(b.Files, BackupFile{
		Path:         destPath,
		OriginalPath: srcPath,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		Checksum:     hex.EncodeToString(hasher.Sum(nil)),
	})
	return nil
}

// fileChecksum calculates the SHA-256 checksum of a file.
func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
