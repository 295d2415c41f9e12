// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
)

// RestoreOptions controls restore behavior.
type RestoreOptions struct {
	// TargetDir overrides the extraction root, used by tests and for
	// staged restores. Empty restores into a "restore-<id>" directory
	// under the backup dir; the operator swaps files in after stopping
	// the service.
	TargetDir string

	// SkipSafetyBackup suppresses the pre-restore backup of current state.
	SkipSafetyBackup bool
}

// maxExtractSize bounds a single extracted file to guard against
// decompression bombs in tampered archives.
const maxExtractSize = 8 << 30 // 8 GiB

// Restore verifies a backup's integrity and extracts it. The live database
// file is never overwritten in place; extraction is staged so a failed
// restore cannot destroy the current state.
func (m *Manager) Restore(ctx context.Context, id string, opts RestoreOptions) (string, error) {
	b, err := m.GetBackup(id)
	if err != nil {
		return "", err
	}
	if b.Status != StatusCompleted {
		return "", fmt.Errorf("backup %s is %s, only completed backups can be restored", id, b.Status)
	}

	if err := m.VerifyBackup(id); err != nil {
		return "", err
	}

	if !opts.SkipSafetyBackup {
		if _, err := m.CreateBackup(ctx, TriggerPreRestore); err != nil {
			return "", fmt.Errorf("pre-restore safety backup failed: %w", err)
		}
	}

	targetDir := opts.TargetDir
	if targetDir == "" {
		targetDir = filepath.Join(m.cfg.Dir, "restore-"+id)
	}
	if err := os.MkdirAll(targetDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create restore directory: %w", err)
	}

	if err := extractArchive(b.FilePath, targetDir); err != nil {
		return "", fmt.Errorf("failed to extract backup %s: %w", id, err)
	}

	logging.Info().
		Str("backup_id", id).
		Str("target_dir", targetDir).
		Msg("backup restored")
	return targetDir, nil
}

// VerifyBackup recomputes the archive checksum and compares it with the
// value recorded at creation time. A mismatch marks the backup corrupted.
func (m *Manager) VerifyBackup(id string) error {
	b, err := m.GetBackup(id)
	if err != nil {
		return err
	}

	checksum, err := fileChecksum(b.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read backup archive: %w", err)
	}
	if checksum != b.Checksum {
		b.Status = StatusCorrupted
		m.saveBackup(b)
		return fmt.Errorf("backup %s failed checksum verification", id)
	}
	return nil
}

// extractArchive unpacks a tar.gz archive into targetDir, rejecting
// members that would escape it.
func extractArchive(archivePath, targetDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("invalid gzip stream: %w", err)
	}
	defer func() { _ = gzReader.Close() }()

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("invalid tar stream: %w", err)
		}

		dest, err := securePath(targetDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o750); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
				return err
			}
			if err := writeExtractedFile(dest, tarReader); err != nil {
				return err
			}
		default:
			// Symlinks and specials are never written by createArchive
			return fmt.Errorf("unexpected archive member type %d for %s", header.Typeflag, header.Name)
		}
	}
}

// securePath joins name under root and rejects path traversal.
func securePath(root, name string) (string, error) {
	dest := filepath.Join(root, filepath.Clean(name))
	if !strings.HasPrefix(dest, filepath.Clean(root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive member %q escapes restore directory", name)
	}
	return dest, nil
}

func writeExtractedFile(dest string, r io.Reader) error {
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(out, io.LimitReader(r, maxExtractSize))
	closeErr := out.Close()
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}
