package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Matches reports whether fp and other describe the same file contents.
// Times are compared at the microsecond precision DuckDB stores.
func (fp FileFingerprint) Matches(other FileFingerprint) bool {
	return fp.Path == other.Path &&
		fp.Size == other.Size &&
		fp.ModTime.Truncate(time.Microsecond).Equal(other.ModTime.Truncate(time.Microsecond))
}

// RecordSource stores the fingerprint of the file loaded for role
// (RoleGapFeatures or RoleJunctions), replacing any previous entry.
func (s *Store) RecordSource(ctx context.Context, role string, fp FileFingerprint) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM interval_sources WHERE role = ?`, role); err != nil {
		return fmt.Errorf("clear source %s: %w", role, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO interval_sources (role, path, size, mod_time) VALUES (?, ?, ?, ?)`,
		role, fp.Path, fp.Size, fp.ModTime.UTC()); err != nil {
		return fmt.Errorf("record source %s: %w", role, err)
	}
	return nil
}

// Source returns the fingerprint recorded for role.
// The boolean is false when nothing was recorded.
func (s *Store) Source(ctx context.Context, role string) (FileFingerprint, bool, error) {
	var fp FileFingerprint
	err := s.db.QueryRowContext(ctx,
		`SELECT path, size, mod_time FROM interval_sources WHERE role = ?`, role).
		Scan(&fp.Path, &fp.Size, &fp.ModTime)
	if errors.Is(err, sql.ErrNoRows) {
		return FileFingerprint{}, false, nil
	}
	if err != nil {
		return FileFingerprint{}, false, fmt.Errorf("query source %s: %w", role, err)
	}
	return fp, true, nil
}
