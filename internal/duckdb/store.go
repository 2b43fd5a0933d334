// Package duckdb provides a DuckDB-backed interval store.
// Gap features and junctions are bulk-loaded with the Appender API and
// intersected in SQL.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Interval roles. Each role has its own table and source record.
const (
	RoleGapFeatures = "gap_features"
	RoleJunctions   = "junctions"
)

// Store manages a DuckDB connection holding interval tables.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path, empty for in-memory databases.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS gap_features (
			seq BIGINT,
			chrom VARCHAR,
			chrom_start BIGINT,
			chrom_end BIGINT,
			name VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS junctions (
			chrom VARCHAR,
			chrom_start BIGINT,
			chrom_end BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS interval_sources (
			role VARCHAR PRIMARY KEY,
			path VARCHAR,
			size BIGINT,
			mod_time TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Reset removes the loaded intervals and source record of each role.
// With no roles, every role is reset.
func (s *Store) Reset(ctx context.Context, roles ...string) error {
	if len(roles) == 0 {
		roles = []string{RoleGapFeatures, RoleJunctions}
	}
	for _, role := range roles {
		if role != RoleGapFeatures && role != RoleJunctions {
			return fmt.Errorf("unknown interval role %q", role)
		}
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+role); err != nil {
			return fmt.Errorf("clear %s: %w", role, err)
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM interval_sources WHERE role = ?`, role); err != nil {
			return fmt.Errorf("clear source %s: %w", role, err)
		}
	}
	return nil
}
