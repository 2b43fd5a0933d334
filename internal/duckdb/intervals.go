package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/intron-filter/internal/bed"
)

// AppendGapFeatures bulk-inserts every interval from r into gap_features,
// numbering rows in read order. Returns the number of rows appended.
func (s *Store) AppendGapFeatures(ctx context.Context, r *bed.Reader) (int, error) {
	seq := int64(0)
	return s.appendIntervals(ctx, "gap_features", r, func(a *goduckdb.Appender, iv *bed.Interval) error {
		seq++
		return a.AppendRow(seq, iv.Chrom, iv.Start, iv.End, iv.Name)
	})
}

// AppendJunctions bulk-inserts every interval from r into junctions.
// Returns the number of rows appended.
func (s *Store) AppendJunctions(ctx context.Context, r *bed.Reader) (int, error) {
	return s.appendIntervals(ctx, "junctions", r, func(a *goduckdb.Appender, iv *bed.Interval) error {
		return a.AppendRow(iv.Chrom, iv.Start, iv.End)
	})
}

// appendIntervals streams r into table using the Appender API.
func (s *Store) appendIntervals(ctx context.Context, table string, r *bed.Reader,
	appendRow func(*goduckdb.Appender, *bed.Interval) error) (int, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return 0, fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	count := 0
	for {
		iv, err := r.Next()
		if err != nil {
			return count, err
		}
		if iv == nil {
			break
		}
		if err := appendRow(appender, iv); err != nil {
			return count, fmt.Errorf("append %s row: %w", table, err)
		}
		count++
	}

	if err := appender.Flush(); err != nil {
		return count, fmt.Errorf("flush %s: %w", table, err)
	}
	return count, nil
}

// SupportedGapFeatures calls fn for every gap feature overlapping at least
// one junction on the same chromosome, once per gap feature, in load order.
// Intervals are half-open, so abutting intervals do not overlap.
func (s *Store) SupportedGapFeatures(ctx context.Context, fn func(bed.Interval) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT a.chrom, a.chrom_start, a.chrom_end, a.name
		FROM gap_features a
		WHERE EXISTS (
			SELECT 1 FROM junctions b
			WHERE b.chrom = a.chrom
				AND b.chrom_start < a.chrom_end
				AND a.chrom_start < b.chrom_end
		)
		ORDER BY a.seq`)
	if err != nil {
		return fmt.Errorf("query supported gap features: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var iv bed.Interval
		if err := rows.Scan(&iv.Chrom, &iv.Start, &iv.End, &iv.Name); err != nil {
			return fmt.Errorf("scan gap feature: %w", err)
		}
		if err := fn(iv); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate gap features: %w", err)
	}
	return nil
}

// CountGapFeatures returns the number of loaded gap features.
func (s *Store) CountGapFeatures(ctx context.Context) (int64, error) {
	return s.count(ctx, "gap_features")
}

// CountJunctions returns the number of loaded junctions.
func (s *Store) CountJunctions(ctx context.Context) (int64, error) {
	return s.count(ctx, "junctions")
}

func (s *Store) count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s rows: %w", table, err)
	}
	return n, nil
}
