package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // SQLite driver

	"PaperCrawler/internal/domain"
	"PaperCrawler/internal/ports"
)

const checkpointsTable = "crawl_years"

// SQLiteCheckpointStore persists per-year completion markers.
type SQLiteCheckpointStore struct {
	db *sql.DB
}

var _ ports.CheckpointStore = (*SQLiteCheckpointStore)(nil)

// OpenCheckpointStore opens or creates the database at path and ensures the schema.
func OpenCheckpointStore(path string) (*SQLiteCheckpointStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create checkpoint directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open checkpoint db: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteCheckpointStore{db: db}
	if err := store.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create checkpoint schema: %w", err)
	}

	return store, nil
}

// Close releases the database connection.
func (s *SQLiteCheckpointStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteCheckpointStore) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS ` + checkpointsTable + ` (
		base_url TEXT NOT NULL,
		year INTEGER NOT NULL,
		records INTEGER NOT NULL,
		completed_at TEXT NOT NULL,
		PRIMARY KEY (base_url, year)
	)`)
	return err
}

// Completed reports whether the year was fully persisted for baseURL.
func (s *SQLiteCheckpointStore) Completed(ctx context.Context, baseURL string, year int) (bool, error) {
	query, args, err := sq.Select("1").
		From(checkpointsTable).
		Where(sq.Eq{"base_url": baseURL, "year": year}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query checkpoint: %w", err)
	}
	return true, nil
}

// MarkCompleted upserts the marker for a year.
func (s *SQLiteCheckpointStore) MarkCompleted(ctx context.Context, cp domain.Checkpoint) error {
	completedAt := cp.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	query, args, err := sq.Insert(checkpointsTable).
		Columns("base_url", "year", "records", "completed_at").
		Values(cp.BaseURL, cp.Year, cp.Records, completedAt.UTC().Format(time.RFC3339Nano)).
		Suffix("ON CONFLICT (base_url, year) DO UPDATE SET records = excluded.records, completed_at = excluded.completed_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert checkpoint: %w", err)
	}
	return nil
}

// List returns the markers for baseURL in year order.
func (s *SQLiteCheckpointStore) List(ctx context.Context, baseURL string) ([]domain.Checkpoint, error) {
	query, args, err := sq.Select("base_url", "year", "records", "completed_at").
		From(checkpointsTable).
		Where(sq.Eq{"base_url": baseURL}).
		OrderBy("year").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query checkpoints: %w", err)
	}

	var result []domain.Checkpoint
	for rows.Next() {
		var (
			cp          domain.Checkpoint
			completedAt string
		)
		if err := rows.Scan(&cp.BaseURL, &cp.Year, &cp.Records, &completedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		cp.CompletedAt, err = time.Parse(time.RFC3339Nano, completedAt)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("parse completed_at %q: %w", completedAt, err)
		}
		result = append(result, cp)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// Reset removes every marker for baseURL and returns how many were deleted.
func (s *SQLiteCheckpointStore) Reset(ctx context.Context, baseURL string) (int64, error) {
	query, args, err := sq.Delete(checkpointsTable).
		Where(sq.Eq{"base_url": baseURL}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete checkpoints: %w", err)
	}
	return res.RowsAffected()
}
