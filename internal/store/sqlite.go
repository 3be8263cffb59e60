package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/studyguide/internal/domain"
	"github.com/ashureev/studyguide/internal/logging"
	"github.com/ashureev/studyguide/internal/shared"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const metaLastUpdated = "last_updated"

// SQLiteStore implements Repository using SQLite. Records are kept one row
// per touched section.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	retry  shared.RetryPolicy
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	logger = logging.OrNop(logger)

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, logger: logger, retry: shared.DefaultRetryPolicy}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	PRAGMA journal_mode = WAL;
	CREATE TABLE IF NOT EXISTS progress_records (
		section_type TEXT NOT NULL,
		section_id TEXT NOT NULL,
		complete INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (section_type, section_id)
	);
	CREATE INDEX IF NOT EXISTS idx_progress_updated ON progress_records(updated_at);

	CREATE TABLE IF NOT EXISTS progress_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load reads every record plus the last_updated stamp.
func (s *SQLiteStore) Load(ctx context.Context) (domain.ProgressDocument, error) {
	doc := domain.NewProgressDocument(domain.Timestamp{})

	rows, err := s.db.QueryContext(ctx,
		`SELECT section_type, section_id, complete, updated_at FROM progress_records`)
	if err != nil {
		return domain.ProgressDocument{}, fmt.Errorf("query progress records: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close progress rows", zap.Error(closeErr))
		}
	}()

	for rows.Next() {
		var sectionType, sectionID, updatedAt string
		var complete bool
		if err := rows.Scan(&sectionType, &sectionID, &complete, &updatedAt); err != nil {
			return domain.ProgressDocument{}, fmt.Errorf("scan progress row: %w", err)
		}
		family := doc.Family(domain.SectionType(sectionType))
		if family == nil {
			return domain.ProgressDocument{}, fmt.Errorf("%w: unknown section type %q in row %s", ErrCorrupt, sectionType, sectionID)
		}
		ts, err := domain.ParseTimestamp(updatedAt)
		if err != nil {
			return domain.ProgressDocument{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		family[sectionID] = domain.ProgressRecord{Complete: complete, Timestamp: ts}
	}
	if err := rows.Err(); err != nil {
		return domain.ProgressDocument{}, fmt.Errorf("iterate progress rows: %w", err)
	}

	var lastUpdated string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM progress_meta WHERE key = ?`, metaLastUpdated).Scan(&lastUpdated)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return domain.ProgressDocument{}, fmt.Errorf("read last_updated: %w", err)
	case lastUpdated != "":
		ts, err := domain.ParseTimestamp(lastUpdated)
		if err != nil {
			return domain.ProgressDocument{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		doc.LastUpdated = ts
	}

	return doc, nil
}

// Save replaces the stored record set inside one transaction.
// SQLITE_BUSY and "database is locked" are retried with exponential backoff.
func (s *SQLiteStore) Save(ctx context.Context, doc domain.ProgressDocument) error {
	err := shared.RetryOnConflict(ctx, s.logger, "save progress", s.retry, func() error {
		return s.saveOnce(ctx, doc)
	})
	if err != nil {
		return fmt.Errorf("save progress after %d attempts: %w", s.retry.Attempts, err)
	}
	return nil
}

func (s *SQLiteStore) saveOnce(ctx context.Context, doc domain.ProgressDocument) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Warn("rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM progress_records`); err != nil {
		return fmt.Errorf("clear progress records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO progress_records (section_type, section_id, complete, updated_at)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range domain.SectionTypes {
		for id, rec := range doc.Family(t) {
			if _, err = stmt.ExecContext(ctx, string(t), id, rec.Complete, rec.Timestamp.String()); err != nil {
				return fmt.Errorf("insert %s/%s: %w", t, id, err)
			}
		}
	}

	lastUpdated := ""
	if !doc.LastUpdated.IsZero() {
		lastUpdated = doc.LastUpdated.String()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO progress_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, metaLastUpdated, lastUpdated)
	if err != nil {
		return fmt.Errorf("upsert last_updated: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
