// Package store provides progress persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashureev/studyguide/internal/config"
	"github.com/ashureev/studyguide/internal/domain"
	"go.uber.org/zap"
)

// ErrCorrupt is returned by Load when the persisted document cannot be decoded.
var ErrCorrupt = errors.New("store: progress document is corrupt")

// Repository persists the whole progress document of one learner.
type Repository interface {
	// Load returns the persisted document. A repository with nothing persisted
	// yet returns an empty document and a nil error.
	Load(ctx context.Context) (domain.ProgressDocument, error)

	// Save replaces the persisted document with doc.
	Save(ctx context.Context, doc domain.ProgressDocument) error

	// Ping verifies the backend is reachable and writable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Open builds the repository selected by cfg.
func Open(cfg config.ProgressConfig, logger *zap.Logger) (Repository, error) {
	if !cfg.Persist {
		return NewMemory(), nil
	}
	switch cfg.Backend {
	case config.BackendFile:
		fs, err := NewFile(cfg.FilePath, logger)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.BackendSQLite:
		db, err := NewSQLite(cfg.DBPath, logger)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
}
