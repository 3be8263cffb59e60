package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ashureev/studyguide/internal/domain"
	"github.com/ashureev/studyguide/internal/logging"
	"go.uber.org/zap"
)

// FileStore persists the document as one indented JSON file. Every Save
// rewrites the whole file through a temp file and rename.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFile creates a file-backed repository, creating the parent directory.
func NewFile(path string, logger *zap.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store: file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create progress directory: %w", err)
	}
	logger = logging.OrNop(logger)
	return &FileStore{path: path, logger: logger}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Load reads the document. A missing file yields an empty document.
func (s *FileStore) Load(_ context.Context) (domain.ProgressDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("progress file not found, starting empty", zap.String("path", s.path))
		return domain.NewProgressDocument(domain.Timestamp{}), nil
	}
	if err != nil {
		return domain.ProgressDocument{}, fmt.Errorf("read progress file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.ProgressDocument{}, fmt.Errorf("%w: %s is empty", ErrCorrupt, s.path)
	}

	var doc domain.ProgressDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.ProgressDocument{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return doc.Clone(), nil
}

// Save writes doc atomically.
func (s *FileStore) Save(_ context.Context, doc domain.ProgressDocument) error {
	data, err := json.MarshalIndent(doc.Clone(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".progress-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp progress file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			if rmErr := os.Remove(tmpName); rmErr != nil {
				s.logger.Warn("failed to remove temp progress file", zap.String("path", tmpName), zap.Error(rmErr))
			}
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp progress file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp progress file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp progress file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}

// Ping checks that the parent directory still exists.
func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return fmt.Errorf("stat progress directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("progress directory %s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
