// Package progress tracks which study-guide sections and labs a learner has
// completed. A Store is owned by the hosting process and shared by every
// surface; all methods are safe for concurrent use.
package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/studyguide/internal/config"
	"github.com/ashureev/studyguide/internal/domain"
	"github.com/ashureev/studyguide/internal/store"
	"go.uber.org/zap"
)

var (
	// ErrUnknownSectionType is returned for a section type other than
	// study_guide or labs.
	ErrUnknownSectionType = errors.New("unknown section type")
	// ErrEmptySectionID is returned when a mutation names no section.
	ErrEmptySectionID = errors.New("section id is empty")
	// ErrPersist wraps write-through failures. The in-memory state keeps the
	// mutation that failed to persist.
	ErrPersist = errors.New("persist progress")
)

// Catalog is the subset of the curriculum the curriculum basis needs.
type Catalog interface {
	Count(t domain.SectionType) int
	Has(t domain.SectionType, id string) bool
}

// Store is the in-memory progress document with write-through persistence.
type Store struct {
	mu      sync.RWMutex
	doc     domain.ProgressDocument
	repo    store.Repository
	now     func() time.Time
	basis   string
	catalog Catalog
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithBasis selects the completion percentage denominator.
func WithBasis(basis string) Option {
	return func(s *Store) { s.basis = basis }
}

// WithCatalog sets the curriculum used by the curriculum basis.
func WithCatalog(c Catalog) Option {
	return func(s *Store) { s.catalog = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open loads the persisted document from repo.
func Open(ctx context.Context, repo store.Repository, opts ...Option) (*Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("progress: repository is nil")
	}
	s := &Store{
		repo:  repo,
		now:   time.Now,
		basis: config.BasisTouched,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	switch s.basis {
	case config.BasisTouched:
	case config.BasisCurriculum:
		if s.catalog == nil {
			return nil, fmt.Errorf("progress: %s basis requires a catalog", s.basis)
		}
	default:
		return nil, fmt.Errorf("progress: unknown percentage basis %q", s.basis)
	}

	doc, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("progress: load: %w", err)
	}
	s.doc = doc.Clone()
	if s.doc.LastUpdated.IsZero() {
		s.doc.LastUpdated = s.stamp()
	}
	s.logger.Debug("progress loaded",
		zap.Int("study_guide", len(s.doc.StudyGuide)),
		zap.Int("labs", len(s.doc.Labs)))
	return s, nil
}

func (s *Store) stamp() domain.Timestamp {
	return domain.NewTimestamp(s.now().Round(0))
}

// MarkComplete upserts the record for (t, id) with the current time and
// writes the document through to the repository.
func (s *Store) MarkComplete(ctx context.Context, t domain.SectionType, id string, complete bool) (domain.ProgressRecord, error) {
	if !t.Valid() {
		return domain.ProgressRecord{}, fmt.Errorf("%w: %q", ErrUnknownSectionType, t)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ProgressRecord{}, ErrEmptySectionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.stamp()
	rec := domain.ProgressRecord{Complete: complete, Timestamp: ts}
	s.doc.Family(t)[id] = rec
	s.doc.LastUpdated = ts

	if err := s.persistLocked(ctx); err != nil {
		return rec, err
	}
	s.logger.Info("progress updated",
		zap.String("section_type", string(t)),
		zap.String("section_id", id),
		zap.Bool("complete", complete))
	return rec, nil
}

// Reset clears both families and persists the empty document.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = domain.NewProgressDocument(s.stamp())
	if err := s.persistLocked(ctx); err != nil {
		return err
	}
	s.logger.Info("progress reset")
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.doc.Clone()); err != nil {
		s.logger.Error("failed to persist progress", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// IsComplete reports whether (t, id) was marked complete. Unknown types and
// untouched sections are incomplete.
func (s *Store) IsComplete(t domain.SectionType, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isCompleteLocked(t, id)
}

func (s *Store) isCompleteLocked(t domain.SectionType, id string) bool {
	if !t.Valid() {
		return false
	}
	return s.doc.Family(t)[id].Complete
}

// Record returns the record for (t, id), if the section was ever touched.
func (s *Store) Record(t domain.SectionType, id string) (domain.ProgressRecord, bool) {
	if !t.Valid() {
		return domain.ProgressRecord{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.doc.Family(t)[id]
	return rec, ok
}

// CompletionPercentage returns the completed share of t in [0, 100]. An
// empty t covers both families. With nothing to count the result is 0.
func (s *Store) CompletionPercentage(t domain.SectionType) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.percentLocked(t)
}

func (s *Store) percentLocked(t domain.SectionType) float64 {
	var types []domain.SectionType
	switch {
	case t == "":
		types = domain.SectionTypes
	case t.Valid():
		types = []domain.SectionType{t}
	default:
		return 0
	}

	var done, total int
	for _, st := range types {
		fam := s.doc.Family(st)
		if s.basis == config.BasisCurriculum {
			total += s.catalog.Count(st)
			for id, rec := range fam {
				if rec.Complete && s.catalog.Has(st, id) {
					done++
				}
			}
			continue
		}
		total += len(fam)
		for _, rec := range fam {
			if rec.Complete {
				done++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// LastVisited returns the most recently touched section. Equal timestamps
// resolve to the smallest (section_type, section_id).
func (s *Store) LastVisited() (domain.SectionKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastVisitedLocked()
}

func (s *Store) lastVisitedLocked() (domain.SectionKey, bool) {
	var (
		best   domain.SectionKey
		bestTS time.Time
		found  bool
	)
	for _, st := range domain.SectionTypes {
		for id, rec := range s.doc.Family(st) {
			// Records without a timestamp were never visited.
			if rec.Timestamp.IsZero() {
				continue
			}
			key := domain.SectionKey{Type: st, ID: id}
			ts := rec.Timestamp.Time
			switch {
			case !found, ts.After(bestTS):
			case ts.Equal(bestTS) && key.Less(best):
			default:
				continue
			}
			best, bestTS, found = key, ts, true
		}
	}
	return best, found
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() domain.ProgressDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Basis returns the configured percentage basis.
func (s *Store) Basis() string { return s.basis }

// Summary is a consistent read of the derived progress figures.
type Summary struct {
	Overall     float64            `json:"overall"`
	StudyGuide  float64            `json:"study_guide"`
	Labs        float64            `json:"labs"`
	Completed   int                `json:"completed"`
	Touched     int                `json:"touched"`
	Basis       string             `json:"basis"`
	LastVisited *domain.SectionKey `json:"last_visited,omitempty"`
	LastUpdated domain.Timestamp   `json:"last_updated"`
}

// Summary computes every derived figure under one read lock.
func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{
		Overall:     s.percentLocked(""),
		StudyGuide:  s.percentLocked(domain.SectionStudyGuide),
		Labs:        s.percentLocked(domain.SectionLabs),
		Touched:     s.doc.Len(),
		Basis:       s.basis,
		LastUpdated: s.doc.LastUpdated,
	}
	for _, st := range domain.SectionTypes {
		for _, rec := range s.doc.Family(st) {
			if rec.Complete {
				sum.Completed++
			}
		}
	}
	if key, ok := s.lastVisitedLocked(); ok {
		sum.LastVisited = &key
	}
	return sum
}
