package progress

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/studyguide/internal/config"
	"github.com/ashureev/studyguide/internal/curriculum"
	"github.com/ashureev/studyguide/internal/domain"
	"github.com/ashureev/studyguide/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock advances one second on every call.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type failingRepo struct {
	store.Repository
	fail bool
}

func (r *failingRepo) Save(ctx context.Context, doc domain.ProgressDocument) error {
	if r.fail {
		return errors.New("disk full")
	}
	return r.Repository.Save(ctx, doc)
}

func openStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(newStepClock().Now)}, opts...)
	s, err := Open(context.Background(), store.NewMemory(), opts...)
	require.NoError(t, err)
	return s
}

func TestMarkCompleteAndIsComplete(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	assert.False(t, s.IsComplete(domain.SectionLabs, "lab1_1"))

	_, err := s.MarkComplete(ctx, domain.SectionLabs, "lab1_1", true)
	require.NoError(t, err)
	assert.True(t, s.IsComplete(domain.SectionLabs, "lab1_1"))

	_, err = s.MarkComplete(ctx, domain.SectionLabs, "lab1_1", false)
	require.NoError(t, err)
	assert.False(t, s.IsComplete(domain.SectionLabs, "lab1_1"))

	rec, ok := s.Record(domain.SectionLabs, "lab1_1")
	require.True(t, ok, "an incomplete record still counts as touched")
	assert.False(t, rec.Complete)

	assert.False(t, s.IsComplete("videos", "lab1_1"))
}

func TestMarkCompleteRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.MarkComplete(ctx, "videos", "x", true)
	assert.ErrorIs(t, err, ErrUnknownSectionType)

	_, err = s.MarkComplete(ctx, domain.SectionLabs, "  ", true)
	assert.ErrorIs(t, err, ErrEmptySectionID)

	assert.Zero(t, s.Snapshot().Len())
}

func TestCompletionPercentageTouchedBasis(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	assert.Zero(t, s.CompletionPercentage(""))
	assert.Zero(t, s.CompletionPercentage(domain.SectionLabs))

	for _, id := range []string{"lab1_1", "lab1_2", "lab1_3"} {
		_, err := s.MarkComplete(ctx, domain.SectionLabs, id, id == "lab1_2")
		require.NoError(t, err)
	}
	assert.InDelta(t, 33.333, s.CompletionPercentage(domain.SectionLabs), 0.01)
	assert.Zero(t, s.CompletionPercentage(domain.SectionStudyGuide))

	_, err := s.MarkComplete(ctx, domain.SectionStudyGuide, "intro", true)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, s.CompletionPercentage(""), 0.001)
	assert.InDelta(t, 100.0, s.CompletionPercentage(domain.SectionStudyGuide), 0.001)
	assert.Zero(t, s.CompletionPercentage("videos"))
}

func TestCompletionPercentageCurriculumBasis(t *testing.T) {
	ctx := context.Background()
	cat, err := curriculum.Default()
	require.NoError(t, err)

	_, err = Open(ctx, store.NewMemory(), WithBasis(config.BasisCurriculum))
	require.Error(t, err, "curriculum basis without a catalog")

	s := openStore(t, WithBasis(config.BasisCurriculum), WithCatalog(cat))
	for _, id := range []string{"lab1_1", "lab1_2", "lab1_3"} {
		_, err := s.MarkComplete(ctx, domain.SectionLabs, id, true)
		require.NoError(t, err)
	}
	_, err = s.MarkComplete(ctx, domain.SectionLabs, "not_in_catalog", true)
	require.NoError(t, err)

	assert.InDelta(t, 20.0, s.CompletionPercentage(domain.SectionLabs), 0.001)
	assert.InDelta(t, 3.0/21.0*100, s.CompletionPercentage(""), 0.001)
	assert.Equal(t, config.BasisCurriculum, s.Basis())
}

func TestLastVisited(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, ok := s.LastVisited()
	assert.False(t, ok)

	_, err := s.MarkComplete(ctx, domain.SectionLabs, "lab2_1", true)
	require.NoError(t, err)
	_, err = s.MarkComplete(ctx, domain.SectionStudyGuide, "domain2", false)
	require.NoError(t, err)

	key, ok := s.LastVisited()
	require.True(t, ok)
	assert.Equal(t, domain.SectionKey{Type: domain.SectionStudyGuide, ID: "domain2"}, key)
}

func TestLastVisitedSkipsRecordsWithoutTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	doc := domain.NewProgressDocument(domain.NewTimestamp(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)))
	doc.Family(domain.SectionStudyGuide)["intro"] = domain.ProgressRecord{Complete: true}
	require.NoError(t, repo.Save(ctx, doc))

	s, err := Open(ctx, repo, WithClock(newStepClock().Now))
	require.NoError(t, err)

	_, ok := s.LastVisited()
	assert.False(t, ok)
	assert.Nil(t, s.Summary().LastVisited)
	assert.True(t, s.IsComplete(domain.SectionStudyGuide, "intro"))

	_, err = s.MarkComplete(ctx, domain.SectionLabs, "lab1_1", false)
	require.NoError(t, err)
	key, ok := s.LastVisited()
	require.True(t, ok)
	assert.Equal(t, domain.SectionKey{Type: domain.SectionLabs, ID: "lab1_1"}, key)
}

func TestLastVisitedTieBreak(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	s, err := Open(context.Background(), store.NewMemory(), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	ctx := context.Background()
	for _, k := range []domain.SectionKey{
		{Type: domain.SectionStudyGuide, ID: "domain1"},
		{Type: domain.SectionLabs, ID: "lab3_1"},
		{Type: domain.SectionLabs, ID: "lab1_2"},
	} {
		_, err := s.MarkComplete(ctx, k.Type, k.ID, true)
		require.NoError(t, err)
	}

	key, ok := s.LastVisited()
	require.True(t, ok)
	assert.Equal(t, domain.SectionKey{Type: domain.SectionLabs, ID: "lab1_2"}, key)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.MarkComplete(ctx, domain.SectionStudyGuide, "intro", true)
	require.NoError(t, err)
	before := s.Snapshot().LastUpdated

	require.NoError(t, s.Reset(ctx))
	assert.Zero(t, s.CompletionPercentage(""))
	assert.False(t, s.IsComplete(domain.SectionStudyGuide, "intro"))
	_, ok := s.LastVisited()
	assert.False(t, ok)
	assert.True(t, s.Snapshot().LastUpdated.After(before.Time))
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	repo := &failingRepo{Repository: store.NewMemory(), fail: true}
	s, err := Open(context.Background(), repo, WithClock(newStepClock().Now))
	require.NoError(t, err)

	_, err = s.MarkComplete(context.Background(), domain.SectionLabs, "lab1_1", true)
	assert.ErrorIs(t, err, ErrPersist)
	assert.True(t, s.IsComplete(domain.SectionLabs, "lab1_1"))

	assert.ErrorIs(t, s.Reset(context.Background()), ErrPersist)
}

func TestWriteThroughSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	repo, err := store.NewFile(filepath.Join(t.TempDir(), "progress.json"), nil)
	require.NoError(t, err)

	s, err := Open(ctx, repo, WithClock(newStepClock().Now))
	require.NoError(t, err)
	_, err = s.MarkComplete(ctx, domain.SectionStudyGuide, "domain1", true)
	require.NoError(t, err)

	reopened, err := Open(ctx, repo)
	require.NoError(t, err)
	assert.True(t, reopened.IsComplete(domain.SectionStudyGuide, "domain1"))
	key, ok := reopened.LastVisited()
	require.True(t, ok)
	assert.Equal(t, "domain1", key.ID)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	sum := s.Summary()
	assert.Nil(t, sum.LastVisited)
	assert.Zero(t, sum.Touched)

	_, err := s.MarkComplete(ctx, domain.SectionStudyGuide, "intro", true)
	require.NoError(t, err)
	_, err = s.MarkComplete(ctx, domain.SectionLabs, "lab1_1", false)
	require.NoError(t, err)

	sum = s.Summary()
	assert.Equal(t, 2, sum.Touched)
	assert.Equal(t, 1, sum.Completed)
	assert.InDelta(t, 50.0, sum.Overall, 0.001)
	assert.InDelta(t, 100.0, sum.StudyGuide, 0.001)
	assert.Zero(t, sum.Labs)
	require.NotNil(t, sum.LastVisited)
	assert.Equal(t, "lab1_1", sum.LastVisited.ID)
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := []string{"lab1_1", "lab1_2", "lab1_3", "lab2_1"}[i%4]
			_, _ = s.MarkComplete(ctx, domain.SectionLabs, id, i%2 == 0)
			_ = s.CompletionPercentage("")
			_, _ = s.LastVisited()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, s.Snapshot().Len())
}
