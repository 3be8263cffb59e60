package store

import (
	"context"
	"sync"

	"github.com/ashureev/studyguide/internal/domain"
)

// Memory keeps the document in process memory only.
type Memory struct {
	mu  sync.Mutex
	doc domain.ProgressDocument
	set bool
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (domain.ProgressDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return domain.NewProgressDocument(domain.Timestamp{}), nil
	}
	return m.doc.Clone(), nil
}

func (m *Memory) Save(_ context.Context, doc domain.ProgressDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = doc.Clone()
	m.set = true
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
