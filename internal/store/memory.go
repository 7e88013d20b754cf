package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// MemoryStore is an in-process KeywordStore for tests and dry runs.
type MemoryStore struct {
	mu       sync.Mutex
	keywords map[string][]string
	runs     map[string]Run
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		keywords: make(map[string][]string),
		runs:     make(map[string]Run),
	}
}

func (m *MemoryStore) Migrate(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Keywords(_ context.Context, item string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.keywords[item]), nil
}

func (m *MemoryStore) AddKeyword(_ context.Context, item, keyword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.Contains(m.keywords[item], keyword) {
		return nil
	}
	m.keywords[item] = append(m.keywords[item], keyword)
	return nil
}

func (m *MemoryStore) StartRun(_ context.Context, dir string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	r := Run{ID: uuid.New().String(), Dir: dir, Status: RunStatusRunning, CreatedAt: now, UpdatedAt: now}
	m.runs[r.ID] = r
	return &r, nil
}

func (m *MemoryStore) FinishRun(_ context.Context, runID string, summary RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	if !ok {
		return eris.Errorf("run not found: %s", runID)
	}
	r.Status = RunStatusComplete
	r.Summary = &summary
	r.UpdatedAt = time.Now().UTC()
	m.runs[runID] = r
	return nil
}

func (m *MemoryStore) GetRun(_ context.Context, runID string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	if !ok {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	return &r, nil
}
