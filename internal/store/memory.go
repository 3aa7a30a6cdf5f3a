package store

import (
	"context"
	"sort"
	"sync"

	"github.com/verte-zerg/scdash/internal/model"
)

// Memory is an in-process ResultStore and RunLog.
type Memory struct {
	mu   sync.RWMutex
	kv   map[string]string
	runs []model.RunRecord
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{kv: map[string]string{}}
}

// Get implements ResultStore.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.kv[key]
	return v, ok, nil
}

// Put implements ResultStore.
func (m *Memory) Put(_ context.Context, entries ...Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.kv[e.Key] = e.Value
	}
	return nil
}

// RecordRun implements RunLog.
func (m *Memory) RecordRun(_ context.Context, rec model.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, rec)
	return nil
}

// ListRuns implements RunLog.
func (m *Memory) ListRuns(_ context.Context, limit int) ([]model.RunRecord, error) {
	m.mu.RLock()
	runs := append([]model.RunRecord(nil), m.runs...)
	m.mu.RUnlock()
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
