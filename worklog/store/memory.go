// Package store provides worklog.Store implementations.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/worklog-engine/worklog"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records []worklog.WorklogRecord
	nextID  int
}

func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

// List returns a copy of the current snapshot in insertion order.
func (m *Memory) List(_ context.Context) ([]worklog.WorklogRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]worklog.WorklogRecord, len(m.records))
	copy(result, m.records)
	return result, nil
}

func (m *Memory) Create(_ context.Context, c worklog.Candidate) (worklog.WorklogRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := worklog.WorklogRecord{
		ID:            fmt.Sprintf("wl-%d", m.nextID),
		Date:          c.Date,
		DurationHours: c.DurationHours,
		Reason:        c.Reason,
		Notes:         c.Notes,
	}
	m.nextID++
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *Memory) Update(_ context.Context, id string, c worklog.Candidate) (worklog.WorklogRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Date = c.Date
			m.records[i].DurationHours = c.DurationHours
			m.records[i].Reason = c.Reason
			m.records[i].Notes = c.Notes
			return m.records[i], nil
		}
	}
	return worklog.WorklogRecord{}, worklog.ErrNotFound
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.records {
		if m.records[i].ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return worklog.ErrNotFound
}
