// Package store provides ShiftStore implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anesta/shift-engine/schedule"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	shifts map[schedule.ShiftID]schedule.Shift
}

func NewMemory() *Memory {
	return &Memory{shifts: make(map[schedule.ShiftID]schedule.Shift)}
}

func (m *Memory) Get(_ context.Context, id schedule.ShiftID) (schedule.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.shifts[id]
	if !ok {
		return schedule.Shift{}, schedule.ErrNotFound
	}
	return s, nil
}

func (m *Memory) ListByOwner(_ context.Context, ownerID schedule.OwnerID) ([]schedule.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []schedule.Shift
	for _, s := range m.shifts {
		if s.OwnerID == ownerID {
			result = append(result, s)
		}
	}
	sortByStart(result)
	return result, nil
}

func (m *Memory) ListByOwnerRange(_ context.Context, ownerID schedule.OwnerID, from, to time.Time) ([]schedule.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []schedule.Shift
	for _, s := range m.shifts {
		if s.OwnerID == ownerID && schedule.IntervalsOverlap(s.StartAt, s.EndAt, from, to) {
			result = append(result, s)
		}
	}
	sortByStart(result)
	return result, nil
}

func (m *Memory) ListSeries(_ context.Context, rootID schedule.ShiftID) ([]schedule.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []schedule.Shift
	for _, s := range m.shifts {
		if s.ID == rootID || s.ParentShiftID == rootID {
			result = append(result, s)
		}
	}
	sortByStart(result)
	return result, nil
}

func (m *Memory) Create(_ context.Context, s schedule.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[s.ID] = s
	return nil
}

// CreateBatch writes all shifts under one lock. The map write cannot fail
// partway, which gives the atomicity the interface asks for.
func (m *Memory) CreateBatch(_ context.Context, shifts []schedule.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range shifts {
		m.shifts[s.ID] = s
	}
	return nil
}

func (m *Memory) Update(_ context.Context, s schedule.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.shifts[s.ID]; !ok {
		return schedule.ErrNotFound
	}
	m.shifts[s.ID] = s
	return nil
}

func (m *Memory) Delete(_ context.Context, id schedule.ShiftID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.shifts[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(m.shifts, id)
	return nil
}

func (m *Memory) DeleteSeries(_ context.Context, rootID schedule.ShiftID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.shifts {
		if s.ID == rootID || s.ParentShiftID == rootID {
			delete(m.shifts, id)
		}
	}
	return nil
}

func sortByStart(shifts []schedule.Shift) {
	sort.Slice(shifts, func(i, j int) bool {
		return shifts[i].StartAt.Before(shifts[j].StartAt)
	})
}
