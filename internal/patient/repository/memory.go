package repository

import (
	"context"
	"sync"

	"github.com/itakarlapalli/subcentre/internal/patient"
)

// MemoryRepo keeps records in process memory. Used for tests and for
// STORE_BACKEND=memory; nothing survives a restart.
type MemoryRepo struct {
	mu     sync.RWMutex
	store  map[int64]*patient.Patient
	nextID int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[int64]*patient.Patient), nextID: 1}
}

func (m *MemoryRepo) Create(_ context.Context, f patient.Fields) (*patient.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &patient.Patient{ID: m.nextID, CreatedAt: now()}
	f.Apply(p)
	p.UpdatedAt = p.CreatedAt
	m.nextID++
	m.store[p.ID] = p
	return clone(p), nil
}

func (m *MemoryRepo) List(_ context.Context) ([]*patient.Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*patient.Patient, 0, len(m.store))
	for _, p := range m.store {
		out = append(out, clone(p))
	}
	patient.SortNewestFirst(out)
	return out, nil
}

func (m *MemoryRepo) Update(_ context.Context, id int64, f patient.Fields) (*patient.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	f.Apply(p)
	p.UpdatedAt = now()
	return clone(p), nil
}

func (m *MemoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepo) Ping(context.Context) error { return nil }

func (m *MemoryRepo) Close() error { return nil }
