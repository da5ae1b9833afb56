package storage

import (
	"context"
	"sync"

	"hazard-admin/internal/models"

	"go.uber.org/zap"
)

// MemoryStore keeps the encoded list in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	raw   []byte
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, zones []models.HazardZone) error {
	b, err := encodeZones(zones)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = b
	m.saves++
	return nil
}

func (m *MemoryStore) Load(_ context.Context) ([]models.HazardZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return []models.HazardZone{}, nil
	}
	return decodeZones(m.raw, "memory", zap.NewNop()), nil
}

// SetRaw replaces the stored bytes as-is.
func (m *MemoryStore) SetRaw(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = b
}

// Raw returns the last stored bytes.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.raw
}

// Saves counts successful Save calls.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
