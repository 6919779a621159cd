package memory

import (
	"context"
	"sync"

	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
)

// InventoryStore keeps the inventory document in memory. FailSave lets tests
// simulate persistence failures.
type InventoryStore struct {
	mu       sync.Mutex
	doc      domain.Inventory
	saves    int
	FailSave error
	FailLoad error
}

var _ store.InventoryStore = (*InventoryStore)(nil)

// NewInventoryStore seeds the store with an optional initial document.
func NewInventoryStore(seed domain.Inventory) *InventoryStore {
	if seed == nil {
		seed = domain.Inventory{}
	}
	return &InventoryStore{doc: seed.Clone()}
}

func (s *InventoryStore) Load(ctx context.Context) (domain.Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailLoad != nil {
		return nil, s.FailLoad
	}
	return s.doc.Clone(), nil
}

func (s *InventoryStore) Save(ctx context.Context, inv domain.Inventory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	s.doc = inv.Clone()
	s.saves++
	return nil
}

// Snapshot returns a copy of the last saved document.
func (s *InventoryStore) Snapshot() domain.Inventory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Saves reports how many successful saves happened.
func (s *InventoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
