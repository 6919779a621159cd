package memory

import (
	"context"
	"sync"

	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
)

// SettingsStore keeps the settings document in memory.
type SettingsStore struct {
	mu       sync.Mutex
	patch    domain.SettingsPatch
	FailSave error
}

var _ store.SettingsStore = (*SettingsStore)(nil)

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{}
}

func (s *SettingsStore) Load(ctx context.Context) (domain.SettingsPatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patch, nil
}

func (s *SettingsStore) Save(ctx context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	s.patch = domain.PatchFrom(settings)
	return nil
}
