package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
)

// DefaultSettingsFile is the settings document name.
const DefaultSettingsFile = "gen_bot_config.json"

// SettingsStore keeps the settings record as a flat JSON document.
type SettingsStore struct {
	mu   sync.Mutex
	path string
}

var _ store.SettingsStore = (*SettingsStore)(nil)

func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Load returns the fields present in the document; a missing file yields an
// empty patch.
func (s *SettingsStore) Load(ctx context.Context) (domain.SettingsPatch, error) {
	if err := ctx.Err(); err != nil {
		return domain.SettingsPatch{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.SettingsPatch{}, nil
	}
	if err != nil {
		return domain.SettingsPatch{}, fmt.Errorf("file: read settings: %w", err)
	}
	var patch domain.SettingsPatch
	if err := json.Unmarshal(payload, &patch); err != nil {
		return domain.SettingsPatch{}, fmt.Errorf("file: decode settings: %w", err)
	}
	return patch, nil
}

func (s *SettingsStore) Save(ctx context.Context, settings domain.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.path, settings)
}
