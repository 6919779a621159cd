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

// DefaultInventoryFile is the inventory document name.
const DefaultInventoryFile = "accounts.json"

// InventoryStore reads and writes a {"category": ["id:secret", ...]} document.
type InventoryStore struct {
	mu   sync.Mutex
	path string
}

var _ store.InventoryStore = (*InventoryStore)(nil)

func NewInventoryStore(path string) *InventoryStore {
	return &InventoryStore{path: path}
}

// Path returns the document location.
func (s *InventoryStore) Path() string { return s.path }

func (s *InventoryStore) Load(ctx context.Context) (domain.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeJSON(s.path, map[string][]string{}); err != nil {
			return domain.Inventory{}, err
		}
		return domain.Inventory{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file: read inventory: %w", err)
	}

	var doc map[string][]string
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("file: decode inventory: %w", err)
	}
	inv := make(domain.Inventory, len(doc))
	for name, lines := range doc {
		category, err := domain.ParseCategory(name)
		if err != nil {
			continue
		}
		records := inv[category]
		if records == nil {
			records = make([]domain.SecretRecord, 0, len(lines))
		}
		for _, line := range lines {
			records = append(records, domain.SecretRecord(line))
		}
		inv[category] = records
	}
	return inv, nil
}

func (s *InventoryStore) Save(ctx context.Context, inv domain.Inventory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := make(map[string][]string, len(inv))
	for category, records := range inv {
		lines := make([]string, 0, len(records))
		for _, record := range records {
			lines = append(lines, string(record))
		}
		doc[string(category)] = lines
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.path, doc)
}
