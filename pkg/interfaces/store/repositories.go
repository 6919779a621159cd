package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-dispenser/pkg/domain"
)

// ErrNotFound is returned when a record cannot be located.
var ErrNotFound = errors.New("store: not found")

// ListOptions capture pagination and filtering knobs common to repositories.
type ListOptions struct {
	Limit  int
	Offset int
	Since  time.Time
	Until  time.Time
}

// ListResult bundles records and totals.
type ListResult[T any] struct {
	Items []T
	Total int
}

// InventoryStore persists the whole inventory document. Save always
// overwrites the full document; callers sequence read-modify-write.
// Load on a missing document creates an empty one and returns it.
type InventoryStore interface {
	Load(ctx context.Context) (domain.Inventory, error)
	Save(ctx context.Context, inv domain.Inventory) error
}

// SettingsStore persists the runtime settings record. Load returns only the
// fields present in the durable document.
type SettingsStore interface {
	Load(ctx context.Context) (domain.SettingsPatch, error)
	Save(ctx context.Context, settings domain.Settings) error
}

// AuditRepository stores the append-only action log.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, opts ListOptions) (ListResult[domain.AuditEntry], error)
}
