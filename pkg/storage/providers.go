package storage

import (
	"context"
	"database/sql"
	"path/filepath"

	bunrepo "github.com/goliatone/go-dispenser/internal/storage/bun"
	"github.com/goliatone/go-dispenser/internal/storage/file"
	"github.com/goliatone/go-dispenser/internal/storage/memory"
	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Providers exposes all stores needed by services.
type Providers struct {
	Inventory store.InventoryStore
	Settings  store.SettingsStore
	Audit     store.AuditRepository
}

type Option func(*Providers)

// WithAuditRepository swaps the audit repository, e.g. to keep a text log
// next to a database-backed inventory.
func WithAuditRepository(repo store.AuditRepository) Option {
	return func(p *Providers) {
		if repo != nil {
			p.Audit = repo
		}
	}
}

// NewMemoryProviders returns stores backed by in-memory maps.
func NewMemoryProviders(seed domain.Inventory, opts ...Option) Providers {
	providers := Providers{
		Inventory: memory.NewInventoryStore(seed),
		Settings:  memory.NewSettingsStore(),
		Audit:     memory.NewAuditRepository(),
	}
	for _, opt := range opts {
		opt(&providers)
	}
	return providers
}

// NewFileProviders keeps accounts.json, gen_bot_config.json and
// gen_bot_log.txt inside dir.
func NewFileProviders(dir string, opts ...Option) Providers {
	providers := Providers{
		Inventory: file.NewInventoryStore(filepath.Join(dir, file.DefaultInventoryFile)),
		Settings:  file.NewSettingsStore(filepath.Join(dir, file.DefaultSettingsFile)),
		Audit:     file.NewAuditLog(filepath.Join(dir, file.DefaultAuditFile)),
	}
	for _, opt := range opts {
		opt(&providers)
	}
	return providers
}

// NewBunProviders wires Bun-backed stores. The caller owns the *bun.DB
// lifecycle and is expected to run bunrepo.EnsureSchema or migrations first.
func NewBunProviders(db *bun.DB, opts ...Option) Providers {
	if db == nil {
		panic("storage: bun DB is required")
	}

	persistence.RegisterModel(bunrepo.Models()...)

	providers := Providers{
		Inventory: bunrepo.NewInventoryStore(db),
		Settings:  bunrepo.NewSettingsStore(db),
		Audit:     bunrepo.NewAuditRepository(db),
	}
	for _, opt := range opts {
		opt(&providers)
	}
	return providers
}

// OpenSQLite opens a Bun handle over the sqlite shim driver. The caller
// closes it.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// EnsureSchema creates the Bun tables used by NewBunProviders.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	return bunrepo.EnsureSchema(ctx, db)
}
