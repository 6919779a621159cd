package bunrepo

import (
	"context"
	"fmt"

	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/uptrace/bun"
)

// Models lists every table owned by this package.
func Models() []any {
	return []any{
		(*inventoryCategory)(nil),
		(*inventorySecret)(nil),
		(*settingRow)(nil),
		(*domain.AuditEntry)(nil),
	}
}

// EnsureSchema creates the tables when they are missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("bunrepo: create table for %T: %w", model, err)
		}
	}
	return nil
}
