package bunrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
	"github.com/uptrace/bun"
)

type inventoryCategory struct {
	bun.BaseModel `bun:"table:inventory_categories"`

	Name      string    `bun:",pk"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

type inventorySecret struct {
	bun.BaseModel `bun:"table:inventory_secrets"`

	ID       int64  `bun:",pk,autoincrement"`
	Category string `bun:",notnull,unique:category_position"`
	Position int    `bun:",notnull,unique:category_position"`
	Value    string `bun:",notnull"`
}

// InventoryStore keeps the inventory in two tables. Save replaces both inside
// one transaction, preserving whole-document semantics.
type InventoryStore struct {
	db *bun.DB
}

var _ store.InventoryStore = (*InventoryStore)(nil)

func NewInventoryStore(db *bun.DB) *InventoryStore {
	return &InventoryStore{db: db}
}

func (s *InventoryStore) Load(ctx context.Context) (domain.Inventory, error) {
	var categories []inventoryCategory
	if err := s.db.NewSelect().Model(&categories).Order("name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	var secrets []inventorySecret
	if err := s.db.NewSelect().Model(&secrets).Order("category ASC", "position ASC").Scan(ctx); err != nil {
		return nil, err
	}

	inv := make(domain.Inventory, len(categories))
	for _, c := range categories {
		inv[domain.Category(c.Name)] = []domain.SecretRecord{}
	}
	for _, row := range secrets {
		category := domain.Category(row.Category)
		inv[category] = append(inv[category], domain.SecretRecord(row.Value))
	}
	return inv, nil
}

func (s *InventoryStore) Save(ctx context.Context, inv domain.Inventory) error {
	categories := make([]inventoryCategory, 0, len(inv))
	secrets := make([]inventorySecret, 0, inv.Total())
	for category, records := range inv {
		categories = append(categories, inventoryCategory{Name: string(category)})
		for i, record := range records {
			secrets = append(secrets, inventorySecret{
				Category: string(category),
				Position: i,
				Value:    string(record),
			})
		}
	}

	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*inventorySecret)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*inventoryCategory)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		if len(categories) > 0 {
			if _, err := tx.NewInsert().Model(&categories).Exec(ctx); err != nil {
				return err
			}
		}
		if len(secrets) > 0 {
			if _, err := tx.NewInsert().Model(&secrets).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
