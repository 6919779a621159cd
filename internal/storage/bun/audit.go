package bunrepo

import (
	"context"

	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AuditRepository stores audit entries through go-repository-bun.
type AuditRepository struct {
	base baseRepository[domain.AuditEntry]
}

var _ store.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository(db *bun.DB) *AuditRepository {
	handlers := repository.ModelHandlers[*domain.AuditEntry]{
		NewRecord: func() *domain.AuditEntry { return &domain.AuditEntry{} },
		GetID:     func(e *domain.AuditEntry) uuid.UUID { return e.ID },
		SetID: func(e *domain.AuditEntry, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(e *domain.AuditEntry) string { return e.ID.String() },
	}
	return &AuditRepository{
		base: newBaseRepository[domain.AuditEntry](db, handlers, func(e *domain.AuditEntry) *domain.RecordMeta { return &e.RecordMeta }),
	}
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	return r.base.create(ctx, entry)
}

func (r *AuditRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.AuditEntry], error) {
	return r.base.list(ctx, opts)
}
