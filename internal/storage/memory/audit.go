package memory

import (
	"context"

	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
)

// AuditRepository keeps audit entries in memory.
type AuditRepository struct {
	base baseMemoryRepo[domain.AuditEntry]
}

var _ store.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{
		base: newBaseMemoryRepo(func(e *domain.AuditEntry) *domain.RecordMeta { return &e.RecordMeta }),
	}
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	return r.base.create(ctx, entry)
}

func (r *AuditRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.AuditEntry], error) {
	return r.base.list(ctx, opts)
}
