package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecordMeta captures identifiers and audit fields shared across entities.
type RecordMeta struct {
	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt time.Time `bun:",soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureID assigns a UUID when the struct is about to be persisted.
func (m *RecordMeta) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// JSONMap persists arbitrary metadata fields as JSON.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if m == nil {
		return errors.New("JSONMap: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("JSONMap: unsupported type %T", value)
	}
}

// AuditEntry is one line of the append-only action log.
type AuditEntry struct {
	bun.BaseModel `bun:"table:audit_entries"`
	RecordMeta

	Actor      string    `bun:",nullzero,notnull" json:"actor"`
	Action     string    `bun:",nullzero,notnull" json:"action"`
	Details    string    `bun:",nullzero" json:"details"`
	OccurredAt time.Time `bun:",nullzero,notnull" json:"occurred_at"`
	Metadata   JSONMap   `bun:"type:jsonb,nullzero" json:"metadata,omitempty"`
}

// Audit actions recorded by the distributor and admin services.
const (
	ActionIssued          = "issued"
	ActionRolledBack      = "delivery_rolled_back"
	ActionAdded           = "accounts_added"
	ActionStockChecked    = "stock_checked"
	ActionCooldownChanged = "cooldown_changed"
	ActionChannelChanged  = "channel_changed"
	ActionAdminChanged    = "admin_role_changed"
)
