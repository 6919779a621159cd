package bunrepo

import (
	"context"
	"time"

	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
	"github.com/uptrace/bun"
)

const (
	settingGenerationChannel = "generation_channel_id"
	settingCooldownMinutes   = "cooldown_minutes"
	settingAdminRole         = "admin_role_id"
	settingEmbedColor        = "embed_color"
	settingAccentColor       = "accent_color"
)

type settingRow struct {
	bun.BaseModel `bun:"table:settings"`

	Key       string    `bun:",pk"`
	Value     int64     `bun:",notnull"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// SettingsStore keeps one row per settings field.
type SettingsStore struct {
	db *bun.DB
}

var _ store.SettingsStore = (*SettingsStore)(nil)

func NewSettingsStore(db *bun.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Load(ctx context.Context) (domain.SettingsPatch, error) {
	var rows []settingRow
	if err := s.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return domain.SettingsPatch{}, err
	}
	var patch domain.SettingsPatch
	for _, row := range rows {
		value := row.Value
		switch row.Key {
		case settingGenerationChannel:
			patch.GenerationChannelID = &value
		case settingCooldownMinutes:
			v := int(value)
			patch.CooldownMinutes = &v
		case settingAdminRole:
			patch.AdminRoleID = &value
		case settingEmbedColor:
			v := int(value)
			patch.EmbedColor = &v
		case settingAccentColor:
			v := int(value)
			patch.AccentColor = &v
		}
	}
	return patch, nil
}

func (s *SettingsStore) Save(ctx context.Context, settings domain.Settings) error {
	now := time.Now().UTC()
	rows := []settingRow{
		{Key: settingGenerationChannel, Value: settings.GenerationChannelID, UpdatedAt: now},
		{Key: settingCooldownMinutes, Value: int64(settings.CooldownMinutes), UpdatedAt: now},
		{Key: settingAdminRole, Value: settings.AdminRoleID, UpdatedAt: now},
		{Key: settingEmbedColor, Value: int64(settings.EmbedColor), UpdatedAt: now},
		{Key: settingAccentColor, Value: int64(settings.AccentColor), UpdatedAt: now},
	}
	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
