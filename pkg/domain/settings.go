package domain

import "time"

// Default settings values.
const (
	DefaultCooldownMinutes = 60
	DefaultEmbedColor      = 0x2F3136
	DefaultAccentColor     = 0x5865F2
)

// Settings is the runtime configuration record mutated by admin commands.
type Settings struct {
	GenerationChannelID int64 `json:"generation_channel_id"`
	CooldownMinutes     int   `json:"cooldown_minutes"`
	AdminRoleID         int64 `json:"admin_role_id"`
	EmbedColor          int   `json:"embed_color"`
	AccentColor         int   `json:"accent_color"`
}

// DefaultSettings returns the baseline record; the generation channel comes
// from the environment.
func DefaultSettings(channelID int64) Settings {
	return Settings{
		GenerationChannelID: channelID,
		CooldownMinutes:     DefaultCooldownMinutes,
		AdminRoleID:         0,
		EmbedColor:          DefaultEmbedColor,
		AccentColor:         DefaultAccentColor,
	}
}

// Cooldown returns the cooldown window as a duration.
func (s Settings) Cooldown() time.Duration {
	return time.Duration(s.CooldownMinutes) * time.Minute
}

// SettingsPatch carries the fields present in a persisted document. Nil
// fields were absent and fall back to defaults.
type SettingsPatch struct {
	GenerationChannelID *int64 `json:"generation_channel_id,omitempty"`
	CooldownMinutes     *int   `json:"cooldown_minutes,omitempty"`
	AdminRoleID         *int64 `json:"admin_role_id,omitempty"`
	EmbedColor          *int   `json:"embed_color,omitempty"`
	AccentColor         *int   `json:"accent_color,omitempty"`
}

// Apply overlays the present fields on base.
func (p SettingsPatch) Apply(base Settings) Settings {
	if p.GenerationChannelID != nil {
		base.GenerationChannelID = *p.GenerationChannelID
	}
	if p.CooldownMinutes != nil && *p.CooldownMinutes >= 0 {
		base.CooldownMinutes = *p.CooldownMinutes
	}
	if p.AdminRoleID != nil {
		base.AdminRoleID = *p.AdminRoleID
	}
	if p.EmbedColor != nil {
		base.EmbedColor = *p.EmbedColor
	}
	if p.AccentColor != nil {
		base.AccentColor = *p.AccentColor
	}
	return base
}

// PatchFrom builds a fully populated patch from s.
func PatchFrom(s Settings) SettingsPatch {
	return SettingsPatch{
		GenerationChannelID: &s.GenerationChannelID,
		CooldownMinutes:     &s.CooldownMinutes,
		AdminRoleID:         &s.AdminRoleID,
		EmbedColor:          &s.EmbedColor,
		AccentColor:         &s.AccentColor,
	}
}
