package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	"gopkg.in/yaml.v3"
)

// Storage drivers understood by the module.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Environment variables read by ApplyEnv.
const (
	EnvChannelID = "CHANNEL_ID"
	EnvBotToken  = "BOT_TOKEN"
)

// Config captures module-level configuration knobs. Runtime settings that
// admins change at runtime live in the settings store, not here.
type Config struct {
	Storage      StorageConfig      `mapstructure:"storage" json:"storage" yaml:"storage"`
	Delivery     DeliveryConfig     `mapstructure:"delivery" json:"delivery" yaml:"delivery"`
	Bot          BotConfig          `mapstructure:"bot" json:"bot" yaml:"bot"`
	Audit        AuditConfig        `mapstructure:"audit" json:"audit" yaml:"audit"`
	Localization LocalizationConfig `mapstructure:"localization" json:"localization" yaml:"localization"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver" json:"driver" yaml:"driver"`
	Dir    string `mapstructure:"dir" json:"dir" yaml:"dir"`
	DSN    string `mapstructure:"dsn" json:"dsn" yaml:"dsn"`
}

// DeliveryConfig selects the route used for direct delivery and the
// credentials of each adapter. MaxAttempts above one retries sends that fail
// as unreachable; other failures roll back at once.
type DeliveryConfig struct {
	Route       string         `mapstructure:"route" json:"route" yaml:"route"`
	Timeout     time.Duration  `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
	MaxAttempts int            `mapstructure:"max_attempts" json:"max_attempts" yaml:"max_attempts"`
	Telegram    TelegramConfig `mapstructure:"telegram" json:"telegram" yaml:"telegram"`
	Email       EmailConfig    `mapstructure:"email" json:"email" yaml:"email"`
}

// TelegramConfig holds Bot API credentials.
type TelegramConfig struct {
	Token string `mapstructure:"token" json:"token" yaml:"token"`
}

// EmailConfig configures the SES adapter.
type EmailConfig struct {
	From   string `mapstructure:"from" json:"from" yaml:"from"`
	Region string `mapstructure:"region" json:"region" yaml:"region"`
	DryRun bool   `mapstructure:"dry_run" json:"dry_run" yaml:"dry_run"`
}

// BotConfig covers the chat platform connection.
type BotConfig struct {
	Token     string `mapstructure:"token" json:"token" yaml:"token"`
	GuildID   int64  `mapstructure:"guild_id" json:"guild_id" yaml:"guild_id"`
	ChannelID int64  `mapstructure:"channel_id" json:"channel_id" yaml:"channel_id"`
	UseEmbed  bool   `mapstructure:"use_embed" json:"use_embed" yaml:"use_embed"`
}

// AuditConfig controls the audit trail. It is on unless Disabled is set.
type AuditConfig struct {
	Disabled bool   `mapstructure:"disabled" json:"disabled" yaml:"disabled"`
	File     string `mapstructure:"file" json:"file" yaml:"file"`
}

// LocalizationConfig controls the default locale.
type LocalizationConfig struct {
	DefaultLocale string `mapstructure:"default_locale" json:"default_locale" yaml:"default_locale"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Storage: StorageConfig{
			Driver: DriverFile,
			Dir:    ".",
		},
		Delivery: DeliveryConfig{
			Route:       "dm:console",
			Timeout:     10 * time.Second,
			MaxAttempts: 1,
		},
		Audit: AuditConfig{
			File: "gen_bot_log.txt",
		},
		Localization: LocalizationConfig{DefaultLocale: "en"},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if c.Localization.DefaultLocale == "" {
		return errors.New("localization.default_locale is required")
	}
	switch c.Storage.Driver {
	case DriverMemory, DriverFile:
	case DriverSQLite:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	if strings.TrimSpace(c.Delivery.Route) == "" {
		return errors.New("delivery.route is required")
	}
	if c.Delivery.Timeout < 0 {
		return fmt.Errorf("delivery.timeout must be >= 0")
	}
	if c.Delivery.MaxAttempts < 0 {
		return fmt.Errorf("delivery.max_attempts must be >= 0")
	}
	if c.Bot.ChannelID < 0 {
		return fmt.Errorf("bot.channel_id must be >= 0")
	}
	return nil
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers.
// When cfgx yields a zero value the input is decoded through JSON instead.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if settings.env != nil {
		if err := cfg.ApplyEnv(settings.env); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFile reads a YAML or JSON document and passes it through Load. An
// empty path loads the defaults.
func LoadFile(path string, opts ...LoadOption) (Config, error) {
	if path == "" {
		return Load(Defaults(), opts...)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	doc := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &doc)
	default:
		err = yaml.Unmarshal(raw, &doc)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return Load(doc, opts...)
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
	env       func(string) string
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

// WithEnv overlays CHANNEL_ID and BOT_TOKEN from lookup, usually os.Getenv.
func WithEnv(lookup func(string) string) LoadOption {
	return func(lo *loadOptions) {
		lo.env = lookup
	}
}

// ApplyEnv overrides the bot section from environment values.
func (c *Config) ApplyEnv(lookup func(string) string) error {
	if v := strings.TrimSpace(lookup(EnvChannelID)); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s must be numeric: %w", EnvChannelID, err)
		}
		c.Bot.ChannelID = id
	}
	if v := strings.TrimSpace(lookup(EnvBotToken)); v != "" {
		c.Bot.Token = v
	}
	return nil
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.Storage.Driver == "" {
		c.Storage.Driver = defaults.Storage.Driver
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = defaults.Storage.Dir
	}
	if c.Delivery.Route == "" {
		c.Delivery.Route = defaults.Delivery.Route
	}
	if c.Delivery.Timeout == 0 {
		c.Delivery.Timeout = defaults.Delivery.Timeout
	}
	if c.Delivery.MaxAttempts == 0 {
		c.Delivery.MaxAttempts = defaults.Delivery.MaxAttempts
	}
	if c.Audit.File == "" {
		c.Audit.File = defaults.Audit.File
	}
	if c.Localization.DefaultLocale == "" {
		c.Localization.DefaultLocale = defaults.Localization.DefaultLocale
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		*cfg = Defaults()
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
