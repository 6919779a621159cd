package di

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/goliatone/go-dispenser/internal/cooldown"
	"github.com/goliatone/go-dispenser/internal/distributor"
	"github.com/goliatone/go-dispenser/internal/inventory"
	"github.com/goliatone/go-dispenser/internal/settings"
	"github.com/goliatone/go-dispenser/internal/storage/file"
	"github.com/goliatone/go-dispenser/pkg/activity"
	"github.com/goliatone/go-dispenser/pkg/audit"
	"github.com/goliatone/go-dispenser/pkg/commands"
	"github.com/goliatone/go-dispenser/pkg/config"
	"github.com/goliatone/go-dispenser/pkg/delivery"
	"github.com/goliatone/go-dispenser/pkg/delivery/aws_ses"
	"github.com/goliatone/go-dispenser/pkg/delivery/console"
	"github.com/goliatone/go-dispenser/pkg/delivery/discord"
	"github.com/goliatone/go-dispenser/pkg/delivery/telegram"
	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
	"github.com/goliatone/go-dispenser/pkg/interfaces/platform"
	"github.com/goliatone/go-dispenser/pkg/notices"
	"github.com/goliatone/go-dispenser/pkg/retry"
	"github.com/goliatone/go-dispenser/pkg/storage"
	i18n "github.com/goliatone/go-i18n"
	"github.com/uptrace/bun"
)

// Options configure the DI container.
type Options struct {
	Config     config.Config
	Storage    storage.Providers
	Logger     logger.Logger
	Translator i18n.Translator
	Messengers []delivery.Messenger
	Directory  platform.Directory
	Authorizer platform.Authorizer
	Hooks      activity.Hooks
	Clock      func() time.Time
}

// Container wires stores, services, delivery, and commands.
type Container struct {
	Config      config.Config
	Storage     storage.Providers
	Logger      logger.Logger
	Notices     *notices.Service
	Inventory   *inventory.Service
	Cooldowns   *cooldown.Tracker
	Settings    *settings.Service
	Distributor *distributor.Service
	Commands    *commands.Registry
	Messengers  *delivery.Registry
	Deliverer   *delivery.Deliverer
	Activity    activity.Hooks

	db *bun.DB
}

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options.
func New(opts Options) (*Container, error) {
	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lgr := opts.Logger
	if lgr == nil {
		lgr = &logger.Nop{}
	}

	c := &Container{Config: cfg, Logger: lgr}

	providers := opts.Storage
	if providers.Inventory == nil {
		var err error
		providers, c.db, err = openProviders(cfg)
		if err != nil {
			return nil, err
		}
	}
	c.Storage = providers

	hooks := append(activity.Hooks{}, opts.Hooks...)
	if !cfg.Audit.Disabled && providers.Audit != nil {
		hooks = append(hooks, audit.Sink{Repository: providers.Audit, Logger: lgr.With(logger.F("component", "audit"))})
	}
	c.Activity = hooks

	var err error
	if opts.Translator != nil {
		c.Notices, err = notices.NewService(opts.Translator, notices.WithDefaultLocale(cfg.Localization.DefaultLocale))
	} else {
		c.Notices, err = notices.NewDefaultService(cfg.Localization.DefaultLocale)
	}
	if err != nil {
		return nil, c.fail(err)
	}

	messengers := opts.Messengers
	if len(messengers) == 0 {
		messengers = buildMessengers(cfg, lgr)
	}
	c.Messengers = delivery.NewRegistry(messengers...)

	c.Deliverer, err = delivery.NewDeliverer(delivery.DelivererOptions{
		Registry: c.Messengers,
		Composer: c.Notices,
		Route:    cfg.Delivery.Route,
		Retry: retry.Policy{
			MaxAttempts: cfg.Delivery.MaxAttempts,
			Backoff:     retry.DefaultPolicy().Backoff,
		},
		Logger: lgr,
	})
	if err != nil {
		return nil, c.fail(err)
	}

	directory := opts.Directory
	if directory == nil {
		directory = directoryFrom(messengers)
	}
	authorizer := opts.Authorizer
	if authorizer == nil {
		authorizer = authorizerFrom(messengers)
	}

	c.Inventory, err = inventory.NewService(inventory.Dependencies{
		Store:  providers.Inventory,
		Logger: lgr.With(logger.F("component", "inventory")),
	})
	if err != nil {
		return nil, c.fail(err)
	}

	defaults := domain.DefaultSettings(cfg.Bot.ChannelID)
	c.Settings, err = settings.NewService(settings.Dependencies{
		Store:     providers.Settings,
		Directory: directory,
		Defaults:  &defaults,
		Logger:    lgr.With(logger.F("component", "settings")),
		Activity:  hooks,
	})
	if err != nil {
		return nil, c.fail(err)
	}

	c.Cooldowns = cooldown.NewTracker()

	c.Distributor, err = distributor.NewService(distributor.Dependencies{
		Inventory: c.Inventory,
		Cooldowns: c.Cooldowns,
		Courier:   c.Deliverer,
		Settings:  c.Settings,
		Logger:    lgr.With(logger.F("component", "distributor")),
		Activity:  hooks,
		Clock:     opts.Clock,
	})
	if err != nil {
		return nil, c.fail(err)
	}

	c.Commands, err = commands.New(commands.Dependencies{
		Distributor: c.Distributor,
		Inventory:   c.Inventory,
		Settings:    c.Settings,
		Authorizer:  authorizer,
		Logger:      lgr,
		Activity:    hooks,
	})
	if err != nil {
		return nil, c.fail(err)
	}

	return c, nil
}

// Start prepares the schema when the container owns a database, then loads
// settings and inventory. Load failures leave usable defaults in place and
// are returned joined.
func (c *Container) Start(ctx context.Context) error {
	if c.db != nil {
		if err := storage.EnsureSchema(ctx, c.db); err != nil {
			return fmt.Errorf("di: ensure schema: %w", err)
		}
	}
	return errors.Join(c.Settings.Load(ctx), c.Inventory.Load(ctx))
}

// Close releases the database handle opened by New, if any.
func (c *Container) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Container) fail(err error) error {
	_ = c.Close()
	return err
}

func openProviders(cfg config.Config) (storage.Providers, *bun.DB, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return storage.NewMemoryProviders(nil), nil, nil
	case config.DriverSQLite:
		db, err := storage.OpenSQLite(cfg.Storage.DSN)
		if err != nil {
			return storage.Providers{}, nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		return storage.NewBunProviders(db), db, nil
	default:
		var opts []storage.Option
		if cfg.Audit.File != "" && cfg.Audit.File != file.DefaultAuditFile {
			opts = append(opts, storage.WithAuditRepository(file.NewAuditLog(filepath.Join(cfg.Storage.Dir, cfg.Audit.File))))
		}
		return storage.NewFileProviders(cfg.Storage.Dir, opts...), nil, nil
	}
}

// buildMessengers registers the console adapter plus every adapter whose
// credentials are configured.
func buildMessengers(cfg config.Config, lgr logger.Logger) []delivery.Messenger {
	out := []delivery.Messenger{console.New(lgr)}
	if cfg.Bot.Token != "" {
		guild := ""
		if cfg.Bot.GuildID != 0 {
			guild = strconv.FormatInt(cfg.Bot.GuildID, 10)
		}
		out = append(out, discord.New(lgr, discord.WithConfig(discord.Config{
			Token:    cfg.Bot.Token,
			GuildID:  guild,
			Timeout:  cfg.Delivery.Timeout,
			Color:    domain.DefaultEmbedColor,
			UseEmbed: cfg.Bot.UseEmbed,
		})))
	}
	if cfg.Delivery.Telegram.Token != "" {
		out = append(out, telegram.New(lgr, telegram.WithConfig(telegram.Config{
			Token:   cfg.Delivery.Telegram.Token,
			Timeout: cfg.Delivery.Timeout,
		})))
	}
	if cfg.Delivery.Email.From != "" {
		out = append(out, aws_ses.New(lgr, aws_ses.WithConfig(aws_ses.Config{
			From:   cfg.Delivery.Email.From,
			Region: cfg.Delivery.Email.Region,
			DryRun: cfg.Delivery.Email.DryRun,
		})))
	}
	return out
}

// directoryFrom picks the first messenger that can answer existence checks.
func directoryFrom(messengers []delivery.Messenger) platform.Directory {
	for _, m := range messengers {
		if dir, ok := m.(platform.Directory); ok {
			return dir
		}
	}
	return platform.AllowAll{}
}

// authorizerFrom picks the first messenger that can resolve admin rights.
func authorizerFrom(messengers []delivery.Messenger) platform.Authorizer {
	for _, m := range messengers {
		if authz, ok := m.(platform.Authorizer); ok {
			return authz
		}
	}
	return platform.AllowAll{}
}
