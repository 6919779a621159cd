package dispenser

import (
	"context"
	"time"

	"github.com/goliatone/go-dispenser/internal/di"
	"github.com/goliatone/go-dispenser/internal/distributor"
	"github.com/goliatone/go-dispenser/internal/inventory"
	"github.com/goliatone/go-dispenser/internal/settings"
	"github.com/goliatone/go-dispenser/pkg/activity"
	"github.com/goliatone/go-dispenser/pkg/commands"
	"github.com/goliatone/go-dispenser/pkg/config"
	"github.com/goliatone/go-dispenser/pkg/delivery"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
	"github.com/goliatone/go-dispenser/pkg/interfaces/platform"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
	"github.com/goliatone/go-dispenser/pkg/notices"
	"github.com/goliatone/go-dispenser/pkg/storage"
	i18n "github.com/goliatone/go-i18n"
)

// ModuleOptions configure the dispenser module facade.
type ModuleOptions struct {
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

// Module bundles the container and exposes high-level accessors.
type Module struct {
	container *di.Container
}

// NewModule assembles stores, services, delivery, and commands.
func NewModule(opts ModuleOptions) (*Module, error) {
	container, err := di.New(di.Options{
		Config:     opts.Config,
		Storage:    opts.Storage,
		Logger:     opts.Logger,
		Translator: opts.Translator,
		Messengers: opts.Messengers,
		Directory:  opts.Directory,
		Authorizer: opts.Authorizer,
		Hooks:      opts.Hooks,
		Clock:      opts.Clock,
	})
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Start loads persisted settings and inventory. A returned error means a
// store could not be read; the module still runs on defaults.
func (m *Module) Start(ctx context.Context) error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Start(ctx)
}

// Close releases resources owned by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Distributor returns the issuance orchestrator.
func (m *Module) Distributor() *distributor.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Distributor
}

// Inventory returns the inventory service.
func (m *Module) Inventory() *inventory.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Inventory
}

// Settings returns the runtime settings service.
func (m *Module) Settings() *settings.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Settings
}

// Notices returns the localized notice renderer.
func (m *Module) Notices() *notices.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Notices
}

// Commands returns the go-command registry.
func (m *Module) Commands() *commands.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Commands
}

// Messengers exposes the configured delivery registry.
func (m *Module) Messengers() *delivery.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Messengers
}

// AuditLog returns the audit repository.
func (m *Module) AuditLog() store.AuditRepository {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Storage.Audit
}

// Config returns the effective module configuration.
func (m *Module) Config() config.Config {
	if m == nil || m.container == nil {
		return config.Config{}
	}
	return m.container.Config
}

// Container returns the internal DI container.
// This is exposed for advanced use cases like direct storage access.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}
