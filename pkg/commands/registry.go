package commands

import (
	command "github.com/goliatone/go-command"
	internalcommands "github.com/goliatone/go-dispenser/internal/commands"
	"github.com/goliatone/go-dispenser/internal/distributor"
	"github.com/goliatone/go-dispenser/internal/inventory"
	"github.com/goliatone/go-dispenser/internal/settings"
	"github.com/goliatone/go-dispenser/pkg/activity"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
	"github.com/goliatone/go-dispenser/pkg/interfaces/platform"
)

// Re-export request types so consumers need not import internal packages.
type (
	Issue         = internalcommands.Issue
	AddSecrets    = internalcommands.AddSecrets
	AddResult     = internalcommands.AddResult
	SetCooldown   = internalcommands.SetCooldown
	SetChannel    = internalcommands.SetChannel
	SetAdminRole  = internalcommands.SetAdminRole
	ListInventory = internalcommands.ListInventory
	Outcome       = distributor.Outcome
	Stock         = inventory.Stock
)

// Registry exposes go-command compatible handlers backed by the module services.
type Registry struct {
	Catalog       *internalcommands.Catalog
	Issue         command.Commander[Issue]
	AddSecrets    command.Commander[AddSecrets]
	SetCooldown   command.Commander[SetCooldown]
	SetChannel    command.Commander[SetChannel]
	SetAdminRole  command.Commander[SetAdminRole]
	ListInventory command.Querier[ListInventory, Stock]
}

// Dependencies mirror the internal command dependencies.
type Dependencies struct {
	Distributor *distributor.Service
	Inventory   *inventory.Service
	Settings    *settings.Service
	Authorizer  platform.Authorizer
	Logger      logger.Logger
	Activity    activity.Hooks
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	internal := internalcommands.Dependencies{
		Authorizer: deps.Authorizer,
		Logger:     deps.Logger,
		Activity:   deps.Activity,
	}
	// typed nils would slip past the catalog checks
	if deps.Distributor != nil {
		internal.Distributor = deps.Distributor
	}
	if deps.Inventory != nil {
		internal.Inventory = deps.Inventory
	}
	if deps.Settings != nil {
		internal.Settings = deps.Settings
	}
	catalog, err := internalcommands.NewCatalog(internal)
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:       catalog,
		Issue:         catalog.Issue,
		AddSecrets:    catalog.AddSecrets,
		SetCooldown:   catalog.SetCooldown,
		SetChannel:    catalog.SetChannel,
		SetAdminRole:  catalog.SetAdminRole,
		ListInventory: catalog.ListInventory,
	}, nil
}

// Commanders returns every handler so callers can register them with go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	return []any{
		r.Issue,
		r.AddSecrets,
		r.SetCooldown,
		r.SetChannel,
		r.SetAdminRole,
		r.ListInventory,
	}
}
