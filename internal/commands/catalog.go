package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-dispenser/internal/distributor"
	"github.com/goliatone/go-dispenser/internal/inventory"
	"github.com/goliatone/go-dispenser/pkg/activity"
	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
	"github.com/goliatone/go-dispenser/pkg/interfaces/platform"
)

// Catalog exposes go-command compatible handlers for host transports.
type Catalog struct {
	Issue         command.Commander[Issue]
	AddSecrets    command.Commander[AddSecrets]
	SetCooldown   command.Commander[SetCooldown]
	SetChannel    command.Commander[SetChannel]
	SetAdminRole  command.Commander[SetAdminRole]
	ListInventory command.Querier[ListInventory, inventory.Stock]
}

type issueService interface {
	Issue(ctx context.Context, req distributor.Request) (distributor.Outcome, error)
	Stock(ctx context.Context, actor domain.Actor) (inventory.Stock, error)
}

type inventoryService interface {
	Add(ctx context.Context, category domain.Category, lines []string) (int, error)
	CountInCategory(category domain.Category) int
	CountTotal() int
}

type settingsService interface {
	Current() domain.Settings
	SetCooldownMinutes(ctx context.Context, actor domain.Actor, minutes int) (domain.Settings, error)
	SetChannel(ctx context.Context, actor domain.Actor, channelID int64) (domain.Settings, error)
	SetAdminRole(ctx context.Context, actor domain.Actor, roleID int64) (domain.Settings, error)
}

// Dependencies wires services into the command catalog. Authorizer gates the
// admin commands and defaults to platform.AllowAll.
type Dependencies struct {
	Distributor issueService
	Inventory   inventoryService
	Settings    settingsService
	Authorizer  platform.Authorizer
	Logger      logger.Logger
	Activity    activity.Hooks
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Distributor == nil {
		return nil, errors.New("commands: distributor is required")
	}
	if deps.Inventory == nil {
		return nil, errors.New("commands: inventory service is required")
	}
	if deps.Settings == nil {
		return nil, errors.New("commands: settings service is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Authorizer == nil {
		deps.Authorizer = platform.AllowAll{}
	}
	gate := adminGate{authz: deps.Authorizer, settings: deps.Settings, logger: deps.Logger}

	return &Catalog{
		Issue:         issueCommand{svc: deps.Distributor},
		AddSecrets:    addSecretsCommand{gate: gate, svc: deps.Inventory, logger: deps.Logger, activity: deps.Activity},
		SetCooldown:   setCooldownCommand{gate: gate, svc: deps.Settings},
		SetChannel:    setChannelCommand{gate: gate, svc: deps.Settings},
		SetAdminRole:  setAdminRoleCommand{gate: gate, svc: deps.Settings},
		ListInventory: listInventoryQuery{svc: deps.Distributor},
	}, nil
}

// adminGate checks the actor against the admin role currently in settings.
type adminGate struct {
	authz    platform.Authorizer
	settings settingsService
	logger   logger.Logger
}

func (g adminGate) check(ctx context.Context, actor domain.Actor) error {
	ok, err := g.authz.IsAdmin(ctx, actor, g.settings.Current().AdminRoleID)
	if err != nil {
		return err
	}
	if !ok {
		g.logger.Warn("admin command denied", logger.F("actor", actor.String()))
		return fmt.Errorf("%w: %s", domain.ErrForbidden, actor)
	}
	return nil
}

// Issue requests one record. Result, when set, receives the outcome.
type Issue struct {
	Actor    domain.Actor         `json:"actor"`
	Category string               `json:"category"`
	Result   *distributor.Outcome `json:"-"`
}

type issueCommand struct {
	svc issueService
}

func (c issueCommand) Execute(ctx context.Context, msg Issue) error {
	out, err := c.svc.Issue(ctx, distributor.Request{Actor: msg.Actor, Category: msg.Category})
	if msg.Result != nil {
		*msg.Result = out
	}
	return err
}

// AddResult summarizes an AddSecrets command.
type AddResult struct {
	Category      domain.Category `json:"category"`
	Added         int             `json:"added"`
	Skipped       int             `json:"skipped"`
	CategoryTotal int             `json:"category_total"`
	Total         int             `json:"total"`
}

// AddSecrets appends the lines of Text to Category.
type AddSecrets struct {
	Actor    domain.Actor `json:"actor"`
	Category string       `json:"category"`
	Text     string       `json:"text"`
	Result   *AddResult   `json:"-"`
}

type addSecretsCommand struct {
	gate     adminGate
	svc      inventoryService
	logger   logger.Logger
	activity activity.Hooks
}

func (c addSecretsCommand) Execute(ctx context.Context, msg AddSecrets) error {
	if err := c.gate.check(ctx, msg.Actor); err != nil {
		return err
	}
	category, err := domain.ParseCategory(msg.Category)
	if err != nil {
		return err
	}
	lines := SplitLines(msg.Text)
	added, err := c.svc.Add(ctx, category, lines)

	res := AddResult{
		Category:      category,
		Added:         added,
		Skipped:       countNonBlank(lines) - added,
		CategoryTotal: c.svc.CountInCategory(category),
		Total:         c.svc.CountTotal(),
	}
	if msg.Result != nil {
		*msg.Result = res
	}
	if err != nil {
		return err
	}

	c.logger.Info("records added", logger.F("category", category), logger.F("added", added))
	c.activity.Notify(ctx, activity.Event{
		Verb:      domain.ActionAdded,
		ActorID:   msg.Actor.ID,
		ActorName: msg.Actor.Name,
		Category:  category.String(),
		Details:   fmt.Sprintf("category=%s added=%d category_total=%d total=%d", category, added, res.CategoryTotal, res.Total),
		Metadata:  map[string]any{"added": added, "skipped": res.Skipped},
	})
	return nil
}

// SetCooldown changes the per-user cooldown in minutes.
type SetCooldown struct {
	Actor   domain.Actor     `json:"actor"`
	Minutes int              `json:"minutes"`
	Result  *domain.Settings `json:"-"`
}

type setCooldownCommand struct {
	gate adminGate
	svc  settingsService
}

func (c setCooldownCommand) Execute(ctx context.Context, msg SetCooldown) error {
	if err := c.gate.check(ctx, msg.Actor); err != nil {
		return err
	}
	cfg, err := c.svc.SetCooldownMinutes(ctx, msg.Actor, msg.Minutes)
	return reply(msg.Result, cfg, err)
}

// SetChannel moves generation to ChannelID.
type SetChannel struct {
	Actor     domain.Actor     `json:"actor"`
	ChannelID int64            `json:"channel_id"`
	Result    *domain.Settings `json:"-"`
}

type setChannelCommand struct {
	gate adminGate
	svc  settingsService
}

func (c setChannelCommand) Execute(ctx context.Context, msg SetChannel) error {
	if err := c.gate.check(ctx, msg.Actor); err != nil {
		return err
	}
	cfg, err := c.svc.SetChannel(ctx, msg.Actor, msg.ChannelID)
	return reply(msg.Result, cfg, err)
}

// SetAdminRole changes the admin role.
type SetAdminRole struct {
	Actor  domain.Actor     `json:"actor"`
	RoleID int64            `json:"role_id"`
	Result *domain.Settings `json:"-"`
}

type setAdminRoleCommand struct {
	gate adminGate
	svc  settingsService
}

func (c setAdminRoleCommand) Execute(ctx context.Context, msg SetAdminRole) error {
	if err := c.gate.check(ctx, msg.Actor); err != nil {
		return err
	}
	cfg, err := c.svc.SetAdminRole(ctx, msg.Actor, msg.RoleID)
	return reply(msg.Result, cfg, err)
}

// ListInventory asks for the stock view.
type ListInventory struct {
	Actor domain.Actor `json:"actor"`
}

type listInventoryQuery struct {
	svc issueService
}

func (q listInventoryQuery) Query(ctx context.Context, msg ListInventory) (inventory.Stock, error) {
	return q.svc.Stock(ctx, msg.Actor)
}

func reply(dst *domain.Settings, cfg domain.Settings, err error) error {
	if dst != nil && err == nil {
		*dst = cfg
	}
	return err
}

// SplitLines splits pasted text into candidate records. Both newline styles
// are accepted.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

func countNonBlank(lines []string) int {
	n := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
