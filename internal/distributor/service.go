package distributor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goliatone/go-dispenser/internal/cooldown"
	"github.com/goliatone/go-dispenser/internal/inventory"
	"github.com/goliatone/go-dispenser/pkg/activity"
	"github.com/goliatone/go-dispenser/pkg/delivery"
	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
)

// State is a step of the issuance state machine.
type State string

const (
	StateRequested         State = "requested"
	StateCooldownChecked   State = "cooldown_checked"
	StateAllocated         State = "allocated"
	StateDeliveryAttempted State = "delivery_attempted"
	StateCommitted         State = "committed"
	StateRolledBack        State = "rolled_back"
)

// Inventory is the subset of the inventory service the distributor drives.
type Inventory interface {
	Issue(ctx context.Context, category domain.Category) (domain.SecretRecord, error)
	Rollback(ctx context.Context, category domain.Category, record domain.SecretRecord) error
	ListNonEmptyCategories() []domain.Category
	CountInCategory(category domain.Category) int
	CountTotal() int
	Snapshot() inventory.Stock
}

// Cooldowns tracks per-user issuance windows.
type Cooldowns interface {
	CheckEligible(user string, cooldownMinutes int, now time.Time) cooldown.Decision
	Record(user string, now time.Time)
	Clear(user string)
}

// Courier hands a record to its recipient over a private channel.
type Courier interface {
	Deliver(ctx context.Context, parcel delivery.Parcel) error
}

// SettingsSource exposes the active runtime settings.
type SettingsSource interface {
	Current() domain.Settings
}

// Dependencies wires collaborators into the service.
type Dependencies struct {
	Inventory Inventory
	Cooldowns Cooldowns
	Courier   Courier
	Settings  SettingsSource
	Logger    logger.Logger
	Activity  activity.Hooks
	Clock     func() time.Time
}

// Request asks for one record of Category on behalf of Actor. Actor.ChannelID
// is the channel the request came from; zero means a trusted local surface
// and skips the generation channel check.
type Request struct {
	Actor    domain.Actor
	Category string
}

// Outcome reports where a request ended and the counts after it.
type Outcome struct {
	State             State
	Category          domain.Category
	CategoryRemaining int
	TotalRemaining    int
}

// Service runs allocate, deliver, then commit or roll back.
type Service struct {
	inventory Inventory
	cooldowns Cooldowns
	courier   Courier
	settings  SettingsSource
	logger    logger.Logger
	activity  activity.Hooks
	now       func() time.Time
	users     *keyedMutex
}

var (
	errInventoryRequired = errors.New("distributor: inventory is required")
	errCooldownsRequired = errors.New("distributor: cooldown tracker is required")
	errCourierRequired   = errors.New("distributor: courier is required")
	errSettingsRequired  = errors.New("distributor: settings source is required")
)

func NewService(deps Dependencies) (*Service, error) {
	switch {
	case deps.Inventory == nil:
		return nil, errInventoryRequired
	case deps.Cooldowns == nil:
		return nil, errCooldownsRequired
	case deps.Courier == nil:
		return nil, errCourierRequired
	case deps.Settings == nil:
		return nil, errSettingsRequired
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Service{
		inventory: deps.Inventory,
		cooldowns: deps.Cooldowns,
		courier:   deps.Courier,
		settings:  deps.Settings,
		logger:    deps.Logger,
		activity:  deps.Activity,
		now:       deps.Clock,
		users:     newKeyedMutex(),
	}, nil
}

// Issue runs one generation request. Requests from the same user are
// serialized so concurrent calls cannot slip past the cooldown.
func (s *Service) Issue(ctx context.Context, req Request) (Outcome, error) {
	out := Outcome{State: StateRequested}
	cfg := s.settings.Current()

	if err := checkChannel(cfg, req.Actor); err != nil {
		return out, err
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return out, &domain.CategoryError{Err: err, Available: s.inventory.ListNonEmptyCategories()}
	}
	out.Category = category

	user := req.Actor.ID
	unlock := s.users.Lock(user)
	defer unlock()

	if err := s.cooldowns.CheckEligible(user, cfg.CooldownMinutes, s.now()).Err(); err != nil {
		return out, err
	}
	out.State = StateCooldownChecked

	record, err := s.inventory.Issue(ctx, category)
	if err != nil {
		return out, err
	}
	out.State = StateAllocated

	parcel := delivery.Parcel{Recipient: req.Actor, Category: category, Record: record, Settings: cfg}
	deliveryErr := s.courier.Deliver(ctx, parcel)
	out.State = StateDeliveryAttempted

	if deliveryErr != nil {
		return s.rollback(ctx, req.Actor, category, record, deliveryErr, out)
	}

	s.cooldowns.Record(user, s.now())
	out.State = StateCommitted
	out.CategoryRemaining = s.inventory.CountInCategory(category)
	out.TotalRemaining = s.inventory.CountTotal()

	s.logger.Info("record issued",
		logger.F("user", user),
		logger.F("category", category),
		logger.F("category_remaining", out.CategoryRemaining),
		logger.F("total_remaining", out.TotalRemaining),
	)
	s.activity.Notify(ctx, activity.Event{
		Verb:      domain.ActionIssued,
		ActorID:   req.Actor.ID,
		ActorName: req.Actor.Name,
		Category:  category.String(),
		Channel:   channelString(req.Actor.ChannelID),
		Details:   fmt.Sprintf("category=%s remaining=%d total=%d", category, out.CategoryRemaining, out.TotalRemaining),
		Metadata: map[string]any{
			"identifier":         record.Identifier(),
			"category_remaining": out.CategoryRemaining,
			"total_remaining":    out.TotalRemaining,
		},
	})
	return out, nil
}

func (s *Service) rollback(ctx context.Context, actor domain.Actor, category domain.Category, record domain.SecretRecord, cause error, out Outcome) (Outcome, error) {
	var derr *domain.DeliveryError
	if !errors.As(cause, &derr) {
		derr = delivery.Classify("", cause)
	}

	// The request context is often what failed delivery. The record must reach
	// the store regardless.
	ctx = context.WithoutCancel(ctx)
	rollbackErr := s.inventory.Rollback(ctx, category, record)
	s.cooldowns.Clear(actor.ID)
	out.State = StateRolledBack
	out.CategoryRemaining = s.inventory.CountInCategory(category)
	out.TotalRemaining = s.inventory.CountTotal()

	s.logger.Warn("delivery failed, record returned to inventory",
		logger.F("user", actor.ID),
		logger.F("category", category),
		logger.F("reason", derr.Reason),
	)
	s.activity.Notify(ctx, activity.Event{
		Verb:      domain.ActionRolledBack,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Category:  category.String(),
		Channel:   channelString(actor.ChannelID),
		Details:   fmt.Sprintf("category=%s reason=%s", category, derr.Reason),
		Metadata:  map[string]any{"reason": string(derr.Reason)},
	})

	if rollbackErr != nil {
		s.logger.Error("rollback persist failed", logger.F("category", category), logger.F("error", rollbackErr))
		return out, errors.Join(derr, rollbackErr)
	}
	return out, derr
}

// Stock returns the per-category counts for the stock command.
func (s *Service) Stock(ctx context.Context, actor domain.Actor) (inventory.Stock, error) {
	if err := checkChannel(s.settings.Current(), actor); err != nil {
		return inventory.Stock{}, err
	}
	stock := s.inventory.Snapshot()
	s.activity.Notify(ctx, activity.Event{
		Verb:      domain.ActionStockChecked,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Channel:   channelString(actor.ChannelID),
		Details:   "total=" + strconv.Itoa(stock.Total),
	})
	return stock, nil
}

func checkChannel(cfg domain.Settings, actor domain.Actor) error {
	if cfg.GenerationChannelID == 0 || actor.ChannelID == 0 {
		return nil
	}
	if actor.ChannelID != cfg.GenerationChannelID {
		return domain.ErrWrongChannel
	}
	return nil
}

func channelString(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
