package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/goliatone/go-dispenser/pkg/activity"
	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
	"github.com/goliatone/go-dispenser/pkg/interfaces/platform"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
)

// Dependencies wires persistence and the platform directory. A nil Defaults
// means domain.DefaultSettings(0).
type Dependencies struct {
	Store     store.SettingsStore
	Directory platform.Directory
	Defaults  *domain.Settings
	Logger    logger.Logger
	Activity  activity.Hooks
}

// Service holds the runtime settings record. Every mutation is persisted.
type Service struct {
	mu        sync.RWMutex
	store     store.SettingsStore
	directory platform.Directory
	defaults  domain.Settings
	logger    logger.Logger
	activity  activity.Hooks
	current   domain.Settings
}

var errStoreRequired = errors.New("settings: store is required")

func NewService(deps Dependencies) (*Service, error) {
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	if deps.Directory == nil {
		deps.Directory = platform.AllowAll{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	defaults := domain.DefaultSettings(0)
	if deps.Defaults != nil {
		defaults = *deps.Defaults
	}
	return &Service{
		store:     deps.Store,
		directory: deps.Directory,
		defaults:  defaults,
		logger:    deps.Logger,
		activity:  deps.Activity,
		current:   defaults,
	}, nil
}

// Load overlays the stored fields on the defaults. A read failure leaves the
// defaults in place.
func (s *Service) Load(ctx context.Context) error {
	patch, err := s.store.Load(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.current = s.defaults
		s.logger.Error("settings load failed, using defaults", logger.F("error", err))
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	s.current = patch.Apply(s.defaults)
	return nil
}

// Current returns a copy of the active settings.
func (s *Service) Current() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetCooldownMinutes changes the per-user cooldown. Zero disables it.
func (s *Service) SetCooldownMinutes(ctx context.Context, actor domain.Actor, minutes int) (domain.Settings, error) {
	if minutes < 0 {
		return s.Current(), fmt.Errorf("%w: cooldown must be zero or positive, got %d", domain.ErrInvalidValue, minutes)
	}
	return s.mutate(ctx, actor, domain.ActionCooldownChanged, "cooldown_minutes="+strconv.Itoa(minutes), func(cfg *domain.Settings) {
		cfg.CooldownMinutes = minutes
	})
}

// SetChannel moves generation to channelID after checking it exists.
func (s *Service) SetChannel(ctx context.Context, actor domain.Actor, channelID int64) (domain.Settings, error) {
	ok, err := s.directory.ChannelExists(ctx, channelID)
	if err != nil {
		return s.Current(), err
	}
	if !ok {
		return s.Current(), fmt.Errorf("%w: channel %d", domain.ErrNotFound, channelID)
	}
	return s.mutate(ctx, actor, domain.ActionChannelChanged, "channel_id="+strconv.FormatInt(channelID, 10), func(cfg *domain.Settings) {
		cfg.GenerationChannelID = channelID
	})
}

// SetAdminRole changes the role allowed to run admin commands.
func (s *Service) SetAdminRole(ctx context.Context, actor domain.Actor, roleID int64) (domain.Settings, error) {
	ok, err := s.directory.RoleExists(ctx, roleID)
	if err != nil {
		return s.Current(), err
	}
	if !ok {
		return s.Current(), fmt.Errorf("%w: role %d", domain.ErrNotFound, roleID)
	}
	return s.mutate(ctx, actor, domain.ActionAdminChanged, "role_id="+strconv.FormatInt(roleID, 10), func(cfg *domain.Settings) {
		cfg.AdminRoleID = roleID
	})
}

// mutate applies fn and persists. When the save fails the new value stays in
// memory and the error is returned.
func (s *Service) mutate(ctx context.Context, actor domain.Actor, verb, details string, fn func(*domain.Settings)) (domain.Settings, error) {
	s.mu.Lock()
	fn(&s.current)
	snapshot := s.current
	err := s.store.Save(ctx, snapshot)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("settings save failed", logger.F("action", verb), logger.F("error", err))
		return snapshot, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	s.logger.Info("settings updated", logger.F("action", verb), logger.F("actor", actor.String()))
	s.activity.Notify(ctx, activity.Event{
		Verb:      verb,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Details:   details,
	})
	return snapshot, nil
}
