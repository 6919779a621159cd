package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
)

// Dependencies wires the durable store into the service.
type Dependencies struct {
	Store  store.InventoryStore
	Logger logger.Logger
}

// Stock is the read-only view shown by the stock command.
type Stock struct {
	Categories []domain.CategoryCount `json:"categories"`
	Total      int                    `json:"total"`
}

// Service owns the in-memory inventory and sequences every read-modify-write
// against the store. Issue removes a record and persists before returning, so
// a record can never be handed to two callers.
type Service struct {
	mu     sync.Mutex
	store  store.InventoryStore
	logger logger.Logger
	inv    domain.Inventory
}

var errStoreRequired = errors.New("inventory: store is required")

// NewService constructs the inventory service with an empty inventory. Call
// Load to hydrate it from the store.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Service{
		store:  deps.Store,
		logger: deps.Logger,
		inv:    domain.Inventory{},
	}, nil
}

// Load replaces the in-memory inventory with the stored document. On failure
// the service keeps running with an empty inventory and the error is returned
// for the caller to report.
func (s *Service) Load(ctx context.Context) error {
	inv, err := s.store.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.inv = domain.Inventory{}
		s.logger.Error("inventory load failed, starting empty", logger.F("error", err))
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	if inv == nil {
		inv = domain.Inventory{}
	}
	s.inv = inv
	s.logger.Info("inventory loaded",
		logger.F("categories", len(inv)),
		logger.F("total", inv.Total()),
	)
	return nil
}

// Add appends every well-formed line to category, creating it when absent,
// and returns how many records were added. Malformed lines are skipped.
func (s *Service) Add(ctx context.Context, category domain.Category, lines []string) (int, error) {
	if category == "" {
		return 0, domain.ErrCategoryRequired
	}
	records := make([]domain.SecretRecord, 0, len(lines))
	for _, line := range lines {
		if record, ok := domain.ParseRecord(line); ok {
			records = append(records, record)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queue, ok := s.inv[category]
	if !ok {
		queue = []domain.SecretRecord{}
	}
	s.inv[category] = append(queue, records...)

	if err := s.persist(ctx); err != nil {
		return len(records), err
	}
	s.logger.Debug("records added",
		logger.F("category", category),
		logger.F("added", len(records)),
		logger.F("skipped", len(lines)-len(records)),
	)
	return len(records), nil
}

// Issue dequeues the oldest record of category and persists the result. When
// the store rejects the write the record stays in the queue.
func (s *Service) Issue(ctx context.Context, category domain.Category) (domain.SecretRecord, error) {
	if category == "" {
		return "", domain.ErrCategoryRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queue, ok := s.inv[category]
	if !ok {
		return "", &domain.CategoryError{Category: category, Available: s.inv.NonEmpty(), Err: domain.ErrUnknownCategory}
	}
	if len(queue) == 0 {
		return "", &domain.CategoryError{Category: category, Available: s.inv.NonEmpty(), Err: domain.ErrEmptyCategory}
	}

	record := queue[0]
	s.inv[category] = queue[1:]
	if err := s.persist(ctx); err != nil {
		s.inv[category] = queue
		return "", err
	}
	return record, nil
}

// Rollback puts record back at the front of category so the next Issue
// returns it again.
func (s *Service) Rollback(ctx context.Context, category domain.Category, record domain.SecretRecord) error {
	if category == "" {
		return domain.ErrCategoryRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.inv[category]
	restored := make([]domain.SecretRecord, 0, len(queue)+1)
	restored = append(restored, record)
	restored = append(restored, queue...)
	s.inv[category] = restored

	return s.persist(ctx)
}

// ListNonEmptyCategories returns the categories that can currently issue,
// sorted lexicographically.
func (s *Service) ListNonEmptyCategories() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv.NonEmpty()
}

// Exists reports whether category was ever created.
func (s *Service) Exists(category domain.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inv[category]
	return ok
}

func (s *Service) CountTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv.Total()
}

func (s *Service) CountInCategory(category domain.Category) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inv[category])
}

// Snapshot returns the non-empty categories with their counts and the total.
func (s *Service) Snapshot() Stock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stock{Categories: s.inv.Counts(), Total: s.inv.Total()}
}

// persist must be called with mu held.
func (s *Service) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, s.inv); err != nil {
		s.logger.Error("inventory save failed", logger.F("error", err))
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}
