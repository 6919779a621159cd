package distributor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-dispenser/internal/cooldown"
	"github.com/goliatone/go-dispenser/internal/inventory"
	"github.com/goliatone/go-dispenser/internal/storage/file"
	"github.com/goliatone/go-dispenser/internal/storage/memory"
	"github.com/goliatone/go-dispenser/pkg/activity"
	"github.com/goliatone/go-dispenser/pkg/delivery"
	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
)

type fakeCourier struct {
	mu      sync.Mutex
	err     error
	before  func(ctx context.Context) error
	parcels []delivery.Parcel
}

func (c *fakeCourier) Deliver(ctx context.Context, p delivery.Parcel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parcels = append(c.parcels, p)
	if c.before != nil {
		if err := c.before(ctx); err != nil {
			return err
		}
	}
	return c.err
}

type staticSettings struct{ cfg domain.Settings }

func (s staticSettings) Current() domain.Settings { return s.cfg }

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	svc     *Service
	inv     *inventory.Service
	tracker *cooldown.Tracker
	courier *fakeCourier
	clock   *clock
	events  []activity.Event
}

func newHarness(t *testing.T, seed domain.Inventory, cfg domain.Settings) *harness {
	t.Helper()
	return newHarnessWithStore(t, memory.NewInventoryStore(seed), cfg)
}

func newHarnessWithStore(t *testing.T, st store.InventoryStore, cfg domain.Settings) *harness {
	t.Helper()
	inv, err := inventory.NewService(inventory.Dependencies{Store: st})
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if err := inv.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	h := &harness{
		inv:     inv,
		tracker: cooldown.NewTracker(),
		courier: &fakeCourier{},
		clock:   &clock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
	}
	var mu sync.Mutex
	h.svc, err = NewService(Dependencies{
		Inventory: inv,
		Cooldowns: h.tracker,
		Courier:   h.courier,
		Settings:  staticSettings{cfg: cfg},
		Clock:     h.clock.Now,
		Activity: activity.Hooks{activity.HookFunc(func(_ context.Context, evt activity.Event) {
			mu.Lock()
			defer mu.Unlock()
			h.events = append(h.events, evt)
		})},
	})
	if err != nil {
		t.Fatalf("distributor: %v", err)
	}
	return h
}

var alice = domain.Actor{ID: "100", Name: "alice"}

func TestIssueCommitsAndStartsCooldown(t *testing.T) {
	h := newHarness(t, domain.Inventory{"steam": {"a:1", "b:2"}, "hbo": {"c:3"}}, domain.DefaultSettings(0))
	ctx := context.Background()

	out, err := h.svc.Issue(ctx, Request{Actor: alice, Category: " STEAM "})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if out.State != StateCommitted || out.Category != "steam" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.CategoryRemaining != 1 || out.TotalRemaining != 2 {
		t.Fatalf("unexpected counts %+v", out)
	}
	if len(h.courier.parcels) != 1 || h.courier.parcels[0].Record != "a:1" {
		t.Fatalf("expected a:1 delivered, got %+v", h.courier.parcels)
	}
	if len(h.events) != 1 || h.events[0].Verb != domain.ActionIssued {
		t.Fatalf("expected issued event, got %+v", h.events)
	}

	h.clock.Advance(30 * time.Minute)
	_, err = h.svc.Issue(ctx, Request{Actor: alice, Category: "hbo"})
	var cd *domain.CooldownError
	if !errors.As(err, &cd) || cd.Remaining != 30 {
		t.Fatalf("expected 30 minute cooldown, got %v", err)
	}
	if h.inv.CountInCategory("hbo") != 1 {
		t.Fatalf("blocked request must not touch inventory")
	}

	h.clock.Advance(30 * time.Minute)
	if _, err := h.svc.Issue(ctx, Request{Actor: alice, Category: "hbo"}); err != nil {
		t.Fatalf("expected eligible after window, got %v", err)
	}
}

func TestIssueRollbackClearsCooldownAndRestoresCount(t *testing.T) {
	h := newHarness(t, domain.Inventory{"steam": {"a:1", "b:2"}}, domain.DefaultSettings(0))
	h.courier.err = &domain.DeliveryError{Reason: domain.DeliveryDenied, Provider: "discord"}
	ctx := context.Background()
	before := h.inv.CountTotal()

	out, err := h.svc.Issue(ctx, Request{Actor: alice, Category: "steam"})
	if !errors.Is(err, domain.ErrDeliveryDenied) {
		t.Fatalf("expected delivery denied, got %v", err)
	}
	if out.State != StateRolledBack {
		t.Fatalf("expected rolled back, got %s", out.State)
	}
	if h.inv.CountTotal() != before {
		t.Fatalf("expected count %d after rollback, got %d", before, h.inv.CountTotal())
	}
	if h.tracker.Len() != 0 {
		t.Fatalf("expected cooldown cleared")
	}
	if h.events[len(h.events)-1].Verb != domain.ActionRolledBack {
		t.Fatalf("expected rollback event")
	}

	h.courier.err = nil
	h.clock.Advance(time.Minute)
	if _, err := h.svc.Issue(ctx, Request{Actor: alice, Category: "steam"}); err != nil {
		t.Fatalf("expected eligible after rollback, got %v", err)
	}
	if got := h.courier.parcels[len(h.courier.parcels)-1].Record; got != "a:1" {
		t.Fatalf("expected the same record after rollback, got %s", got)
	}
}

func TestIssueClassifiesUnknownDeliveryErrors(t *testing.T) {
	h := newHarness(t, domain.Inventory{"steam": {"a:1"}}, domain.DefaultSettings(0))
	h.courier.err = errors.New("socket closed")

	_, err := h.svc.Issue(context.Background(), Request{Actor: alice, Category: "steam"})
	if !errors.Is(err, domain.ErrDeliveryFailed) || errors.Is(err, domain.ErrDeliveryDenied) {
		t.Fatalf("expected generic delivery failure, got %v", err)
	}
	if h.inv.CountInCategory("steam") != 1 {
		t.Fatalf("expected record restored")
	}
}

func TestIssueCategoryRequiredListsAvailable(t *testing.T) {
	h := newHarness(t, domain.Inventory{"steam": {"a:1"}, "empty": {}, "hbo": {"b:2"}}, domain.DefaultSettings(0))

	_, err := h.svc.Issue(context.Background(), Request{Actor: alice, Category: "  "})
	var catErr *domain.CategoryError
	if !errors.As(err, &catErr) || !errors.Is(err, domain.ErrCategoryRequired) {
		t.Fatalf("expected category required, got %v", err)
	}
	if len(catErr.Available) != 2 || catErr.Available[0] != "hbo" || catErr.Available[1] != "steam" {
		t.Fatalf("expected sorted non-empty categories, got %v", catErr.Available)
	}
	if len(h.courier.parcels) != 0 || h.tracker.Len() != 0 {
		t.Fatalf("missing category must not have side effects")
	}
}

func TestIssueUnknownAndEmptyCategory(t *testing.T) {
	h := newHarness(t, domain.Inventory{"drained": {}, "steam": {"a:1"}}, domain.DefaultSettings(0))
	ctx := context.Background()

	if _, err := h.svc.Issue(ctx, Request{Actor: alice, Category: "nope"}); !errors.Is(err, domain.ErrUnknownCategory) {
		t.Fatalf("expected unknown, got %v", err)
	}
	_, err := h.svc.Issue(ctx, Request{Actor: alice, Category: "drained"})
	var catErr *domain.CategoryError
	if !errors.As(err, &catErr) || !errors.Is(err, domain.ErrEmptyCategory) {
		t.Fatalf("expected empty, got %v", err)
	}
	if len(catErr.Available) != 1 || catErr.Available[0] != "steam" {
		t.Fatalf("expected steam as alternative, got %v", catErr.Available)
	}
}

func TestGenerationChannelGate(t *testing.T) {
	h := newHarness(t, domain.Inventory{"steam": {"a:1"}}, domain.DefaultSettings(555))
	ctx := context.Background()

	elsewhere := alice
	elsewhere.ChannelID = 777
	if _, err := h.svc.Issue(ctx, Request{Actor: elsewhere, Category: "steam"}); !errors.Is(err, domain.ErrWrongChannel) {
		t.Fatalf("expected wrong channel, got %v", err)
	}
	if _, err := h.svc.Stock(ctx, elsewhere); !errors.Is(err, domain.ErrWrongChannel) {
		t.Fatalf("expected wrong channel for stock, got %v", err)
	}
	if h.inv.CountTotal() != 1 || len(h.events) != 0 {
		t.Fatalf("gated request must not have side effects")
	}

	inside := alice
	inside.ChannelID = 555
	if _, err := h.svc.Issue(ctx, Request{Actor: inside, Category: "steam"}); err != nil {
		t.Fatalf("expected success in generation channel, got %v", err)
	}
}

func TestZeroCooldownAllowsBackToBack(t *testing.T) {
	cfg := domain.DefaultSettings(0)
	cfg.CooldownMinutes = 0
	h := newHarness(t, domain.Inventory{"steam": {"a:1", "b:2"}}, cfg)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := h.svc.Issue(ctx, Request{Actor: alice, Category: "steam"}); err != nil {
			t.Fatalf("issue %d: %v", i, err)
		}
	}
}

func TestConcurrentSameUserIssuesOnce(t *testing.T) {
	h := newHarness(t, domain.Inventory{"steam": {"a:1", "b:2", "c:3", "d:4"}}, domain.DefaultSettings(0))

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.Issue(context.Background(), Request{Actor: alice, Category: "steam"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, blocked := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrCooldownActive):
			blocked++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if ok != 1 || blocked != 3 {
		t.Fatalf("expected 1 success and 3 cooldown blocks, got %d/%d", ok, blocked)
	}
	if h.svc.users.size() != 0 {
		t.Fatalf("expected user locks to be released")
	}
}

func TestConcurrentDifferentUsersNoDoubleIssue(t *testing.T) {
	seed := domain.Inventory{"steam": {"a:1", "b:2", "c:3"}}
	h := newHarness(t, seed, domain.DefaultSettings(0))

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := domain.Actor{ID: string(rune('a' + i))}
			_, _ = h.svc.Issue(context.Background(), Request{Actor: actor, Category: "steam"})
		}(i)
	}
	wg.Wait()

	seen := map[domain.SecretRecord]bool{}
	for _, p := range h.courier.parcels {
		if seen[p.Record] {
			t.Fatalf("record %s delivered twice", p.Record)
		}
		seen[p.Record] = true
	}
	if len(seen) != 3 || h.inv.CountTotal() != 0 {
		t.Fatalf("expected exactly 3 deliveries and empty inventory, got %d / %d", len(seen), h.inv.CountTotal())
	}
}

func TestStockEmitsEvent(t *testing.T) {
	h := newHarness(t, domain.Inventory{"steam": {"a:1"}, "hbo": {}}, domain.DefaultSettings(0))
	stock, err := h.svc.Stock(context.Background(), alice)
	if err != nil {
		t.Fatalf("stock: %v", err)
	}
	if stock.Total != 1 || len(stock.Categories) != 1 {
		t.Fatalf("unexpected stock %+v", stock)
	}
	if len(h.events) != 1 || h.events[0].Verb != domain.ActionStockChecked {
		t.Fatalf("expected stock event, got %+v", h.events)
	}
}

func loadInventory(t *testing.T, st store.InventoryStore) *inventory.Service {
	t.Helper()
	inv, err := inventory.NewService(inventory.Dependencies{Store: st})
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if err := inv.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return inv
}

func TestRollbackPersistsWhenRequestContextIsCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), file.DefaultInventoryFile)
	if err := os.WriteFile(path, []byte(`{"steam":["a:1","b:2"]}`), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := newHarnessWithStore(t, file.NewInventoryStore(path), domain.DefaultSettings(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.courier.before = func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	}

	out, err := h.svc.Issue(ctx, Request{Actor: alice, Category: "steam"})
	if !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("expected delivery failure, got %v", err)
	}
	if errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("rollback must persist after cancellation, got %v", err)
	}
	if out.State != StateRolledBack || h.inv.CountInCategory("steam") != 2 {
		t.Fatalf("expected rolled back with 2 records, got %+v", out)
	}
	if h.tracker.Len() != 0 {
		t.Fatalf("expected cooldown cleared")
	}

	reloaded := loadInventory(t, file.NewInventoryStore(path))
	if reloaded.CountInCategory("steam") != 2 {
		t.Fatalf("expected 2 records on disk, got %d", reloaded.CountInCategory("steam"))
	}
	record, err := reloaded.Issue(context.Background(), "steam")
	if err != nil || record != "a:1" {
		t.Fatalf("expected a:1 back at the front, got %q (%v)", record, err)
	}
}

func TestRollbackSaveFailureIsReported(t *testing.T) {
	st := memory.NewInventoryStore(domain.Inventory{"steam": {"a:1", "b:2"}})
	h := newHarnessWithStore(t, st, domain.DefaultSettings(0))
	diskErr := errors.New("disk full")
	h.courier.err = &domain.DeliveryError{Reason: domain.DeliveryDenied, Provider: "discord"}
	h.courier.before = func(context.Context) error {
		st.FailSave = diskErr
		return nil
	}

	out, err := h.svc.Issue(context.Background(), Request{Actor: alice, Category: "steam"})
	if !errors.Is(err, domain.ErrDeliveryDenied) || !errors.Is(err, domain.ErrPersistence) || !errors.Is(err, diskErr) {
		t.Fatalf("expected delivery and persistence errors joined, got %v", err)
	}
	if domain.KindOf(err) != domain.KindDeliveryDenied {
		t.Fatalf("expected the delivery reason to lead, got %s", domain.KindOf(err))
	}
	if out.State != StateRolledBack || out.CategoryRemaining != 2 || h.inv.CountInCategory("steam") != 2 {
		t.Fatalf("expected record restored in memory, got %+v", out)
	}
	if got := st.Snapshot().Total(); got != 1 {
		t.Fatalf("expected stale document with 1 record, got %d", got)
	}

	// The next successful write carries the restored record.
	st.FailSave = nil
	h.courier.before = nil
	h.courier.err = nil
	bob := domain.Actor{ID: "200", Name: "bob"}
	if _, err := h.svc.Issue(context.Background(), Request{Actor: bob, Category: "steam"}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if got := h.courier.parcels[len(h.courier.parcels)-1].Record; got != "a:1" {
		t.Fatalf("expected a:1 issued after recovery, got %s", got)
	}
	reloaded := loadInventory(t, st)
	if reloaded.CountTotal() != 1 || reloaded.CountInCategory("steam") != 1 {
		t.Fatalf("expected b:2 alone on disk, got %d", reloaded.CountTotal())
	}
}
