package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-dispenser/internal/storage/memory"
	"github.com/goliatone/go-dispenser/pkg/domain"
)

func newService(t *testing.T, seed domain.Inventory) (*Service, *memory.InventoryStore) {
	t.Helper()
	st := memory.NewInventoryStore(seed)
	svc, err := NewService(Dependencies{Store: st})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return svc, st
}

func TestNewServiceRequiresStore(t *testing.T) {
	if _, err := NewService(Dependencies{}); err == nil {
		t.Fatalf("expected error without store")
	}
}

func TestIssueIsFIFO(t *testing.T) {
	svc, st := newService(t, domain.Inventory{"steam": {"A:1", "B:2", "C:3"}})
	ctx := context.Background()

	for _, want := range []domain.SecretRecord{"A:1", "B:2", "C:3"} {
		got, err := svc.Issue(ctx, "steam")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
	if st.Saves() != 3 {
		t.Fatalf("expected every issue to persist, got %d saves", st.Saves())
	}
	if n := len(st.Snapshot()["steam"]); n != 0 {
		t.Fatalf("expected persisted queue to be drained, got %d", n)
	}
}

func TestRollbackRestoresOrder(t *testing.T) {
	svc, st := newService(t, domain.Inventory{"steam": {"A:1", "B:2"}})
	ctx := context.Background()

	got, err := svc.Issue(ctx, "steam")
	if err != nil || got != "A:1" {
		t.Fatalf("expected A:1, got %s (%v)", got, err)
	}
	if err := svc.Rollback(ctx, "steam", got); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	persisted := st.Snapshot()["steam"]
	if len(persisted) != 2 || persisted[0] != "A:1" || persisted[1] != "B:2" {
		t.Fatalf("unexpected persisted queue %v", persisted)
	}
	again, _ := svc.Issue(ctx, "steam")
	if again != "A:1" {
		t.Fatalf("expected A:1 after rollback, got %s", again)
	}
}

func TestIssueDistinguishesUnknownAndEmpty(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "drained", []string{"x:y"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(ctx, "other", []string{"o:p"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Issue(ctx, "drained"); err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err := svc.Issue(ctx, "doesnotexist")
	if !errors.Is(err, domain.ErrUnknownCategory) {
		t.Fatalf("expected unknown category, got %v", err)
	}

	_, err = svc.Issue(ctx, "drained")
	if !errors.Is(err, domain.ErrEmptyCategory) {
		t.Fatalf("expected empty category, got %v", err)
	}
	var catErr *domain.CategoryError
	if !errors.As(err, &catErr) {
		t.Fatalf("expected CategoryError, got %T", err)
	}
	if len(catErr.Available) != 1 || catErr.Available[0] != "other" {
		t.Fatalf("expected alternatives [other], got %v", catErr.Available)
	}
}

func TestAddFiltersMalformedLines(t *testing.T) {
	svc, _ := newService(t, domain.Inventory{"cat": {"old:1"}})

	added, err := svc.Add(context.Background(), "cat", []string{"a:b", "garbage", "", "  ", "c:d"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 added, got %d", added)
	}
	if n := svc.CountInCategory("cat"); n != 3 {
		t.Fatalf("expected existing record kept and 2 appended, got %d", n)
	}
}

func TestAddCreatesCategoryEvenWhenNothingValid(t *testing.T) {
	svc, _ := newService(t, nil)
	added, err := svc.Add(context.Background(), "fresh", []string{"nope"})
	if err != nil || added != 0 {
		t.Fatalf("expected 0 added without error, got %d (%v)", added, err)
	}
	if !svc.Exists("fresh") {
		t.Fatalf("expected category to exist")
	}
	if _, err := svc.Issue(context.Background(), "fresh"); !errors.Is(err, domain.ErrEmptyCategory) {
		t.Fatalf("expected empty category, got %v", err)
	}
}

func TestIssueKeepsRecordWhenSaveFails(t *testing.T) {
	svc, st := newService(t, domain.Inventory{"steam": {"A:1"}})
	st.FailSave = errors.New("disk full")

	_, err := svc.Issue(context.Background(), "steam")
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if svc.CountInCategory("steam") != 1 {
		t.Fatalf("expected record to remain in memory")
	}
}

func TestLoadFailsSoft(t *testing.T) {
	st := memory.NewInventoryStore(domain.Inventory{"steam": {"A:1"}})
	st.FailLoad = errors.New("corrupt")
	svc, _ := NewService(Dependencies{Store: st})

	if err := svc.Load(context.Background()); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if svc.CountTotal() != 0 {
		t.Fatalf("expected empty inventory after failed load")
	}
	if _, err := svc.Add(context.Background(), "steam", []string{"b:2"}); err != nil {
		t.Fatalf("service should keep working: %v", err)
	}
}

func TestConcurrentIssueNeverDoubleIssues(t *testing.T) {
	const records = 50
	const callers = 80

	seed := domain.Inventory{"steam": {}}
	for i := 0; i < records; i++ {
		seed["steam"] = append(seed["steam"], domain.SecretRecord(fmt.Sprintf("user%d:pass%d", i, i)))
	}
	svc, _ := newService(t, seed)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[domain.SecretRecord]int{}
		fail int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := svc.Issue(context.Background(), "steam")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if !errors.Is(err, domain.ErrEmptyCategory) {
					t.Errorf("unexpected error: %v", err)
				}
				fail++
				return
			}
			seen[rec]++
		}()
	}
	wg.Wait()

	if len(seen) != records {
		t.Fatalf("expected %d distinct records, got %d", records, len(seen))
	}
	for rec, n := range seen {
		if n != 1 {
			t.Fatalf("record %s issued %d times", rec, n)
		}
	}
	if fail != callers-records {
		t.Fatalf("expected %d empty failures, got %d", callers-records, fail)
	}
}

func TestConservationAcrossOperations(t *testing.T) {
	svc, _ := newService(t, domain.Inventory{"a": {"1:1", "2:2"}, "b": {"3:3"}})
	ctx := context.Background()
	expected := 3

	added, _ := svc.Add(ctx, "b", []string{"4:4", "bad", "5:5"})
	expected += added

	rec, _ := svc.Issue(ctx, "a")
	expected--
	if err := svc.Rollback(ctx, "a", rec); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	expected++
	if _, err := svc.Issue(ctx, "b"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	expected--

	if got := svc.CountTotal(); got != expected {
		t.Fatalf("expected total %d, got %d", expected, got)
	}
	stock := svc.Snapshot()
	if stock.Total != expected || len(stock.Categories) != 2 || stock.Categories[0].Category != "a" {
		t.Fatalf("unexpected snapshot %+v", stock)
	}
}
