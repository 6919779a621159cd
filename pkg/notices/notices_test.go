package notices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-dispenser/pkg/delivery"
	"github.com/goliatone/go-dispenser/pkg/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewDefaultService(LocaleEN)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceRequiresTranslator(t *testing.T) {
	if _, err := NewService(nil); !errors.Is(err, ErrTranslatorRequired) {
		t.Fatalf("expected translator error, got %v", err)
	}
}

func TestResolveLocale(t *testing.T) {
	svc := newTestService(t)
	cases := map[string]string{
		"":      LocaleEN,
		"en":    LocaleEN,
		"pt-br": LocalePTBR,
		"pt_BR": LocalePTBR,
		"pt":    LocalePTBR,
		"de-DE": LocaleEN,
	}
	for in, want := range cases {
		if got := svc.ResolveLocale(in); got != want {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}
}

func TestComposeSplitsOnFirstDelimiter(t *testing.T) {
	svc := newTestService(t)
	env, err := svc.Compose(context.Background(), delivery.Parcel{
		Recipient: domain.Actor{ID: "1"},
		Category:  "steam",
		Record:    "user@example.com:pa:ss&<word>",
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.Contains(env.Subject, "STEAM") {
		t.Fatalf("expected category in subject, got %q", env.Subject)
	}
	if !strings.Contains(env.Body, "Login: user@example.com") {
		t.Fatalf("expected identifier line, got %q", env.Body)
	}
	if !strings.Contains(env.Body, "Password: pa:ss&<word>") {
		t.Fatalf("expected credential kept verbatim, got %q", env.Body)
	}
}

func TestComposeMissingCredential(t *testing.T) {
	svc := newTestService(t)
	env, err := svc.Compose(context.Background(), delivery.Parcel{Category: "x", Record: "onlyuser:"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.Contains(env.Body, "Password: "+MissingPart) {
		t.Fatalf("expected N/A credential, got %q", env.Body)
	}
}

func TestIssuedNeverContainsRecord(t *testing.T) {
	svc := newTestService(t)
	n, err := svc.Issued(context.Background(), "en", IssuedView{
		Recipient:         domain.Actor{ID: "1", Name: "alice"},
		Category:          "steam",
		CategoryRemaining: 2,
		TotalRemaining:    7,
	})
	if err != nil {
		t.Fatalf("issued: %v", err)
	}
	if !strings.Contains(n.Body, "alice") || !strings.Contains(n.Body, "Remaining in steam: 2 | Total: 7") {
		t.Fatalf("unexpected body %q", n.Body)
	}
}

func TestFailureNotices(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	retry := time.Date(2024, 1, 1, 13, 45, 0, 0, time.UTC)

	cases := []struct {
		name     string
		err      error
		code     string
		contains string
	}{
		{
			name:     "category required lists alternatives",
			err:      &domain.CategoryError{Err: domain.ErrCategoryRequired, Available: []domain.Category{"hbo", "steam"}},
			code:     CodeCategoryRequired,
			contains: "Available categories: hbo, steam",
		},
		{
			name:     "empty with no alternatives",
			err:      &domain.CategoryError{Category: "steam", Err: domain.ErrEmptyCategory},
			code:     CodeEmptyCategory,
			contains: "No category has stock right now.",
		},
		{
			name:     "unknown category",
			err:      &domain.CategoryError{Category: "nope", Err: domain.ErrUnknownCategory, Available: []domain.Category{"steam"}},
			code:     CodeUnknownCategory,
			contains: "The category nope does not exist.",
		},
		{
			name:     "cooldown",
			err:      &domain.CooldownError{Remaining: 30, RetryAt: retry},
			code:     CodeCooldown,
			contains: "wait 30 minute(s)",
		},
		{
			name:     "denied",
			err:      &domain.DeliveryError{Reason: domain.DeliveryDenied},
			code:     CodeDeliveryDenied,
			contains: "Enable direct messages",
		},
		{
			name:     "unreachable",
			err:      &domain.DeliveryError{Reason: domain.DeliveryUnreachable},
			code:     CodeDeliveryFailed,
			contains: "try again later",
		},
		{
			name:     "io",
			err:      fmt.Errorf("%w: disk full at /secret/path", domain.ErrPersistence),
			code:     CodeIO,
			contains: "could not be saved",
		},
		{
			name:     "forbidden",
			err:      fmt.Errorf("%w: mallory (9)", domain.ErrForbidden),
			code:     CodeForbidden,
			contains: "do not have permission",
		},
		{
			name:     "internal hides raw text",
			err:      errors.New("pq: relation does not exist"),
			code:     CodeInternal,
			contains: "Please try again later.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := svc.Failure(ctx, "en", tc.err)
			if n.Code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, n.Code)
			}
			if !strings.Contains(n.Body, tc.contains) {
				t.Fatalf("expected %q in %q", tc.contains, n.Body)
			}
			if strings.Contains(n.String(), "/secret/path") || strings.Contains(n.String(), "pq:") {
				t.Fatalf("raw error text leaked: %q", n.String())
			}
		})
	}
}

func TestFailureWrongChannelIsSilent(t *testing.T) {
	svc := newTestService(t)
	n := svc.Failure(context.Background(), "en", domain.ErrWrongChannel)
	if !n.Silent || n.Body != "" {
		t.Fatalf("expected silent notice, got %+v", n)
	}
}

func TestStockAndSettingsInPortuguese(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	n, err := svc.Stock(ctx, "pt-BR", []domain.CategoryCount{{Category: "steam", Count: 3}}, 3)
	if err != nil {
		t.Fatalf("stock: %v", err)
	}
	if n.Subject != "Estoque" || !strings.Contains(n.Body, "STEAM: 3") || !strings.Contains(n.Body, "Total: 3") {
		t.Fatalf("unexpected stock notice %+v", n)
	}

	empty, err := svc.Stock(ctx, "en", nil, 0)
	if err != nil {
		t.Fatalf("stock: %v", err)
	}
	if empty.Body != "No accounts in stock." {
		t.Fatalf("unexpected empty stock %q", empty.Body)
	}

	off, err := svc.SettingChanged(ctx, "en", SettingCooldown, 0)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if off.Body != "Cooldown disabled." {
		t.Fatalf("unexpected cooldown notice %q", off.Body)
	}
	role, _ := svc.SettingChanged(ctx, "en", SettingAdminRole, 1234567890123)
	if role.Body != "Admin role set to 1234567890123." {
		t.Fatalf("unexpected role notice %q", role.Body)
	}
}

func TestAddedMentionsSkippedLines(t *testing.T) {
	svc := newTestService(t)
	n, err := svc.Added(context.Background(), "en", AddedView{Category: "steam", Added: 2, Skipped: 2, CategoryTotal: 5, Total: 9})
	if err != nil {
		t.Fatalf("added: %v", err)
	}
	if !strings.Contains(n.Body, "2 account(s) added to steam.") || !strings.Contains(n.Body, "2 line(s) ignored") {
		t.Fatalf("unexpected body %q", n.Body)
	}
}
