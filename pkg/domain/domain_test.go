package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestParseCategoryCanonicalizes(t *testing.T) {
	got, err := ParseCategory("  NetFlix ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != Category("netflix") {
		t.Fatalf("expected netflix, got %q", got)
	}
	if _, err := ParseCategory("   "); !errors.Is(err, ErrCategoryRequired) {
		t.Fatalf("expected ErrCategoryRequired, got %v", err)
	}
	if _, err := ParseCategory(""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected category error to be an invalid argument, got %v", err)
	}
}

func TestParseRecord(t *testing.T) {
	cases := []struct {
		line string
		want SecretRecord
		ok   bool
	}{
		{line: "a:b", want: "a:b", ok: true},
		{line: "  user@x.io:pw  ", want: "user@x.io:pw", ok: true},
		{line: "garbage", ok: false},
		{line: "", ok: false},
		{line: "   ", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseRecord(tc.line)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseRecord(%q) = (%q, %v), want (%q, %v)", tc.line, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSecretRecordSplitUsesFirstDelimiter(t *testing.T) {
	id, cred := SecretRecord("login:pa:ss").Split()
	if id != "login" || cred != "pa:ss" {
		t.Fatalf("unexpected split %q / %q", id, cred)
	}
	id, cred = SecretRecord("login:").Split()
	if id != "login" || cred != "" {
		t.Fatalf("unexpected split %q / %q", id, cred)
	}
}

func TestInventoryHelpers(t *testing.T) {
	inv := Inventory{
		"steam":   {"a:1", "b:2"},
		"netflix": {"c:3"},
		"hbo":     {},
	}
	if inv.Total() != 3 {
		t.Fatalf("expected total 3, got %d", inv.Total())
	}
	nonEmpty := inv.NonEmpty()
	if len(nonEmpty) != 2 || nonEmpty[0] != "netflix" || nonEmpty[1] != "steam" {
		t.Fatalf("unexpected non-empty %v", nonEmpty)
	}

	clone := inv.Clone()
	clone["steam"][0] = "z:9"
	if inv["steam"][0] != "a:1" {
		t.Fatalf("clone aliased the original")
	}
	if _, ok := clone["hbo"]; !ok {
		t.Fatalf("clone dropped the empty category")
	}
}

func TestSettingsPatchApply(t *testing.T) {
	base := DefaultSettings(99)
	cooldown := 15
	patch := SettingsPatch{CooldownMinutes: &cooldown}
	got := patch.Apply(base)
	if got.CooldownMinutes != 15 || got.GenerationChannelID != 99 || got.AccentColor != DefaultAccentColor {
		t.Fatalf("unexpected settings %+v", got)
	}

	negative := -5
	got = SettingsPatch{CooldownMinutes: &negative}.Apply(base)
	if got.CooldownMinutes != DefaultCooldownMinutes {
		t.Fatalf("negative cooldown should be ignored, got %d", got.CooldownMinutes)
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{&CategoryError{Err: ErrCategoryRequired}, KindInvalidArgument},
		{&CategoryError{Category: "x", Err: ErrUnknownCategory}, KindUnknownCategory},
		{&CategoryError{Category: "x", Err: ErrEmptyCategory}, KindEmptyCategory},
		{&CooldownError{Remaining: 3, RetryAt: time.Now()}, KindCooldownActive},
		{&DeliveryError{Reason: DeliveryDenied}, KindDeliveryDenied},
		{&DeliveryError{Reason: DeliveryUnreachable}, KindDeliveryFailed},
		{fmt.Errorf("%w: %w", ErrPersistence, errors.New("disk full")), KindIO},
		{ErrInvalidValue, KindInvalidValue},
		{ErrWrongChannel, KindWrongChannel},
		{ErrForbidden, KindForbidden},
		{errors.New("boom"), KindInternal},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
