package delivery

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/retry"
)

type stubMessenger struct {
	name     string
	channels []string
	err      error
	sent     []Message
}

func (s *stubMessenger) Name() string { return s.name }

func (s *stubMessenger) Capabilities() Capability {
	return Capability{Name: s.name, Channels: s.channels}
}

func (s *stubMessenger) Send(_ context.Context, msg Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func TestParseChannel(t *testing.T) {
	cases := []struct {
		in, channel, provider string
	}{
		{"dm", "dm", ""},
		{" DM:Discord ", "dm", "discord"},
		{"email:aws_ses", "email", "aws_ses"},
	}
	for _, tc := range cases {
		ch, p := ParseChannel(tc.in)
		if ch != tc.channel || p != tc.provider {
			t.Fatalf("%q: expected %s/%s, got %s/%s", tc.in, tc.channel, tc.provider, ch, p)
		}
	}
}

func TestRegistryRoute(t *testing.T) {
	discord := &stubMessenger{name: "discord", channels: []string{"dm"}}
	telegram := &stubMessenger{name: "telegram", channels: []string{"dm", "chat"}}
	reg := NewRegistry(discord, telegram)

	if m, err := reg.Route("dm"); err != nil || m != discord {
		t.Fatalf("expected first dm adapter, got %v (%v)", m, err)
	}
	if m, err := reg.Route("dm:telegram"); err != nil || m != telegram {
		t.Fatalf("expected telegram by provider, got %v (%v)", m, err)
	}
	if _, err := reg.Route("email"); !errors.Is(err, ErrAdapterNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if got := reg.Describe(); len(got) != 2 || got[0] != "discord (dm)" {
		t.Fatalf("unexpected describe %v", got)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		provider string
		err      error
		want     domain.DeliveryReason
	}{
		{"forbidden", "telegram", &StatusError{Provider: "telegram", StatusCode: 403}, domain.DeliveryDenied},
		{"discord closed dms", "discord", &StatusError{Provider: "discord", StatusCode: 400, Code: 50007}, domain.DeliveryDenied},
		{"server error", "discord", fmt.Errorf("wrapped: %w", &StatusError{StatusCode: 502}), domain.DeliveryUnreachable},
		{"rate limited", "discord", &StatusError{StatusCode: 429}, domain.DeliveryUnreachable},
		{"bad request", "discord", &StatusError{StatusCode: 400}, domain.DeliveryRejected},
		{"timeout", "x", context.DeadlineExceeded, domain.DeliveryUnreachable},
		{"no route", "", ErrAdapterNotFound, domain.DeliveryRejected},
		{"other", "x", errors.New("boom"), domain.DeliveryUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.provider, tc.err)
			if got.Reason != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got.Reason)
			}
			if !errors.Is(got, domain.ErrDeliveryFailed) {
				t.Fatalf("expected every classified error to be a delivery failure")
			}
		})
	}
	if Classify("x", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestDelivererSendsComposedEnvelope(t *testing.T) {
	m := &stubMessenger{name: "console", channels: []string{"dm"}}
	composer := ComposerFunc(func(_ context.Context, p Parcel) (Envelope, error) {
		id, cred := p.Record.Split()
		return Envelope{Subject: string(p.Category), Body: id + "/" + cred}, nil
	})
	d, err := NewDeliverer(DelivererOptions{Registry: NewRegistry(m), Composer: composer})
	if err != nil {
		t.Fatalf("new deliverer: %v", err)
	}

	parcel := Parcel{Recipient: domain.Actor{ID: "42"}, Category: "steam", Record: "user:pass"}
	if err := d.Deliver(context.Background(), parcel); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(m.sent) != 1 || m.sent[0].To != "42" || m.sent[0].Body != "user/pass" || m.sent[0].Channel != "dm" {
		t.Fatalf("unexpected sent messages %+v", m.sent)
	}
}

func TestDelivererClassifiesSendFailure(t *testing.T) {
	m := &stubMessenger{name: "discord", channels: []string{"dm"}, err: &StatusError{Provider: "discord", StatusCode: 403}}
	composer := ComposerFunc(func(context.Context, Parcel) (Envelope, error) { return Envelope{Body: "x"}, nil })
	d, _ := NewDeliverer(DelivererOptions{Registry: NewRegistry(m), Composer: composer})

	err := d.Deliver(context.Background(), Parcel{Recipient: domain.Actor{ID: "42"}})
	if !errors.Is(err, domain.ErrDeliveryDenied) {
		t.Fatalf("expected denied, got %v", err)
	}
}

func TestDelivererRetriesUnreachableOnly(t *testing.T) {
	composer := ComposerFunc(func(context.Context, Parcel) (Envelope, error) { return Envelope{Body: "x"}, nil })
	policy := retry.Policy{MaxAttempts: 3, Backoff: retry.ExponentialBackoff{Base: time.Microsecond}}

	busy := &stubMessenger{name: "discord", channels: []string{"dm"}, err: &StatusError{Provider: "discord", StatusCode: 503}}
	d, _ := NewDeliverer(DelivererOptions{Registry: NewRegistry(busy), Composer: composer, Retry: policy})
	err := d.Deliver(context.Background(), Parcel{Recipient: domain.Actor{ID: "42"}})
	var derr *domain.DeliveryError
	if !errors.As(err, &derr) || derr.Reason != domain.DeliveryUnreachable {
		t.Fatalf("expected unreachable, got %v", err)
	}
	if len(busy.sent) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(busy.sent))
	}

	closed := &stubMessenger{name: "discord", channels: []string{"dm"}, err: &StatusError{Provider: "discord", StatusCode: 403, Code: 50007}}
	d, _ = NewDeliverer(DelivererOptions{Registry: NewRegistry(closed), Composer: composer, Retry: policy})
	if err := d.Deliver(context.Background(), Parcel{Recipient: domain.Actor{ID: "42"}}); !errors.Is(err, domain.ErrDeliveryDenied) {
		t.Fatalf("expected denied, got %v", err)
	}
	if len(closed.sent) != 1 {
		t.Fatalf("denied deliveries must not be retried, got %d attempts", len(closed.sent))
	}
}

func TestMaskRecipient(t *testing.T) {
	if got := MaskRecipient("abc"); got != "abc" {
		t.Fatalf("short values pass through, got %s", got)
	}
	got := MaskRecipient("123456789")
	if got == "123456789" || got == "" {
		t.Fatalf("expected value to be masked, got %s", got)
	}
}
