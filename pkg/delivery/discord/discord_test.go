package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-dispenser/pkg/delivery"
	"github.com/goliatone/go-dispenser/pkg/domain"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(nil, WithConfig(Config{Token: "tok", GuildID: "g1", BaseURL: srv.URL}))
}

func TestSendOpensDMAndPosts(t *testing.T) {
	var posted map[string]any
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bot tok" {
			t.Errorf("missing bot authorization header")
		}
		switch r.URL.Path {
		case "/users/@me/channels":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "dm-1"})
		case "/channels/dm-1/messages":
			_ = json.NewDecoder(r.Body).Decode(&posted)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"m1"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	err := adapter.Send(context.Background(), delivery.Message{To: "42", Subject: "Account", Body: "user:pass"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if posted["content"] != "**Account**\nuser:pass" {
		t.Fatalf("unexpected content %v", posted["content"])
	}
}

func TestSendClassifiesClosedDMs(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/@me/channels" {
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "dm-1"})
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Cannot send messages to this user","code":50007}`))
	})

	err := adapter.Send(context.Background(), delivery.Message{To: "42", Body: "x"})
	var status *delivery.StatusError
	if !errors.As(err, &status) || status.Code != 50007 {
		t.Fatalf("expected status error with code 50007, got %v", err)
	}
	classified := delivery.Classify(adapter.Name(), err)
	if classified.Reason != domain.DeliveryDenied {
		t.Fatalf("expected denied, got %s", classified.Reason)
	}
}

func TestDirectoryLookups(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels/10":
			_, _ = w.Write([]byte(`{"id":"10"}`))
		case "/channels/11":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Unknown Channel","code":10003}`))
		case "/guilds/g1/roles":
			_, _ = w.Write([]byte(`[{"id":"20"},{"id":"21"}]`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	ctx := context.Background()

	if ok, err := adapter.ChannelExists(ctx, 10); err != nil || !ok {
		t.Fatalf("expected channel 10 to exist, got %v (%v)", ok, err)
	}
	if ok, err := adapter.ChannelExists(ctx, 11); err != nil || ok {
		t.Fatalf("expected channel 11 to be missing, got %v (%v)", ok, err)
	}
	if ok, err := adapter.RoleExists(ctx, 21); err != nil || !ok {
		t.Fatalf("expected role 21 to exist, got %v (%v)", ok, err)
	}
	if ok, err := adapter.RoleExists(ctx, 99); err != nil || ok {
		t.Fatalf("expected role 99 to be missing, got %v (%v)", ok, err)
	}
}

func TestIsAdminChecksOwnerAndRole(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/guilds/g1":
			_, _ = w.Write([]byte(`{"id":"g1","owner_id":"1"}`))
		case "/guilds/g1/members/2":
			_, _ = w.Write([]byte(`{"roles":["30","31"]}`))
		case "/guilds/g1/members/3":
			_, _ = w.Write([]byte(`{"roles":[]}`))
		case "/guilds/g1/members/4":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Unknown Member","code":10007}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	ctx := context.Background()

	cases := []struct {
		actor string
		role  int64
		want  bool
	}{
		{"1", 0, true},
		{"2", 0, false},
		{"2", 31, true},
		{"3", 31, false},
		{"4", 31, false},
	}
	for _, tc := range cases {
		ok, err := adapter.IsAdmin(ctx, domain.Actor{ID: tc.actor}, tc.role)
		if err != nil {
			t.Fatalf("actor %s: %v", tc.actor, err)
		}
		if ok != tc.want {
			t.Fatalf("actor %s role %d: expected %v, got %v", tc.actor, tc.role, tc.want, ok)
		}
	}

	if _, err := adapter.IsAdmin(ctx, domain.Actor{ID: "5"}, 31); err == nil {
		t.Fatalf("expected server errors to surface")
	}
}
