package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-dispenser/pkg/delivery"
	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
	"github.com/goliatone/go-dispenser/pkg/interfaces/platform"
)

// Adapter delivers private messages through the Discord REST API, answers
// channel/role existence checks and resolves admin rights in the guild.
type Adapter struct {
	name   string
	base   delivery.BaseAdapter
	caps   delivery.Capability
	client *http.Client
	cfg    Config
}

var (
	_ delivery.Messenger  = (*Adapter)(nil)
	_ platform.Directory  = (*Adapter)(nil)
	_ platform.Authorizer = (*Adapter)(nil)
)

type Option func(*Adapter)

// Config holds Discord bot options.
type Config struct {
	Token   string
	GuildID string
	BaseURL string
	Timeout time.Duration
	// Color is used for the embed sidebar when UseEmbed is set.
	Color    int
	UseEmbed bool
}

func WithName(name string) Option {
	return func(a *Adapter) {
		if name != "" {
			a.name = name
		}
	}
}

// WithConfig sets adapter configuration.
func WithConfig(cfg Config) Option {
	return func(a *Adapter) {
		if cfg.BaseURL == "" {
			cfg.BaseURL = a.cfg.BaseURL
		}
		if cfg.Timeout == 0 {
			cfg.Timeout = a.cfg.Timeout
		}
		a.cfg = cfg
	}
}

// WithClient allows injecting a custom HTTP client.
func WithClient(c *http.Client) Option {
	return func(a *Adapter) {
		if c != nil {
			a.client = c
		}
	}
}

func New(l logger.Logger, opts ...Option) *Adapter {
	adapter := &Adapter{
		name: "discord",
		base: delivery.NewBaseAdapter(l),
		caps: delivery.Capability{
			Name:     "discord",
			Channels: []string{"dm"},
			Formats:  []string{"text/plain", "text/markdown"},
		},
		cfg: Config{
			BaseURL: "https://discord.com/api/v10",
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	if adapter.client == nil {
		adapter.client = &http.Client{Timeout: adapter.cfg.Timeout}
	}
	return adapter
}

func (a *Adapter) Name() string { return a.name }

func (a *Adapter) Capabilities() delivery.Capability { return a.caps }

// Send opens (or reuses) the DM channel with msg.To and posts the body.
func (a *Adapter) Send(ctx context.Context, msg delivery.Message) error {
	if strings.TrimSpace(a.cfg.Token) == "" {
		return fmt.Errorf("discord: bot token required")
	}
	recipient := strings.TrimSpace(msg.To)
	if recipient == "" {
		return fmt.Errorf("discord: recipient id required")
	}
	if strings.TrimSpace(msg.Body) == "" {
		return fmt.Errorf("discord: message body required")
	}

	var dm struct {
		ID string `json:"id"`
	}
	if err := a.do(ctx, http.MethodPost, "/users/@me/channels", map[string]any{"recipient_id": recipient}, &dm); err != nil {
		a.base.LogFailure(a.name, msg, err)
		return err
	}

	payload := map[string]any{}
	if a.cfg.UseEmbed {
		embed := map[string]any{"description": msg.Body}
		if msg.Subject != "" {
			embed["title"] = msg.Subject
		}
		if a.cfg.Color != 0 {
			embed["color"] = a.cfg.Color
		}
		payload["embeds"] = []any{embed}
	} else {
		content := msg.Body
		if msg.Subject != "" {
			content = "**" + msg.Subject + "**\n" + content
		}
		payload["content"] = content
	}
	if err := a.do(ctx, http.MethodPost, "/channels/"+dm.ID+"/messages", payload, nil); err != nil {
		a.base.LogFailure(a.name, msg, err)
		return err
	}
	a.base.LogSuccess(a.name, msg)
	return nil
}

// ChannelExists reports whether the bot can see the channel.
func (a *Adapter) ChannelExists(ctx context.Context, id int64) (bool, error) {
	err := a.do(ctx, http.MethodGet, "/channels/"+strconv.FormatInt(id, 10), nil, nil)
	return existsFrom(err)
}

// RoleExists looks the role up in the configured guild.
func (a *Adapter) RoleExists(ctx context.Context, id int64) (bool, error) {
	if strings.TrimSpace(a.cfg.GuildID) == "" {
		return false, fmt.Errorf("discord: guild id required to resolve roles")
	}
	var roles []struct {
		ID string `json:"id"`
	}
	if err := a.do(ctx, http.MethodGet, "/guilds/"+a.cfg.GuildID+"/roles", nil, &roles); err != nil {
		return false, err
	}
	want := strconv.FormatInt(id, 10)
	for _, role := range roles {
		if role.ID == want {
			return true, nil
		}
	}
	return false, nil
}

// IsAdmin accepts the guild owner and members holding adminRoleID.
func (a *Adapter) IsAdmin(ctx context.Context, actor domain.Actor, adminRoleID int64) (bool, error) {
	if strings.TrimSpace(a.cfg.GuildID) == "" {
		return false, fmt.Errorf("discord: guild id required to resolve admins")
	}
	var guild struct {
		OwnerID string `json:"owner_id"`
	}
	if err := a.do(ctx, http.MethodGet, "/guilds/"+a.cfg.GuildID, nil, &guild); err != nil {
		return false, err
	}
	if guild.OwnerID != "" && guild.OwnerID == actor.ID {
		return true, nil
	}
	if adminRoleID == 0 {
		return false, nil
	}

	var member struct {
		Roles []string `json:"roles"`
	}
	err := a.do(ctx, http.MethodGet, "/guilds/"+a.cfg.GuildID+"/members/"+actor.ID, nil, &member)
	if found, lookupErr := existsFrom(err); !found {
		return false, lookupErr
	}
	want := strconv.FormatInt(adminRoleID, 10)
	for _, role := range member.Roles {
		if role == want {
			return true, nil
		}
	}
	return false, nil
}

func existsFrom(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	var status *delivery.StatusError
	if errors.As(err, &status) && status.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (a *Adapter) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("discord: encode payload: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(a.cfg.BaseURL, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("discord: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+strings.TrimSpace(a.cfg.Token))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord: request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.Unmarshal(raw, &apiErr)
		return &delivery.StatusError{
			Provider:    "discord",
			StatusCode:  resp.StatusCode,
			Code:        apiErr.Code,
			Description: apiErr.Message,
		}
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("discord: decode response: %w", err)
		}
	}
	return nil
}
