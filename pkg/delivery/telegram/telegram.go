package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-dispenser/pkg/delivery"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
)

// Adapter delivers private messages through the Telegram Bot API. The
// recipient is the user's chat id.
type Adapter struct {
	name   string
	base   delivery.BaseAdapter
	caps   delivery.Capability
	client *http.Client
	cfg    Config
}

type Option func(*Adapter)

// Config holds Telegram Bot API options.
type Config struct {
	Token               string
	BaseURL             string
	ParseMode           string
	DisableNotification bool
	Timeout             time.Duration
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
		name: "telegram",
		base: delivery.NewBaseAdapter(l),
		caps: delivery.Capability{
			Name:     "telegram",
			Channels: []string{"dm", "chat"},
			Formats:  []string{"text/plain", "text/html"},
		},
		cfg: Config{
			BaseURL: "https://api.telegram.org",
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

func (a *Adapter) Send(ctx context.Context, msg delivery.Message) error {
	if strings.TrimSpace(a.cfg.Token) == "" {
		return fmt.Errorf("telegram: bot token required")
	}
	chatID := strings.TrimSpace(msg.To)
	if chatID == "" {
		return fmt.Errorf("telegram: chat id required")
	}

	body := msg.Body
	parseMode := strings.TrimSpace(a.cfg.ParseMode)
	if strings.TrimSpace(msg.HTMLBody) != "" {
		body = msg.HTMLBody
		parseMode = "HTML"
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("telegram: message body required")
	}

	payload := map[string]any{
		"chat_id": chatID,
		"text":    body,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}
	if a.cfg.DisableNotification {
		payload["disable_notification"] = true
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(a.cfg.BaseURL, "/"), strings.TrimSpace(a.cfg.Token))
	bodyBytes, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.base.LogFailure(a.name, msg, err)
		return fmt.Errorf("telegram: request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			ErrorCode   int    `json:"error_code"`
			Description string `json:"description"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		err := &delivery.StatusError{
			Provider:    "telegram",
			StatusCode:  resp.StatusCode,
			Description: apiErr.Description,
		}
		a.base.LogFailure(a.name, msg, err)
		return err
	}

	a.base.LogSuccess(a.name, msg)
	return nil
}
