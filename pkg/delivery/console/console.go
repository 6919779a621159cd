package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goliatone/go-dispenser/pkg/delivery"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
)

// Adapter writes private notices to a writer. It stands in for a real chat
// platform during local runs.
type Adapter struct {
	name   string
	base   delivery.BaseAdapter
	caps   delivery.Capability
	mu     sync.Mutex
	out    io.Writer
	refuse map[string]bool
}

type Option func(*Adapter)

// WithName overrides the adapter provider name (defaults to "console").
func WithName(name string) Option {
	return func(a *Adapter) {
		if name != "" {
			a.name = name
		}
	}
}

// WithWriter redirects output (defaults to stdout).
func WithWriter(w io.Writer) Option {
	return func(a *Adapter) {
		if w != nil {
			a.out = w
		}
	}
}

// WithClosedInbox makes Send refuse the listed recipients, mimicking users
// with private messages disabled.
func WithClosedInbox(recipients ...string) Option {
	return func(a *Adapter) {
		for _, r := range recipients {
			a.refuse[r] = true
		}
	}
}

// New constructs a console adapter.
func New(l logger.Logger, opts ...Option) *Adapter {
	adapter := &Adapter{
		name: "console",
		base: delivery.NewBaseAdapter(l),
		caps: delivery.Capability{
			Name:     "console",
			Channels: []string{"dm"},
			Formats:  []string{"text/plain"},
		},
		out:    os.Stdout,
		refuse: map[string]bool{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	return adapter
}

func (a *Adapter) Name() string { return a.name }

func (a *Adapter) Capabilities() delivery.Capability { return a.caps }

// Send prints the message body.
func (a *Adapter) Send(ctx context.Context, msg delivery.Message) error {
	if a.refuse[msg.To] {
		err := &delivery.StatusError{Provider: a.name, StatusCode: 403, Description: "recipient does not accept private messages"}
		a.base.LogFailure(a.name, msg, err)
		return err
	}
	a.mu.Lock()
	_, err := fmt.Fprintf(a.out, "[%s] to=%s subject=%s\n%s\n", a.name, msg.To, msg.Subject, msg.Body)
	a.mu.Unlock()
	if err != nil {
		return fmt.Errorf("console: write: %w", err)
	}
	a.base.LogSuccess(a.name, msg)
	return nil
}
