package delivery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Message is a rendered private notice destined for one recipient through a
// single channel/provider combo.
type Message struct {
	ID       string
	Channel  string
	Provider string
	Subject  string
	Body     string
	HTMLBody string
	To       string
	Locale   string
	Metadata map[string]any
}

// Capability describes the channels/formats supported by a messenger.
type Capability struct {
	Name     string
	Channels []string
	Formats  []string
}

// Messenger is implemented by delivery adapters (discord, telegram, etc).
type Messenger interface {
	Name() string
	Capabilities() Capability
	Send(ctx context.Context, msg Message) error
}

// ErrAdapterNotFound is returned when no messenger can satisfy a route.
var ErrAdapterNotFound = errors.New("delivery: no adapter matches route")

// Registry stores available messengers and matches channels to providers.
type Registry struct {
	mu        sync.RWMutex
	adapters  map[string]Messenger
	byChannel map[string][]Messenger
}

// NewRegistry builds a registry with the supplied messengers.
func NewRegistry(messengers ...Messenger) *Registry {
	reg := &Registry{
		adapters:  make(map[string]Messenger),
		byChannel: make(map[string][]Messenger),
	}
	for _, m := range messengers {
		reg.Register(m)
	}
	return reg
}

// Register adds a messenger, indexing by provider name and supported channels.
func (r *Registry) Register(m Messenger) {
	if r == nil || m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	name := normalizeKey(m.Name())
	if name != "" {
		r.adapters[name] = m
	}
	for _, channel := range m.Capabilities().Channels {
		key := normalizeKey(channel)
		if key == "" {
			continue
		}
		r.byChannel[key] = append(r.byChannel[key], m)
	}
}

// Route locates a messenger based on a channel string (e.g. dm:discord).
func (r *Registry) Route(channel string) (Messenger, error) {
	if r == nil {
		return nil, ErrAdapterNotFound
	}
	ch, provider := ParseChannel(channel)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if provider != "" {
		if adapter, ok := r.adapters[provider]; ok {
			return adapter, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, channel)
	}
	candidates := r.byChannel[ch]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, channel)
	}
	return candidates[0], nil
}

// ParseChannel splits "<channel>[:provider]" into components.
func ParseChannel(value string) (channel string, provider string) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) == 1 {
		return normalizeKey(parts[0]), ""
	}
	return normalizeKey(parts[0]), normalizeKey(parts[1])
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Describe returns a sorted human-readable summary of the registry entries.
func (r *Registry) Describe() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.adapters))
	for name, adapter := range r.adapters {
		caps := adapter.Capabilities()
		out = append(out, fmt.Sprintf("%s (%s)", name, strings.Join(caps.Channels, ",")))
	}
	sort.Strings(out)
	return out
}
