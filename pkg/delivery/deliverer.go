package delivery

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
	"github.com/goliatone/go-dispenser/pkg/retry"
	"github.com/google/uuid"
)

// Parcel is one issued record on its way to a recipient.
type Parcel struct {
	Recipient domain.Actor
	Category  domain.Category
	Record    domain.SecretRecord
	Settings  domain.Settings
}

// Envelope is the rendered private notice.
type Envelope struct {
	Subject  string
	Body     string
	HTMLBody string
}

// Composer renders the private notice for a parcel.
type Composer interface {
	Compose(ctx context.Context, parcel Parcel) (Envelope, error)
}

// ComposerFunc adapts a function into a Composer.
type ComposerFunc func(ctx context.Context, parcel Parcel) (Envelope, error)

func (f ComposerFunc) Compose(ctx context.Context, parcel Parcel) (Envelope, error) {
	return f(ctx, parcel)
}

// DefaultRoute sends through the first adapter registered for direct messages.
const DefaultRoute = "dm"

var (
	errRegistryRequired = errors.New("delivery: registry is required")
	errComposerRequired = errors.New("delivery: composer is required")
)

// Deliverer renders a parcel and hands it to the routed messenger. Every
// failure comes back as a *domain.DeliveryError.
type Deliverer struct {
	registry *Registry
	composer Composer
	route    string
	retry    retry.Policy
	logger   logger.Logger
}

// DelivererOptions configures NewDeliverer.
type DelivererOptions struct {
	Registry *Registry
	Composer Composer
	Route    string
	// Retry applies to unreachable failures only. The zero value sends once.
	Retry  retry.Policy
	Logger logger.Logger
}

func NewDeliverer(opts DelivererOptions) (*Deliverer, error) {
	if opts.Registry == nil {
		return nil, errRegistryRequired
	}
	if opts.Composer == nil {
		return nil, errComposerRequired
	}
	if strings.TrimSpace(opts.Route) == "" {
		opts.Route = DefaultRoute
	}
	if opts.Logger == nil {
		opts.Logger = &logger.Nop{}
	}
	return &Deliverer{
		registry: opts.Registry,
		composer: opts.Composer,
		route:    opts.Route,
		retry:    opts.Retry,
		logger:   opts.Logger,
	}, nil
}

// Route reports the configured channel route.
func (d *Deliverer) Route() string { return d.route }

// Deliver sends the parcel to its recipient.
func (d *Deliverer) Deliver(ctx context.Context, parcel Parcel) error {
	messenger, err := d.registry.Route(d.route)
	if err != nil {
		return Classify("", err)
	}
	provider := messenger.Name()

	env, err := d.composer.Compose(ctx, parcel)
	if err != nil {
		return &domain.DeliveryError{Reason: domain.DeliveryUnknown, Provider: provider, Err: err}
	}

	channel, _ := ParseChannel(d.route)
	msg := Message{
		ID:       uuid.NewString(),
		Channel:  channel,
		Provider: provider,
		Subject:  env.Subject,
		Body:     env.Body,
		HTMLBody: env.HTMLBody,
		To:       parcel.Recipient.ID,
		Locale:   parcel.Recipient.Locale,
		Metadata: map[string]any{
			"category": parcel.Category.String(),
		},
	}
	err = d.retry.Do(ctx, func(attempt int) error {
		if attempt > 1 {
			d.logger.Debug("retrying private delivery", logger.F("provider", provider), logger.F("attempt", attempt))
		}
		return messenger.Send(ctx, msg)
	}, func(err error) bool {
		return Classify(provider, err).Reason == domain.DeliveryUnreachable
	})
	if err != nil {
		classified := Classify(provider, err)
		d.logger.Warn("private delivery failed",
			logger.F("provider", provider),
			logger.F("reason", classified.Reason),
			logger.F("to", MaskRecipient(msg.To)),
			logger.F("error", err),
		)
		return classified
	}
	return nil
}
