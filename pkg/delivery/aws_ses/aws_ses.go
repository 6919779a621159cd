package aws_ses

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/goliatone/go-dispenser/pkg/delivery"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
	"github.com/jaytaylor/html2text"
)

// Adapter delivers the private notice by email via AWS SES. The recipient id
// is the email address.
type Adapter struct {
	name   string
	base   delivery.BaseAdapter
	caps   delivery.Capability
	cfg    Config
	client SESClient
}

// Config holds SES settings.
type Config struct {
	From             string
	Region           string
	Profile          string
	ConfigurationSet string
	DryRun           bool
}

type Option func(*Adapter)

// SESClient abstracts the SES client for testing.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// WithName overrides the adapter provider name.
func WithName(name string) Option {
	return func(a *Adapter) {
		if strings.TrimSpace(name) != "" {
			a.name = name
		}
	}
}

// WithConfig sets the adapter configuration.
func WithConfig(cfg Config) Option {
	return func(a *Adapter) {
		if cfg.Region == "" {
			cfg.Region = a.cfg.Region
		}
		a.cfg = cfg
	}
}

// WithClient injects a custom SES client.
func WithClient(c SESClient) Option {
	return func(a *Adapter) {
		if c != nil {
			a.client = c
		}
	}
}

// New constructs the SES adapter.
func New(l logger.Logger, opts ...Option) *Adapter {
	adapter := &Adapter{
		name: "aws_ses",
		base: delivery.NewBaseAdapter(l),
		caps: delivery.Capability{
			Name:     "aws_ses",
			Channels: []string{"email"},
			Formats:  []string{"text/plain", "text/html"},
		},
		cfg: Config{
			Region: "us-east-1",
		},
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

func (a *Adapter) ensureClient(ctx context.Context) error {
	if a.client != nil {
		return nil
	}
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(a.cfg.Region),
	}
	if a.cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(a.cfg.Profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("aws_ses: load config: %w", err)
	}
	a.client = ses.NewFromConfig(cfg)
	return nil
}

func (a *Adapter) Send(ctx context.Context, msg delivery.Message) error {
	if a.cfg.DryRun {
		a.base.LogSuccess(a.name, msg)
		a.base.Logger().Info("aws_ses dry run, send skipped",
			logger.F("to", delivery.MaskRecipient(msg.To)),
			logger.F("subject", msg.Subject),
		)
		return nil
	}

	to := strings.TrimSpace(msg.To)
	if to == "" || !strings.Contains(to, "@") {
		return &delivery.StatusError{Provider: a.name, StatusCode: 400, Description: "recipient email address required"}
	}
	if strings.TrimSpace(a.cfg.From) == "" {
		return fmt.Errorf("aws_ses: from required")
	}
	textBody := msg.Body
	if strings.TrimSpace(textBody) == "" && msg.HTMLBody != "" {
		textBody = htmlToText(msg.HTMLBody)
	}
	if strings.TrimSpace(textBody) == "" {
		return fmt.Errorf("aws_ses: content empty")
	}

	if err := a.ensureClient(ctx); err != nil {
		return err
	}

	input := &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{to}},
		Source:      aws.String(a.cfg.From),
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Text: content(textBody),
				Html: content(msg.HTMLBody),
			},
		},
	}
	if cs := strings.TrimSpace(a.cfg.ConfigurationSet); cs != "" {
		input.ConfigurationSetName = aws.String(cs)
	}

	if _, err := a.client.SendEmail(ctx, input); err != nil {
		a.base.LogFailure(a.name, msg, err)
		return fmt.Errorf("aws_ses: send email: %w", err)
	}
	a.base.LogSuccess(a.name, msg)
	return nil
}

func content(body string) *types.Content {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	return &types.Content{Data: aws.String(body)}
}

func htmlToText(html string) string {
	plain, err := html2text.FromString(html, html2text.Options{PrettyTables: true})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(plain)
}
