package delivery

import (
	"strings"

	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
	masker "github.com/goliatone/go-masker"
)

// BaseAdapter provides shared helpers for simple adapters.
type BaseAdapter struct {
	logger logger.Logger
}

func NewBaseAdapter(l logger.Logger) BaseAdapter {
	if l == nil {
		l = &logger.Nop{}
	}
	return BaseAdapter{logger: l}
}

func (b BaseAdapter) LogSuccess(name string, msg Message) {
	b.Logger().Info("adapter delivered message",
		logger.F("adapter", name),
		logger.F("channel", msg.Channel),
		logger.F("to", MaskRecipient(msg.To)),
	)
}

func (b BaseAdapter) LogFailure(name string, msg Message, err error) {
	b.Logger().Error("adapter delivery failed",
		logger.F("adapter", name),
		logger.F("channel", msg.Channel),
		logger.F("to", MaskRecipient(msg.To)),
		logger.F("error", err),
	)
}

// Logger exposes the adapter logger for structured diagnostics.
func (b BaseAdapter) Logger() logger.Logger {
	if b.logger == nil {
		return &logger.Nop{}
	}
	return b.logger
}

// MaskRecipient hides the middle of a recipient id or address.
func MaskRecipient(to string) string {
	if len(to) <= 4 {
		return to
	}
	if masked, err := masker.Default.String("preserveEnds(2,2)", to); err == nil && masked != to {
		return masked
	}
	return to[:2] + strings.Repeat("*", len(to)-4) + to[len(to)-2:]
}
