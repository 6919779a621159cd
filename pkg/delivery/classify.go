package delivery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/goliatone/go-dispenser/pkg/domain"
)

// StatusError is returned by HTTP adapters when the platform answers with a
// non-2xx status. Code carries the platform's own error code when present.
type StatusError struct {
	Provider    string
	StatusCode  int
	Code        int
	Description string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

// DeniedCodes lists platform error codes meaning the recipient refuses
// private messages, keyed by provider.
var DeniedCodes = map[string][]int{
	"discord": {50007},
}

// Classify maps an adapter failure onto a *domain.DeliveryError. Errors that
// already carry a reason pass through unchanged.
func Classify(provider string, err error) *domain.DeliveryError {
	if err == nil {
		return nil
	}
	var derr *domain.DeliveryError
	if errors.As(err, &derr) {
		return derr
	}
	return &domain.DeliveryError{Reason: reasonFor(provider, err), Provider: provider, Err: err}
}

func reasonFor(provider string, err error) domain.DeliveryReason {
	var status *StatusError
	if errors.As(err, &status) {
		key := status.Provider
		if key == "" {
			key = provider
		}
		for _, code := range DeniedCodes[key] {
			if status.Code == code {
				return domain.DeliveryDenied
			}
		}
		switch {
		case status.StatusCode == http.StatusForbidden:
			return domain.DeliveryDenied
		case status.StatusCode == http.StatusTooManyRequests || status.StatusCode >= 500:
			return domain.DeliveryUnreachable
		case status.StatusCode >= 400:
			return domain.DeliveryRejected
		}
		return domain.DeliveryUnknown
	}

	if errors.Is(err, ErrAdapterNotFound) {
		return domain.DeliveryRejected
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.DeliveryUnreachable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.DeliveryUnreachable
	}
	return domain.DeliveryUnknown
}
