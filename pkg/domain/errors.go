package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidArgument  = errors.New("dispenser: invalid argument")
	ErrCategoryRequired = fmt.Errorf("%w: category is required", ErrInvalidArgument)
	ErrUnknownCategory  = errors.New("dispenser: unknown category")
	ErrEmptyCategory    = errors.New("dispenser: category is empty")
	ErrCooldownActive   = errors.New("dispenser: cooldown active")
	ErrDeliveryFailed   = errors.New("dispenser: delivery failed")
	ErrDeliveryDenied   = errors.New("dispenser: delivery denied")
	ErrPersistence      = errors.New("dispenser: persistence failure")
	ErrInvalidValue     = errors.New("dispenser: invalid value")
	ErrWrongChannel     = errors.New("dispenser: request outside generation channel")
	ErrNotFound         = errors.New("dispenser: not found")
	ErrForbidden        = errors.New("dispenser: admin permission required")
)

// CategoryError attaches the currently available categories to a category
// failure so the caller can offer alternatives.
type CategoryError struct {
	Category  Category
	Available []Category
	Err       error
}

func (e *CategoryError) Error() string {
	if e.Category == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Category)
}

func (e *CategoryError) Unwrap() error { return e.Err }

// CooldownError reports how long a user must wait before the next issuance.
type CooldownError struct {
	Remaining int
	RetryAt   time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: %d minute(s) remaining", ErrCooldownActive.Error(), e.Remaining)
}

func (e *CooldownError) Is(target error) bool { return target == ErrCooldownActive }

// DeliveryReason classifies why a delivery failed. Every reason triggers a
// rollback; the reason only changes the remediation shown to the user.
type DeliveryReason string

const (
	DeliveryDenied      DeliveryReason = "denied"
	DeliveryUnreachable DeliveryReason = "unreachable"
	DeliveryRejected    DeliveryReason = "rejected"
	DeliveryUnknown     DeliveryReason = "unknown"
)

// DeliveryError wraps a delivery collaborator failure.
type DeliveryError struct {
	Reason   DeliveryReason
	Provider string
	Err      error
}

func (e *DeliveryError) Error() string {
	var b strings.Builder
	b.WriteString(ErrDeliveryFailed.Error())
	b.WriteString(" (")
	b.WriteString(string(e.Reason))
	b.WriteString(")")
	if e.Provider != "" {
		b.WriteString(" via ")
		b.WriteString(e.Provider)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool {
	switch target {
	case ErrDeliveryFailed:
		return true
	case ErrDeliveryDenied:
		return e.Reason == DeliveryDenied
	default:
		return false
	}
}

// Kind is the presentation-level failure classification.
type Kind string

const (
	KindNone            Kind = ""
	KindInvalidArgument Kind = "invalid_argument"
	KindUnknownCategory Kind = "unknown_category"
	KindEmptyCategory   Kind = "empty_category"
	KindCooldownActive  Kind = "cooldown_active"
	KindDeliveryDenied  Kind = "delivery_denied"
	KindDeliveryFailed  Kind = "delivery_failed"
	KindIO              Kind = "io_error"
	KindInvalidValue    Kind = "invalid_value"
	KindWrongChannel    Kind = "wrong_channel"
	KindNotFound        Kind = "not_found"
	KindForbidden       Kind = "forbidden"
	KindInternal        Kind = "internal"
)

// KindOf maps err onto the failure taxonomy.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrUnknownCategory):
		return KindUnknownCategory
	case errors.Is(err, ErrEmptyCategory):
		return KindEmptyCategory
	case errors.Is(err, ErrCooldownActive):
		return KindCooldownActive
	case errors.Is(err, ErrDeliveryDenied):
		return KindDeliveryDenied
	case errors.Is(err, ErrDeliveryFailed):
		return KindDeliveryFailed
	case errors.Is(err, ErrPersistence):
		return KindIO
	case errors.Is(err, ErrInvalidValue):
		return KindInvalidValue
	case errors.Is(err, ErrWrongChannel):
		return KindWrongChannel
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindInternal
	}
}
