package notices

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/goliatone/go-dispenser/pkg/delivery"
	"github.com/goliatone/go-dispenser/pkg/domain"
)

// MissingPart is shown when a record has no identifier or credential.
const MissingPart = "N/A"

// RetryLayout formats the cooldown retry time.
const RetryLayout = "15:04"

var _ delivery.Composer = (*Service)(nil)

// IssuedView is the public confirmation payload. It never carries the record.
type IssuedView struct {
	Recipient         domain.Actor
	Category          domain.Category
	CategoryRemaining int
	TotalRemaining    int
}

// AddedView summarizes an add command.
type AddedView struct {
	Category      domain.Category
	Added         int
	Skipped       int
	CategoryTotal int
	Total         int
}

// Issued renders the public confirmation.
func (s *Service) Issued(ctx context.Context, locale string, view IssuedView) (Notice, error) {
	return s.Render(ctx, CodeIssued, locale, map[string]any{
		"mention":            mention(view.Recipient),
		"category":           view.Category.String(),
		"category_remaining": view.CategoryRemaining,
		"total_remaining":    view.TotalRemaining,
	})
}

// Compose renders the private message carrying the record.
func (s *Service) Compose(ctx context.Context, parcel delivery.Parcel) (delivery.Envelope, error) {
	identifier, credential := parcel.Record.Split()
	notice, err := s.Render(ctx, CodeDirectMessage, parcel.Recipient.Locale, map[string]any{
		"category":   strings.ToUpper(parcel.Category.String()),
		"identifier": orMissing(identifier),
		"credential": orMissing(credential),
	})
	if err != nil {
		return delivery.Envelope{}, err
	}
	return delivery.Envelope{Subject: notice.Subject, Body: notice.Body}, nil
}

// Added renders the add summary.
func (s *Service) Added(ctx context.Context, locale string, view AddedView) (Notice, error) {
	return s.Render(ctx, CodeAdded, locale, map[string]any{
		"category":       view.Category.String(),
		"added":          view.Added,
		"skipped":        view.Skipped,
		"category_total": view.CategoryTotal,
		"total":          view.Total,
	})
}

// Stock renders the per-category counts.
func (s *Service) Stock(ctx context.Context, locale string, counts []domain.CategoryCount, total int) (Notice, error) {
	rows := make([]map[string]any, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, map[string]any{"name": strings.ToUpper(c.Category.String()), "count": c.Count})
	}
	return s.Render(ctx, CodeStock, locale, map[string]any{
		"categories": rows,
		"total":      total,
	})
}

// Setting names accepted by SettingChanged.
const (
	SettingCooldown  = "cooldown"
	SettingChannel   = "channel"
	SettingAdminRole = "admin_role"
)

// SettingChanged renders the confirmation of an admin mutation.
func (s *Service) SettingChanged(ctx context.Context, locale, field string, value int64) (Notice, error) {
	return s.Render(ctx, CodeSettings, locale, map[string]any{
		"field":   field,
		"value":   value,
		"display": strconv.FormatInt(value, 10),
	})
}

// Failure renders the user-facing message for err. Raw error text is never
// included; unexpected errors render the generic internal notice.
func (s *Service) Failure(ctx context.Context, locale string, err error) Notice {
	kind := domain.KindOf(err)
	if kind == domain.KindWrongChannel || kind == domain.KindNone {
		return Notice{Code: string(kind), Silent: true, Locale: s.ResolveLocale(locale)}
	}

	code, data := failureData(kind, err)
	notice, rerr := s.Render(ctx, code, locale, data)
	if rerr != nil {
		notice, rerr = s.Render(ctx, CodeInternal, locale, nil)
		if rerr != nil {
			return Notice{Code: CodeInternal, Body: "Something went wrong.", Locale: s.ResolveLocale(locale)}
		}
	}
	return notice
}

func failureData(kind domain.Kind, err error) (string, map[string]any) {
	data := map[string]any{}
	var catErr *domain.CategoryError
	if errors.As(err, &catErr) {
		data["category"] = catErr.Category.String()
		data["available"] = joinCategories(catErr.Available)
	}

	switch kind {
	case domain.KindInvalidArgument:
		if errors.Is(err, domain.ErrCategoryRequired) {
			return CodeCategoryRequired, data
		}
		return CodeInvalidArgument, data
	case domain.KindUnknownCategory:
		return CodeUnknownCategory, data
	case domain.KindEmptyCategory:
		return CodeEmptyCategory, data
	case domain.KindCooldownActive:
		var cd *domain.CooldownError
		if errors.As(err, &cd) {
			data["remaining"] = cd.Remaining
			data["retry_at"] = cd.RetryAt.Format(RetryLayout)
		}
		return CodeCooldown, data
	case domain.KindDeliveryDenied:
		return CodeDeliveryDenied, data
	case domain.KindDeliveryFailed:
		return CodeDeliveryFailed, data
	case domain.KindInvalidValue:
		return CodeInvalidValue, data
	case domain.KindNotFound:
		return CodeNotFound, data
	case domain.KindForbidden:
		return CodeForbidden, data
	case domain.KindIO:
		return CodeIO, data
	default:
		return CodeInternal, data
	}
}

func joinCategories(categories []domain.Category) string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}

func mention(actor domain.Actor) string {
	if strings.TrimSpace(actor.Name) != "" {
		return actor.Name
	}
	return actor.ID
}

func orMissing(value string) string {
	if strings.TrimSpace(value) == "" {
		return MissingPart
	}
	return value
}
