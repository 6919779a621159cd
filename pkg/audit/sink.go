package audit

import (
	"context"
	"time"

	"github.com/goliatone/go-dispenser/internal/storage/file"
	"github.com/goliatone/go-dispenser/pkg/activity"
	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/logger"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
)

// Sink turns activity events into audit entries. Write failures are logged
// and never reach the caller.
type Sink struct {
	Repository store.AuditRepository
	Logger     logger.Logger
}

var _ activity.Hook = Sink{}

// Notify maps the event into a domain.AuditEntry and appends it.
func (s Sink) Notify(ctx context.Context, evt activity.Event) {
	if s.Repository == nil {
		return
	}
	entry := &domain.AuditEntry{
		Actor:      domain.Actor{ID: evt.ActorID, Name: evt.ActorName}.String(),
		Action:     evt.Verb,
		Details:    evt.Details,
		OccurredAt: evt.OccurredAt,
		Metadata:   buildMetadata(evt),
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}
	if err := s.Repository.Append(ctx, entry); err != nil && s.Logger != nil {
		s.Logger.Warn("audit append failed",
			logger.F("action", evt.Verb),
			logger.F("error", err),
		)
	}
}

func buildMetadata(evt activity.Event) domain.JSONMap {
	data := MaskMetadata(evt.Metadata)
	if data == nil {
		data = make(map[string]any)
	}
	if evt.Category != "" {
		data["category"] = evt.Category
	}
	if evt.Channel != "" {
		data["channel"] = evt.Channel
	}
	if len(data) == 0 {
		return nil
	}
	return domain.JSONMap(data)
}

// FormatLine renders "[YYYY-MM-DD HH:MM:SS] <actor> - <action> - <details>".
func FormatLine(entry domain.AuditEntry) string {
	return file.FormatLine(entry)
}
