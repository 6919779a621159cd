package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
)

// DefaultAuditFile is the append-only audit log name.
const DefaultAuditFile = "gen_bot_log.txt"

// TimestampLayout is the audit line timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatLine renders "[<timestamp>] <actor> - <action> - <details>".
func FormatLine(entry domain.AuditEntry) string {
	return fmt.Sprintf("[%s] %s - %s - %s",
		entry.OccurredAt.Format(TimestampLayout),
		oneLine(entry.Actor),
		oneLine(entry.Action),
		oneLine(entry.Details),
	)
}

// ParseLine is the inverse of FormatLine.
func ParseLine(line string) (domain.AuditEntry, bool) {
	if !strings.HasPrefix(line, "[") {
		return domain.AuditEntry{}, false
	}
	end := strings.Index(line, "] ")
	if end < 0 {
		return domain.AuditEntry{}, false
	}
	ts, err := time.ParseInLocation(TimestampLayout, line[1:end], time.Local)
	if err != nil {
		return domain.AuditEntry{}, false
	}
	parts := strings.SplitN(line[end+2:], " - ", 3)
	if len(parts) < 2 {
		return domain.AuditEntry{}, false
	}
	entry := domain.AuditEntry{
		Actor:      parts[0],
		Action:     parts[1],
		OccurredAt: ts,
	}
	if len(parts) == 3 {
		entry.Details = parts[2]
	}
	entry.CreatedAt = ts
	return entry, true
}

func oneLine(value string) string {
	return strings.ReplaceAll(strings.ReplaceAll(value, "\r", " "), "\n", " ")
}

// AuditLog appends formatted lines to a text file.
type AuditLog struct {
	mu   sync.Mutex
	path string
}

var _ store.AuditRepository = (*AuditLog)(nil)

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

func (l *AuditLog) Append(ctx context.Context, entry *domain.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry == nil {
		return errors.New("file: audit entry is required")
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("file: mkdir audit dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("file: open audit log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(FormatLine(*entry) + "\n"); err != nil {
		return fmt.Errorf("file: append audit log: %w", err)
	}
	return nil
}

func (l *AuditLog) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.AuditEntry], error) {
	if err := ctx.Err(); err != nil {
		return store.ListResult[domain.AuditEntry]{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return store.ListResult[domain.AuditEntry]{}, nil
	}
	if err != nil {
		return store.ListResult[domain.AuditEntry]{}, fmt.Errorf("file: open audit log: %w", err)
	}
	defer f.Close()

	var entries []domain.AuditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		entry, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		if !opts.Since.IsZero() && entry.OccurredAt.Before(opts.Since) {
			continue
		}
		if !opts.Until.IsZero() && entry.OccurredAt.After(opts.Until) {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return store.ListResult[domain.AuditEntry]{}, fmt.Errorf("file: scan audit log: %w", err)
	}

	total := len(entries)
	start := min(opts.Offset, total)
	end := total
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return store.ListResult[domain.AuditEntry]{Items: entries[start:end], Total: total}, nil
}
