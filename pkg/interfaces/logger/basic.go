package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// Level filters which lines a BasicLogger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a level name to a Level, defaulting to LevelInfo.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug", "trace":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// BasicLogger prints "[LEVEL] msg key=value" lines to a writer.
type BasicLogger struct {
	mu     *sync.Mutex
	out    io.Writer
	level  Level
	fields []Field
}

var _ Logger = (*BasicLogger)(nil)

// New returns a basic logger that writes to w (stdout when nil).
func New(w io.Writer, level Level) *BasicLogger {
	if w == nil {
		w = os.Stdout
	}
	return &BasicLogger{
		mu:    &sync.Mutex{},
		out:   w,
		level: level,
	}
}

// Default returns a stdout logger at info level.
func Default() Logger {
	return New(os.Stdout, LevelInfo)
}

// With returns a logger that includes the fields on each log line.
func (l *BasicLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	next := &BasicLogger{
		mu:     l.mu,
		out:    l.out,
		level:  l.level,
		fields: make([]Field, 0, len(l.fields)+len(fields)),
	}
	next.fields = append(next.fields, l.fields...)
	next.fields = append(next.fields, fields...)
	return next
}

func (l *BasicLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, "DEBUG", msg, fields) }
func (l *BasicLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, "INFO", msg, fields) }
func (l *BasicLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, "WARN", msg, fields) }
func (l *BasicLogger) Error(msg string, fields ...Field) { l.log(LevelError, "ERROR", msg, fields) }

func (l *BasicLogger) log(level Level, name, msg string, fields []Field) {
	if level < l.level {
		return
	}
	line := fmt.Sprintf("[%s] %s", name, msg)
	if rendered := formatFields(l.fields, fields); rendered != "" {
		line += " " + rendered
	}
	l.mu.Lock()
	fmt.Fprintln(l.out, line)
	l.mu.Unlock()
}

func formatFields(base, extra []Field) string {
	if len(base) == 0 && len(extra) == 0 {
		return ""
	}
	merged := make(map[string]any, len(base)+len(extra))
	for _, f := range base {
		merged[f.Key] = f.Value
	}
	for _, f := range extra {
		merged[f.Key] = f.Value
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, merged[k]))
	}
	return strings.Join(parts, " ")
}
