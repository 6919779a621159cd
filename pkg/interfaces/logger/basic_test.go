package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestBasicLoggerFormatsSortedFields(t *testing.T) {
	var buf bytes.Buffer
	lgr := New(&buf, LevelDebug).With(F("user", "42"))
	lgr.Info("issued", F("category", "netflix"), F("attempt", 1))

	got := strings.TrimSpace(buf.String())
	want := "[INFO] issued attempt=1 category=netflix user=42"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBasicLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	lgr := New(&buf, LevelWarn)
	lgr.Debug("hidden")
	lgr.Info("hidden")
	lgr.Warn("shown")

	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[WARN] shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
