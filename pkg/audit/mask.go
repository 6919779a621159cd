package audit

import (
	"fmt"
	"strings"

	masker "github.com/goliatone/go-masker"
)

var sensitiveFields = []string{
	"identifier", "credential", "record", "password",
	"token", "recipient", "email",
}

func init() {
	for _, field := range sensitiveFields {
		masker.Default.RegisterMaskField(field, "preserveEnds(2,2)")
	}
}

// IsSensitive reports whether values stored under key are masked.
func IsSensitive(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, field := range sensitiveFields {
		if key == field {
			return true
		}
	}
	return false
}

// MaskMetadata returns a copy of meta with sensitive values masked.
func MaskMetadata(meta map[string]any) map[string]any {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]any, len(meta))
	for key, value := range meta {
		if IsSensitive(key) {
			out[key] = MaskString(fmt.Sprint(value))
			continue
		}
		out[key] = value
	}
	return out
}

// MaskString hides everything but the first and last two characters.
func MaskString(value string) string {
	if value == "" {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	if masked, err := masker.Default.String("preserveEnds(2,2)", value); err == nil && masked != value {
		return masked
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}
