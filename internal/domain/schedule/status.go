package schedule

import "strings"

var finalStatuses = map[string]struct{}{
	"final":        {},
	"f":            {},
	"final/ot":     {},
	"f/ot":         {},
	"final/2ot":    {},
	"f/2ot":        {},
	"final/3ot":    {},
	"f/3ot":        {},
	"final/4ot":    {},
	"f/4ot":        {},
	"status_final": {},
	"post":         {},
	"complete":     {},
	"completed":    {},
	"full time":    {},
	"ft":           {},
	"end of game":  {},
}

// IsFinalStatus reports whether a provider status string marks a completed game.
func IsFinalStatus(status string) bool {
	value := strings.ToLower(strings.TrimSpace(status))
	if value == "" {
		return false
	}
	if _, ok := finalStatuses[value]; ok {
		return true
	}
	return strings.HasPrefix(value, "final ") || strings.HasPrefix(value, "final/")
}
