package espn

import (
	"math"
	"strconv"
	"strings"
	"time"
)

func getMap(src map[string]any, key string) map[string]any {
	if src == nil {
		return nil
	}
	value, _ := src[key].(map[string]any)
	return value
}

func getSlice(src map[string]any, key string) []any {
	if src == nil {
		return nil
	}
	value, _ := src[key].([]any)
	return value
}

func getMaps(src map[string]any, key string) []map[string]any {
	items := getSlice(src, key)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if typed, ok := item.(map[string]any); ok {
			out = append(out, typed)
		}
	}
	return out
}

func firstMap(src map[string]any, key string) map[string]any {
	items := getSlice(src, key)
	if len(items) == 0 {
		return nil
	}
	value, _ := items[0].(map[string]any)
	return value
}

func getString(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	value, ok := src[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// getID reads identifiers the provider sends as either strings or numbers.
func getID(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	switch typed := src[key].(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return ""
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(typed, 10)
	case int:
		return strconv.Itoa(typed)
	default:
		return ""
	}
}

func getBool(src map[string]any, key string) *bool {
	if src == nil {
		return nil
	}
	value, ok := src[key].(bool)
	if !ok {
		return nil
	}
	return &value
}

// toFloat accepts numbers, numeric strings and {value, displayValue} objects.
func toFloat(value any) *float64 {
	var out float64
	switch typed := value.(type) {
	case float64:
		out = typed
	case float32:
		out = float64(typed)
	case int:
		out = float64(typed)
	case int64:
		out = float64(typed)
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil
		}
		out = parsed
	case map[string]any:
		if nested := toFloat(typed["value"]); nested != nil {
			return nested
		}
		return toFloat(typed["displayValue"])
	default:
		return nil
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return nil
	}
	return &out
}

// toInt truncates toward zero.
func toInt(value any) *int {
	parsed := toFloat(value)
	if parsed == nil {
		return nil
	}
	out := int(math.Trunc(*parsed))
	return &out
}

var providerTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z",
}

func toEpochSeconds(value string) *int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range providerTimeLayouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		out := parsed.Unix()
		return &out
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
