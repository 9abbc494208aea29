package schedule

import (
	"testing"
	"time"
)

func TestWindow_Contains(t *testing.T) {
	t.Parallel()

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	until := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC).Unix()
	window := Window{Since: &since, Until: &until}

	inside := until
	if !window.Contains(&inside) {
		t.Fatalf("expected last second of window to be included")
	}
	outside := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Unix()
	if window.Contains(&outside) {
		t.Fatalf("expected first second after window to be excluded")
	}
	before := since - 1
	if window.Contains(&before) {
		t.Fatalf("expected date before since to be excluded")
	}
	if window.Contains(nil) {
		t.Fatalf("expected undated game to be excluded from bounded window")
	}
}

func TestWindow_UnboundedKeepsUndated(t *testing.T) {
	t.Parallel()

	games := []Game{{ExternalID: "1"}, {ExternalID: "2", Date: int64Ptr(5)}}
	filtered := Window{}.Filter(games)
	if len(filtered) != 2 {
		t.Fatalf("expected both games, got=%d", len(filtered))
	}

	since := int64(10)
	filtered = Window{Since: &since}.Filter(games)
	if len(filtered) != 0 {
		t.Fatalf("expected no games after since bound, got=%d", len(filtered))
	}
}
