package postgres

import (
	"testing"

	"github.com/riskibarqy/b1g-analytics/internal/domain/rawdata"
)

func TestRawPayloadRows_LastPayloadPerKeyWins(t *testing.T) {
	t.Parallel()

	rows := rawPayloadRows([]rawdata.Payload{
		{Source: rawdata.SourceESPN, EntityType: "schedule", EntityKey: "2025:iowa", PayloadJSON: `{"v":1}`},
		{Source: rawdata.SourceESPN, EntityType: "boxscore", EntityKey: "401", PayloadJSON: `{}`, PayloadHash: "fixed"},
		{Source: rawdata.SourceESPN, EntityType: "schedule", EntityKey: "2025:iowa", PayloadJSON: `{"v":2}`},
	})

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].EntityType != "schedule" || rows[0].Payload != `{"v":2}` {
		t.Fatalf("expected newest schedule payload in first slot, got %+v", rows[0])
	}
	if rows[0].PayloadHash != rawdata.Hash([]byte(`{"v":2}`)) {
		t.Fatalf("expected hash to be filled from payload")
	}
	if rows[1].PayloadHash != "fixed" {
		t.Fatalf("expected provided hash to be kept, got %q", rows[1].PayloadHash)
	}
}

func TestRawPayloadRows_Empty(t *testing.T) {
	t.Parallel()

	if rows := rawPayloadRows(nil); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
