package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/b1g-analytics/internal/domain/rawdata"
)

// rawPayloadBatch caps rows per statement well below the 65535 bind
// parameter limit.
const rawPayloadBatch = 500

const upsertRawPayloads = `INSERT INTO raw_data_payloads (source, entity_type, entity_key, payload, payload_hash, source_updated_at)
VALUES (:source, :entity_type, :entity_key, :payload, :payload_hash, :source_updated_at)
ON CONFLICT (source, entity_type, entity_key) DO UPDATE SET
    payload = EXCLUDED.payload,
    payload_hash = EXCLUDED.payload_hash,
    source_updated_at = EXCLUDED.source_updated_at,
    ingested_at = NOW()
WHERE raw_data_payloads.payload_hash IS DISTINCT FROM EXCLUDED.payload_hash`

type rawPayloadRow struct {
	Source          string     `db:"source"`
	EntityType      string     `db:"entity_type"`
	EntityKey       string     `db:"entity_key"`
	Payload         string     `db:"payload"`
	PayloadHash     string     `db:"payload_hash"`
	SourceUpdatedAt *time.Time `db:"source_updated_at"`
}

// RawDataRepository archives provider bodies. A row is only rewritten when
// its payload hash changes.
type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

func (r *RawDataRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	rows := rawPayloadRows(items)
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin raw payload tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < len(rows); start += rawPayloadBatch {
		end := min(start+rawPayloadBatch, len(rows))
		if _, err := tx.NamedExecContext(ctx, upsertRawPayloads, rows[start:end]); err != nil {
			return classifyWriteError(err, fmt.Sprintf("upsert raw payloads %d-%d", start, end))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit raw payload tx: %w", err)
	}
	return nil
}

// rawPayloadRows keeps the last payload per key. Postgres rejects a single
// upsert statement that touches the same row twice.
func rawPayloadRows(items []rawdata.Payload) []rawPayloadRow {
	type key struct{ source, entityType, entityKey string }

	index := make(map[key]int, len(items))
	rows := make([]rawPayloadRow, 0, len(items))
	for _, item := range items {
		row := rawPayloadRow{
			Source:          item.Source,
			EntityType:      item.EntityType,
			EntityKey:       item.EntityKey,
			Payload:         item.PayloadJSON,
			PayloadHash:     item.PayloadHash,
			SourceUpdatedAt: item.SourceUpdatedAt,
		}
		if row.PayloadHash == "" {
			row.PayloadHash = rawdata.Hash([]byte(item.PayloadJSON))
		}

		k := key{row.Source, row.EntityType, row.EntityKey}
		if i, seen := index[k]; seen {
			rows[i] = row
			continue
		}
		index[k] = len(rows)
		rows = append(rows, row)
	}
	return rows
}
