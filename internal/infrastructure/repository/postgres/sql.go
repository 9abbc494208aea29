package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/riskibarqy/b1g-analytics/internal/usecase"
)

const pqUniqueViolation = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == pqUniqueViolation
}

// classifyWriteError marks unique violations as conflicts so callers can
// tell them apart from connectivity failures.
func classifyWriteError(err error, operation string) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s: %v", usecase.ErrConflict, operation, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}

// upsertReturning is the RETURNING shape of every upsert. xmax is zero only
// for freshly inserted tuples.
type upsertReturning struct {
	ID       int64 `db:"id"`
	Inserted bool  `db:"inserted"`
}

const returningUpsert = "RETURNING id, (xmax = 0) AS inserted"

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	out := value.String
	return &out
}

func nullInt64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	out := value.Int64
	return &out
}

func nullIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	out := int(value.Int64)
	return &out
}

func nullFloatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	out := value.Float64
	return &out
}

func nullBoolPtr(value sql.NullBool) *bool {
	if !value.Valid {
		return nil
	}
	out := value.Bool
	return &out
}
