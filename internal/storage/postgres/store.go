// Package postgres persists lifecycle records and asset aggregates in
// PostgreSQL. Records are stored as JSONB rows keyed by (kind, id) so one
// pair of tables serves every record kind of every asset instance.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"rwa-ledger/internal/lifecycle"
	"rwa-ledger/pkg/sentinel"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the two tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS lifecycle_records (
	kind   TEXT  NOT NULL,
	id     TEXT  NOT NULL,
	record JSONB NOT NULL,
	PRIMARY KEY (kind, id)
);
CREATE TABLE IF NOT EXISTS asset_aggregates (
	asset     TEXT  PRIMARY KEY,
	aggregate JSONB NOT NULL
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate lifecycle schema: %w", err)
	}
	return nil
}

// RecordStore is a lifecycle.RecordStore backed by the lifecycle_records
// table. kind namespaces one record collection, e.g. "bond_payments".
type RecordStore[R any] struct {
	db   *sql.DB
	kind string
}

func NewRecordStore[R any](db *sql.DB, kind string) *RecordStore[R] {
	return &RecordStore[R]{db: db, kind: kind}
}

func (s *RecordStore[R]) Save(ctx context.Context, id string, record R) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", s.kind, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lifecycle_records (kind, id, record)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, id) DO UPDATE SET record = EXCLUDED.record`,
		s.kind, id, payload)
	if err != nil {
		return fmt.Errorf("save %s record: %w", s.kind, err)
	}
	return nil
}

func (s *RecordStore[R]) Find(ctx context.Context, id string) (R, error) {
	var record R
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT record FROM lifecycle_records WHERE kind = $1 AND id = $2`,
		s.kind, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record, sentinel.ErrNotFound
		}
		return record, fmt.Errorf("find %s record: %w", s.kind, err)
	}
	if err := json.Unmarshal(payload, &record); err != nil {
		return record, fmt.Errorf("unmarshal %s record: %w", s.kind, err)
	}
	return record, nil
}

func (s *RecordStore[R]) List(ctx context.Context, startAfter string, limit int) ([]lifecycle.Keyed[R], error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, record FROM lifecycle_records
		WHERE kind = $1 AND id > $2
		ORDER BY id ASC
		LIMIT $3`,
		s.kind, startAfter, lifecycle.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", s.kind, err)
	}
	defer rows.Close()

	var page []lifecycle.Keyed[R]
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", s.kind, err)
		}
		var record R
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("unmarshal %s record: %w", s.kind, err)
		}
		page = append(page, lifecycle.Keyed[R]{ID: id, Record: record})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s records: %w", s.kind, err)
	}
	return page, nil
}

// AggregateStore is a lifecycle.AggregateStore backed by the
// asset_aggregates table, one row per deployed asset instance.
type AggregateStore[A any] struct {
	db    *sql.DB
	asset string
}

func NewAggregateStore[A any](db *sql.DB, asset string) *AggregateStore[A] {
	return &AggregateStore[A]{db: db, asset: asset}
}

func (s *AggregateStore[A]) Load(ctx context.Context) (A, error) {
	var aggregate A
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT aggregate FROM asset_aggregates WHERE asset = $1`,
		s.asset).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return aggregate, sentinel.ErrNotInitialized
		}
		return aggregate, fmt.Errorf("load %s aggregate: %w", s.asset, err)
	}
	if err := json.Unmarshal(payload, &aggregate); err != nil {
		return aggregate, fmt.Errorf("unmarshal %s aggregate: %w", s.asset, err)
	}
	return aggregate, nil
}

func (s *AggregateStore[A]) Save(ctx context.Context, aggregate A) error {
	payload, err := json.Marshal(aggregate)
	if err != nil {
		return fmt.Errorf("marshal %s aggregate: %w", s.asset, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO asset_aggregates (asset, aggregate)
		VALUES ($1, $2)
		ON CONFLICT (asset) DO UPDATE SET aggregate = EXCLUDED.aggregate`,
		s.asset, payload)
	if err != nil {
		return fmt.Errorf("save %s aggregate: %w", s.asset, err)
	}
	return nil
}
