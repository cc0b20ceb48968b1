package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxPool interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// PGXRecordRepository persists store records as JSONB rows keyed by collection and id.
type PGXRecordRepository struct {
	pool pgxPool
}

// NewPGXRecordRepository wires a pgx backed record repository.
func NewPGXRecordRepository(pool *pgxpool.Pool) *PGXRecordRepository {
	return &PGXRecordRepository{pool: pool}
}

var (
	_ RecordSink   = (*PGXRecordRepository)(nil)
	_ RecordSource = (*PGXRecordRepository)(nil)
)

const createRecordsTableSQL = `
        CREATE TABLE IF NOT EXISTS dashboard_records (
            collection TEXT NOT NULL,
            id BIGINT NOT NULL,
            payload JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (collection, id)
        );
    `

// EnsureSchema creates the records table when it does not exist yet.
func (r *PGXRecordRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createRecordsTableSQL); err != nil {
		return fmt.Errorf("create dashboard_records: %w", err)
	}
	return nil
}

const upsertRecordSQL = `
        INSERT INTO dashboard_records (collection, id, payload, updated_at)
        VALUES ($1, $2, $3::jsonb, NOW())
        ON CONFLICT (collection, id) DO UPDATE SET
            payload = EXCLUDED.payload,
            updated_at = NOW();
    `

// SaveRecord inserts or replaces the JSON payload of one entity.
func (r *PGXRecordRepository) SaveRecord(ctx context.Context, collection string, id int64, payload any) error {
	if collection == "" {
		return fmt.Errorf("collection must not be empty")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s/%d: %w", collection, id, err)
	}
	if _, err := r.pool.Exec(ctx, upsertRecordSQL, collection, id, string(raw)); err != nil {
		return fmt.Errorf("upsert %s/%d: %w", collection, id, err)
	}
	return nil
}

// DeleteRecord removes one entity row.
func (r *PGXRecordRepository) DeleteRecord(ctx context.Context, collection string, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM dashboard_records WHERE collection = $1 AND id = $2`, collection, id); err != nil {
		return fmt.Errorf("delete %s/%d: %w", collection, id, err)
	}
	return nil
}

// LoadAll returns every stored record ordered by collection then id.
func (r *PGXRecordRepository) LoadAll(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT collection, id, payload FROM dashboard_records ORDER BY collection, id`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			rec     Record
			payload []byte
		)
		if err := rows.Scan(&rec.Collection, &rec.ID, &payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Payload = json.RawMessage(payload)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
