package cases

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"veridoc/pkg/platform/sentinel"
)

// PostgresStore persists case records in PostgreSQL. The rules report and
// the latency breakdown are stored as JSONB so the full analysis artifact
// survives round trips without a column per rule.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the cases table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_cases (
			case_id          TEXT PRIMARY KEY,
			created_at       TIMESTAMPTZ NOT NULL,
			final_decision   TEXT NOT NULL,
			final_score      DOUBLE PRECISION NOT NULL,
			risk_level       TEXT NOT NULL,
			pipeline_version TEXT NOT NULL,
			request_id       TEXT NOT NULL DEFAULT '',
			payload          JSONB NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure cases schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal case record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_cases
			(case_id, created_at, final_decision, final_score, risk_level, pipeline_version, request_id, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (case_id) DO NOTHING`,
		record.ID, record.CreatedAt, string(record.Decision), record.Score,
		string(record.RiskLevel), record.PipelineVersion, record.RequestID, payload)
	if err != nil {
		return fmt.Errorf("save case record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Record, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM analysis_cases WHERE case_id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, sentinel.ErrNotFound
		}
		return Record{}, fmt.Errorf("get case record: %w", err)
	}
	return unmarshalRecord(payload)
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM analysis_cases ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list case records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan case record: %w", err)
		}
		record, err := unmarshalRecord(payload)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list case records: %w", err)
	}
	return records, nil
}

func unmarshalRecord(payload []byte) (Record, error) {
	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return Record{}, fmt.Errorf("unmarshal case record: %w", err)
	}
	return record, nil
}
