package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/zjzjy/LQBench/internal/benchmark"
)

// SQLiteStore 把批次整体序列化为 JSON 存入 sqlite，摘要字段单独
// 建列用于列表查询。纯 Go 驱动，无 cgo 依赖。
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS batches (
	id            TEXT PRIMARY KEY,
	total_cases   INTEGER NOT NULL,
	succeeded     INTEGER NOT NULL,
	failed        INTEGER NOT NULL,
	mean_accuracy REAL NOT NULL,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP NOT NULL,
	payload       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_batches_started_at ON batches(started_at DESC);
`

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, batch *benchmark.BatchResult) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch %s: %w", batch.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO batches
			(id, total_cases, succeeded, failed, mean_accuracy, started_at, finished_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID,
		batch.Summary.TotalCases,
		batch.Summary.Succeeded,
		batch.Summary.Failed,
		batch.Summary.MeanAccuracy,
		batch.StartedAt,
		batch.FinishedAt,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("save batch %s: %w", batch.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*benchmark.BatchResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM batches WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load batch %s: %w", id, err)
	}
	var batch benchmark.BatchResult
	if err := json.Unmarshal([]byte(payload), &batch); err != nil {
		return nil, fmt.Errorf("unmarshal batch %s: %w", id, err)
	}
	return &batch, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]BatchMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, total_cases, succeeded, failed, mean_accuracy, started_at, finished_at
		FROM batches ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var metas []BatchMeta
	for rows.Next() {
		var m BatchMeta
		if err := rows.Scan(&m.ID, &m.TotalCases, &m.Succeeded, &m.Failed, &m.MeanAccuracy, &m.StartedAt, &m.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan batch meta: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Open 按配置选择存储实现。
func Open(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported store kind: %s", kind)
	}
}
