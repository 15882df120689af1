// Package store 批次结果的持久化。默认内存存储，可切换 sqlite。
package store

import (
	"context"
	"errors"
	"time"

	"github.com/zjzjy/LQBench/internal/benchmark"
)

// ErrNotFound 指定批次不存在。
var ErrNotFound = errors.New("store: batch not found")

// BatchMeta 列表接口返回的批次摘要，不含完整对话记录。
type BatchMeta struct {
	ID           string    `json:"id"`
	TotalCases   int       `json:"total_cases"`
	Succeeded    int       `json:"succeeded"`
	Failed       int       `json:"failed"`
	MeanAccuracy float64   `json:"mean_accuracy"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Store 批次结果存储。
type Store interface {
	Save(ctx context.Context, batch *benchmark.BatchResult) error
	Get(ctx context.Context, id string) (*benchmark.BatchResult, error)
	List(ctx context.Context) ([]BatchMeta, error)
	Close() error
}

func metaOf(batch *benchmark.BatchResult) BatchMeta {
	return BatchMeta{
		ID:           batch.ID,
		TotalCases:   batch.Summary.TotalCases,
		Succeeded:    batch.Summary.Succeeded,
		Failed:       batch.Summary.Failed,
		MeanAccuracy: batch.Summary.MeanAccuracy,
		StartedAt:    batch.StartedAt,
		FinishedAt:   batch.FinishedAt,
	}
}
