package store

import (
	"context"
	"sort"
	"sync"

	"github.com/zjzjy/LQBench/internal/benchmark"
)

// MemoryStore 进程内存储，适合单次运行与测试。
type MemoryStore struct {
	mu      sync.RWMutex
	batches map[string]*benchmark.BatchResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{batches: make(map[string]*benchmark.BatchResult)}
}

func (s *MemoryStore) Save(_ context.Context, batch *benchmark.BatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[batch.ID] = batch
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*benchmark.BatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch, ok := s.batches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return batch, nil
}

func (s *MemoryStore) List(_ context.Context) ([]BatchMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	metas := make([]BatchMeta, 0, len(s.batches))
	for _, batch := range s.batches {
		metas = append(metas, metaOf(batch))
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].StartedAt.After(metas[j].StartedAt) })
	return metas, nil
}

func (s *MemoryStore) Close() error { return nil }
