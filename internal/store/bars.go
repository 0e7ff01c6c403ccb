// Package store 持久化/缓存按 symbol+interval 组织的 K 线序列，
// 作为计算引擎的规范化数据提供方。
package store

import (
	"context"
	"errors"
	"sync"

	"chartcore/internal/market"
)

// BarStore 抽象：读写 symbol+interval 的 K 线序列。
type BarStore interface {
	Put(ctx context.Context, symbol, interval string, bars []market.Bar) error
	Get(ctx context.Context, symbol, interval string) ([]market.Bar, error)
}

// MemoryBarStore 内存实现，持有拷贝，返回拷贝。
type MemoryBarStore struct {
	mu   sync.RWMutex
	data map[string][]market.Bar
	max  int
}

func NewMemoryBarStore(max int) *MemoryBarStore {
	if max <= 0 {
		max = 5000
	}
	return &MemoryBarStore{data: make(map[string][]market.Bar), max: max}
}

func key(symbol, interval string) string { return symbol + "@" + interval }

// Put 追加并裁剪到上限；同时间戳的 K 线覆盖末尾而非重复追加。
func (s *MemoryBarStore) Put(ctx context.Context, symbol, interval string, bars []market.Bar) error {
	if symbol == "" || interval == "" {
		return errors.New("symbol/interval required")
	}
	if len(bars) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(symbol, interval)
	cur := s.data[k]
	for _, b := range bars {
		n := len(cur)
		if n > 0 && cur[n-1].Time == b.Time {
			cur[n-1] = b
			continue
		}
		cur = append(cur, b)
	}
	if len(cur) > s.max {
		cur = cur[len(cur)-s.max:]
	}
	s.data[k] = cur
	return nil
}

// Get 返回拷贝。
func (s *MemoryBarStore) Get(ctx context.Context, symbol, interval string) ([]market.Bar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur := s.data[key(symbol, interval)]
	out := make([]market.Bar, len(cur))
	copy(out, cur)
	return out, nil
}
