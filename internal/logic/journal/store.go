package journal

import (
	"context"
	"sort"
	"sync"
)

// Store 按钱包保存待确认记录
type Store interface {
	Put(ctx context.Context, e Entry) error
	List(ctx context.Context, wallet string) ([]Entry, error)
	Delete(ctx context.Context, wallet, signature string) error
}

// MemoryStore 进程内存储，进程退出即丢失；未配置 Redis 时使用
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]map[string]Entry)}
}

func (m *MemoryStore) Put(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byWallet, ok := m.entries[e.Wallet]
	if !ok {
		byWallet = make(map[string]Entry)
		m.entries[e.Wallet] = byWallet
	}
	byWallet[e.Signature] = e
	return nil
}

func (m *MemoryStore) List(_ context.Context, wallet string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]Entry, 0, len(m.entries[wallet]))
	for _, e := range m.entries[wallet] {
		list = append(list, e)
	}
	sortEntries(list)
	return list, nil
}

func (m *MemoryStore) Delete(_ context.Context, wallet, signature string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries[wallet], signature)
	if len(m.entries[wallet]) == 0 {
		delete(m.entries, wallet)
	}
	return nil
}

func sortEntries(list []Entry) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].RecordedAt.Before(list[j].RecordedAt)
	})
}
