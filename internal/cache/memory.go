package cache

import (
	"context"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

type memoryItem struct {
	entry   *Entry
	expires time.Time
}

// MemoryStore is a goroutine-safe in-process Store. Expired items are
// dropped lazily on read.
type MemoryStore struct {
	items cmap.ConcurrentMap[string, memoryItem]
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: cmap.New[memoryItem](),
		now:   time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	item, ok := m.items.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if !m.now().Before(item.expires) {
		m.items.RemoveCb(key, func(_ string, v memoryItem, exists bool) bool {
			return exists && v.expires.Equal(item.expires)
		})
		return nil, ErrMiss
	}
	return item.entry, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, entry *Entry, ttl time.Duration) error {
	m.items.Set(key, memoryItem{entry: entry, expires: m.now().Add(ttl)})
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.items.Remove(key)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.items.Clear()
	return nil
}

// Len counts stored items, expired ones included.
func (m *MemoryStore) Len() int {
	return m.items.Count()
}
