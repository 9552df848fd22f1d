package cache

import (
	"sort"
	"sync"
	"time"

	"pricefinder/internal/domain"
)

// evictBatch is how many least-recently-accessed entries are removed
// when the store hits capacity.
const evictBatch = 50

type memoryEntry struct {
	created time.Time
	records []domain.Product
}

// Memory is a mutex-guarded in-process Store with lazy TTL expiry and
// batched LRU eviction at capacity.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	accessed map[string]time.Time
	maxSize  int
	ttl      time.Duration
	now      func() time.Time
}

func NewMemory(maxSize int, ttl time.Duration) *Memory {
	if maxSize <= 0 {
		maxSize = 5000
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Memory{
		entries:  make(map[string]memoryEntry),
		accessed: make(map[string]time.Time),
		maxSize:  maxSize,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *Memory) Get(key string) ([]domain.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.created) > m.ttl {
		delete(m.entries, key)
		delete(m.accessed, key)
		return nil, false
	}
	m.accessed[key] = m.now()
	return e.records, true
}

func (m *Memory) Set(key string, records []domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) >= m.maxSize {
		m.evictOldest()
	}
	now := m.now()
	m.entries[key] = memoryEntry{created: now, records: records}
	m.accessed[key] = now
}

// evictOldest removes up to evictBatch entries in ascending
// last-access order. Called with the lock held.
func (m *Memory) evictOldest() {
	type access struct {
		key string
		at  time.Time
	}
	all := make([]access, 0, len(m.accessed))
	for k, at := range m.accessed {
		all = append(all, access{key: k, at: at})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })

	n := evictBatch
	if n > len(all) {
		n = len(all)
	}
	for _, a := range all[:n] {
		delete(m.entries, a.key)
		delete(m.accessed, a.key)
	}
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	m.accessed = make(map[string]time.Time)
}

func (m *Memory) Stats() domain.CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CacheStats{
		Size:       len(m.entries),
		MaxSize:    m.maxSize,
		TTLSeconds: int(m.ttl.Seconds()),
	}
}
