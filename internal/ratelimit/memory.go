package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore процесс-локальное хранилище счётчиков.
// В конфигурации с одним инстансом даёт точный лимит; при нескольких
// воркерах лимит становится приблизительным — тогда используется RedisStore.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
}

type memoryCounter struct {
	count     int
	expiresAt time.Time
}

// NewMemoryStore создает in-memory хранилище счётчиков
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]*memoryCounter),
	}
}

// Increment увеличивает счётчик ключа в пределах окна
func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	c, ok := s.counters[key]
	if !ok || now.After(c.expiresAt) {
		s.counters[key] = &memoryCounter{count: 1, expiresAt: now.Add(window)}
		s.evictExpired(now)
		return 1, nil
	}

	c.count++
	return c.count, nil
}

// evictExpired удаляет истёкшие счётчики; вызывается под мьютексом
func (s *MemoryStore) evictExpired(now time.Time) {
	for key, c := range s.counters {
		if now.After(c.expiresAt) {
			delete(s.counters, key)
		}
	}
}
