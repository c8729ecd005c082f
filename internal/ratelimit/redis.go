package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore хранилище счётчиков в Redis.
// Делает лимиты честными при нескольких инстансах сервиса: INCR атомарен,
// EXPIRE выставляется только при создании ключа.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore создает хранилище счётчиков поверх Redis
func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Increment атомарно увеличивает счётчик ключа в пределах окна
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// NX: срок жизни выставляется один раз при создании ключа,
	// последующие инкременты окно не продлевают
	pipe.ExpireNX(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("ratelimit: redis increment %s: %w", key, err)
	}

	return int(incr.Val()), nil
}

// Ping проверяет доступность Redis при старте сервиса
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close закрывает подключение к Redis
func (s *RedisStore) Close() error {
	return s.client.Close()
}
