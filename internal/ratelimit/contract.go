package ratelimit

import (
	"context"
	"time"
)

// Store хранилище счётчиков со скользящим окном.
// In-memory реализация подходит для одного инстанса; при нескольких воркерах
// счётчики выносятся в Redis, иначе лимит деградирует до приблизительного.
type Store interface {
	// Increment увеличивает счётчик ключа и возвращает новое значение.
	// Первый инкремент задаёт время жизни окна.
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
}

// PendingCounter источник числа незавершённых бронирований гостя
type PendingCounter interface {
	CountUnconfirmedByPhone(ctx context.Context, phone string) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
