package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type mockPendingCounter struct {
	countFn func(ctx context.Context, phone string) (int, error)
}

func (m *mockPendingCounter) CountUnconfirmedByPhone(ctx context.Context, phone string) (int, error) {
	return m.countFn(ctx, phone)
}

type mockStore struct {
	incrementFn func(ctx context.Context, key string, window time.Duration) (int, error)
}

func (m *mockStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	return m.incrementFn(ctx, key, window)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- Tests ---

func TestCheckIdentity_BelowLimit(t *testing.T) {
	counter := &mockPendingCounter{
		countFn: func(ctx context.Context, phone string) (int, error) { return 2, nil },
	}
	limiter := NewLimiter(NewMemoryStore(), counter, nopLogger{}, 3, 10)

	assert.NoError(t, limiter.CheckIdentity(context.Background(), "+79990001122"))
}

func TestCheckIdentity_AtLimit(t *testing.T) {
	counter := &mockPendingCounter{
		countFn: func(ctx context.Context, phone string) (int, error) { return 3, nil },
	}
	limiter := NewLimiter(NewMemoryStore(), counter, nopLogger{}, 3, 10)

	err := limiter.CheckIdentity(context.Background(), "+79990001122")
	assert.ErrorIs(t, err, ErrTooManyPending)
}

func TestCheckIdentity_FailsOpenOnCounterError(t *testing.T) {
	counter := &mockPendingCounter{
		countFn: func(ctx context.Context, phone string) (int, error) {
			return 0, errors.New("db unavailable")
		},
	}
	limiter := NewLimiter(NewMemoryStore(), counter, nopLogger{}, 3, 10)

	// Недоступность счётчика не блокирует гостя
	assert.NoError(t, limiter.CheckIdentity(context.Background(), "+79990001122"))
}

func TestCheckOrigin_WithinWindow(t *testing.T) {
	counter := &mockPendingCounter{
		countFn: func(ctx context.Context, phone string) (int, error) { return 0, nil },
	}
	limiter := NewLimiter(NewMemoryStore(), counter, nopLogger{}, 3, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.CheckOrigin(ctx, "10.0.0.1"))
	}

	// Четвёртая заявка в окне превышает лимит
	err := limiter.CheckOrigin(ctx, "10.0.0.1")
	assert.ErrorIs(t, err, ErrOriginLimitExceeded)

	// Другой адрес считается независимо
	assert.NoError(t, limiter.CheckOrigin(ctx, "10.0.0.2"))
}

func TestCheckOrigin_FailsOpenOnStoreError(t *testing.T) {
	counter := &mockPendingCounter{
		countFn: func(ctx context.Context, phone string) (int, error) { return 0, nil },
	}
	store := &mockStore{
		incrementFn: func(ctx context.Context, key string, window time.Duration) (int, error) {
			return 0, errors.New("redis unavailable")
		},
	}
	limiter := NewLimiter(store, counter, nopLogger{}, 3, 10)

	assert.NoError(t, limiter.CheckOrigin(context.Background(), "10.0.0.1"))
}

func TestMemoryStore_WindowExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	count, err := store.Increment(ctx, "k", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.Increment(ctx, "k", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// После истечения окна счётчик начинается заново
	time.Sleep(15 * time.Millisecond)
	count, err = store.Increment(ctx, "k", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
