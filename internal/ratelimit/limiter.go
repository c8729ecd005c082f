package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Limiter два независимых предохранителя от злоупотреблений:
//   - identity-guard: отклоняет новые заявки гостя, у которого уже накопился
//     порог незавершённых бронирований;
//   - origin-guard: скользящее окно заявок с одного сетевого адреса для
//     ресурсов без верификации личности.
//
// Оба — рекомендательные проверки перед авторитетной логикой допуска,
// а не её замена.
type Limiter struct {
	store          Store
	pendingCounter PendingCounter
	logger         Logger

	maxPendingPerPhone int
	maxPerOriginWindow int
	originWindow       time.Duration
}

// NewLimiter создает rate limiter с заданными порогами
func NewLimiter(
	store Store,
	pendingCounter PendingCounter,
	logger Logger,
	maxPendingPerPhone int,
	maxPerOriginHour int,
) *Limiter {
	return &Limiter{
		store:              store,
		pendingCounter:     pendingCounter,
		logger:             logger,
		maxPendingPerPhone: maxPendingPerPhone,
		maxPerOriginWindow: maxPerOriginHour,
		originWindow:       time.Hour,
	}
}

// CheckIdentity проверяет, что у гостя меньше порога незавершённых бронирований
func (l *Limiter) CheckIdentity(ctx context.Context, phone string) error {
	pending, err := l.pendingCounter.CountUnconfirmedByPhone(ctx, phone)
	if err != nil {
		// Недоступность счётчика не должна блокировать гостя: авторитетная
		// проверка допуска всё равно выполнится дальше
		l.logger.Error("ratelimit: failed to count pending reservations for phone=%s: %v", phone, err)
		return nil
	}

	if pending >= l.maxPendingPerPhone {
		l.logger.Warn("ratelimit: phone=%s has %d pending reservations (limit %d)",
			phone, pending, l.maxPendingPerPhone)
		return ErrTooManyPending
	}

	return nil
}

// CheckOrigin проверяет скользящее окно заявок с сетевого адреса
func (l *Limiter) CheckOrigin(ctx context.Context, origin string) error {
	count, err := l.store.Increment(ctx, originKey(origin), l.originWindow)
	if err != nil {
		l.logger.Error("ratelimit: failed to increment origin counter for %s: %v", origin, err)
		return nil
	}

	if count > l.maxPerOriginWindow {
		l.logger.Warn("ratelimit: origin=%s exceeded %d submissions per %s",
			origin, l.maxPerOriginWindow, l.originWindow)
		return ErrOriginLimitExceeded
	}

	return nil
}

func originKey(origin string) string {
	return fmt.Sprintf("ratelimit:origin:%s", origin)
}
