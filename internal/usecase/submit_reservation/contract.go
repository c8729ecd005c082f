package submit_reservation

import (
	"context"
	"time"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	ListWithFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error)
}

// BlackoutRepository интерфейс репозитория закрытий
type BlackoutRepository interface {
	ListIntervals(ctx context.Context, resourceType domain.ResourceType, date time.Time) ([]*domain.BlackoutInterval, error)
	GetBlackoutDate(ctx context.Context, resourceType domain.ResourceType, date time.Time) (*domain.BlackoutDate, error)
}

// PricingRepository интерфейс репозитория переопределений цен
type PricingRepository interface {
	ListForDate(ctx context.Context, resourceType domain.ResourceType, date time.Time) ([]*domain.PriceOverride, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// RateLimiter рекомендательные предохранители перед допуском
type RateLimiter interface {
	CheckIdentity(ctx context.Context, phone string) error
	CheckOrigin(ctx context.Context, origin string) error
}

// NotificationPublisher издатель события о созданном бронировании
type NotificationPublisher interface {
	PublishReservationCreated(ctx context.Context, res *domain.Reservation) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
