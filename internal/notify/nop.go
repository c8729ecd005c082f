package notify

import (
	"context"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
)

// NopPublisher издатель-заглушка, используется при выключенной Kafka
type NopPublisher struct{}

// PublishReservationCreated ничего не делает
func (NopPublisher) PublishReservationCreated(_ context.Context, _ *domain.Reservation) error {
	return nil
}
