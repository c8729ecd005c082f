package override_price

import (
	"context"

	"github.com/lesnaya-zaimka/booking-service/internal/service/reservations/models"
)

type ReservationService interface {
	OverridePrice(ctx context.Context, id int64, req *models.OverridePriceRequest) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
