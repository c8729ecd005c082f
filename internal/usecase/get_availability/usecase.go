package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	blackoutRepo "github.com/lesnaya-zaimka/booking-service/internal/infra/storage/blackout"
	"github.com/lesnaya-zaimka/booking-service/internal/schedule"
)

// UseCase use case получения доступности ресурса на дату
type UseCase struct {
	catalog         domain.Catalog
	reservationRepo ReservationRepository
	blackoutRepo    BlackoutRepository
	pricingRepo     PricingRepository
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalog domain.Catalog,
	reservationRepo ReservationRepository,
	blackoutRepo BlackoutRepository,
	pricingRepo PricingRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalog:         catalog,
		reservationRepo: reservationRepo,
		blackoutRepo:    blackoutRepo,
		pricingRepo:     pricingRepo,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступности.
// Чтение без побочных эффектов: два вызова подряд без записей между ними
// возвращают идентичные списки слотов.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: resource=%s, date=%s",
		req.ResourceType, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Ищем ресурс в каталоге
	cfg, ok := uc.catalog.Get(req.ResourceType)
	if !ok {
		uc.logger.Warn("GetAvailability: resource type %q not in catalog", req.ResourceType)
		return nil, ErrResourceNotFound
	}

	// 4. Валидация даты с учетом ограничений ресурса
	if err := validateDate(req.Date, now, cfg.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailability: date validation failed: %v", err)
		return nil, err
	}

	// 5. Полное закрытие даты: короткое замыкание без генерации слотов
	blackoutDate, err := uc.blackoutRepo.GetBlackoutDate(ctx, req.ResourceType, req.Date)
	if err != nil && !errors.Is(err, blackoutRepo.ErrBlackoutDateNotFound) {
		uc.logger.Error("GetAvailability: failed to get blackout date: %v", err)
		return nil, fmt.Errorf("%w: failed to get blackout date: %v", ErrInternal, err)
	}
	if blackoutDate != nil {
		uc.logger.Info("GetAvailability: date %s fully blacked out for resource=%s",
			req.Date.Format(domain.DateFormat), req.ResourceType)
		return &Response{
			Date:         req.Date,
			ResourceType: req.ResourceType,
			Blocked:      true,
			Reason:       blackoutDate.Reason,
			Slots:        []domain.Slot{},
		}, nil
	}

	// 6. Частичные закрытия дня
	blackouts, err := uc.blackoutRepo.ListIntervals(ctx, req.ResourceType, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to list blackout intervals: %v", err)
		return nil, fmt.Errorf("%w: failed to list blackout intervals: %v", ErrInternal, err)
	}

	// Закрытие на весь день интервалом без времени эквивалентно закрытой дате
	for _, b := range blackouts {
		if b.CoversWholeDay() {
			uc.logger.Info("GetAvailability: whole-day blackout interval for resource=%s on %s",
				req.ResourceType, req.Date.Format(domain.DateFormat))
			return &Response{
				Date:         req.Date,
				ResourceType: req.ResourceType,
				Blocked:      true,
				Reason:       b.Reason,
				Slots:        []domain.Slot{},
			}, nil
		}
	}

	// 7. Активные бронирования на дату
	reservations, err := uc.reservationRepo.ListWithFilter(ctx, domain.ReservationsFilter{
		ResourceType: req.ResourceType,
		Date:         &req.Date,
	})
	if err != nil {
		uc.logger.Error("GetAvailability: failed to list reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
	}

	// 8. Переопределения цен на дату
	overrides, err := uc.pricingRepo.ListForDate(ctx, req.ResourceType, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to list price overrides: %v", err)
		return nil, fmt.Errorf("%w: failed to list price overrides: %v", ErrInternal, err)
	}

	// 9. Проекция слотов по модели ресурса
	var slots []domain.Slot
	switch cfg.Model {
	case domain.ModelSharedPool:
		slots = projectSharedPool(cfg, req.Date, now, reservations, blackouts, overrides)
	case domain.ModelFixedUnit:
		slots = projectFixedUnit(cfg, req.Date, now, reservations, blackouts, overrides)
	default:
		return nil, fmt.Errorf("%w: unknown resource model %q", ErrInternal, cfg.Model)
	}

	// Прошедшие даты дают пустой список без ошибки, как и дни без слотов
	if schedule.IsDateInPast(req.Date, now) {
		slots = []domain.Slot{}
	}

	uc.logger.Info("GetAvailability: %d slots for resource=%s, date=%s",
		len(slots), req.ResourceType, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:              req.Date,
		ResourceType:      req.ResourceType,
		Slots:             slots,
		BlackoutIntervals: blackoutIntervalViews(blackouts),
	}, nil
}
