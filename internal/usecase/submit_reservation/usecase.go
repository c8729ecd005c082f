package submit_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	blackoutRepo "github.com/lesnaya-zaimka/booking-service/internal/infra/storage/blackout"
	"github.com/lesnaya-zaimka/booking-service/internal/schedule"
)

// UseCase use case создания бронирования гостем.
//
// Контроллер допуска: валидация, рекомендательные rate-limit проверки,
// затем авторитетная перепроверка конфликтов и ёмкости против актуального
// набора активных бронирований внутри сериализуемой транзакции — снимок
// доступности, который гость видел раньше, не имеет значения.
type UseCase struct {
	catalog         domain.Catalog
	reservationRepo ReservationRepository
	blackoutRepo    BlackoutRepository
	pricingRepo     PricingRepository
	txManager       TransactionManager
	rateLimiter     RateLimiter
	publisher       NotificationPublisher
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalog domain.Catalog,
	reservationRepo ReservationRepository,
	blackoutRepo BlackoutRepository,
	pricingRepo PricingRepository,
	txManager TransactionManager,
	rateLimiter RateLimiter,
	publisher NotificationPublisher,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalog:         catalog,
		reservationRepo: reservationRepo,
		blackoutRepo:    blackoutRepo,
		pricingRepo:     pricingRepo,
		txManager:       txManager,
		rateLimiter:     rateLimiter,
		publisher:       publisher,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("SubmitReservation: resource=%s, date=%s, time=%s, units=%d, phone=%s",
		req.ResourceType, req.Date.Format(domain.DateFormat), req.StartTime, req.Units, req.CustomerPhone)

	// 1. Ищем ресурс в каталоге
	cfg, ok := uc.catalog.Get(req.ResourceType)
	if !ok {
		uc.logger.Warn("SubmitReservation: resource type %q not in catalog", req.ResourceType)
		return nil, ErrResourceNotFound
	}

	// 2. Валидация входных данных против модели ресурса
	if err := validateRequest(req, cfg); err != nil {
		uc.logger.Warn("SubmitReservation: validation failed: %v", err)
		return nil, err
	}

	// 3. Получаем текущее время
	now := uc.timeProvider.Now()

	// 4. Рекомендательные rate-limit проверки до авторитетной логики допуска
	if err := uc.rateLimiter.CheckIdentity(ctx, req.CustomerPhone); err != nil {
		uc.logger.Warn("SubmitReservation: identity rate limit for phone=%s", req.CustomerPhone)
		return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	if !cfg.RequiresIdentity {
		if err := uc.rateLimiter.CheckOrigin(ctx, req.Origin); err != nil {
			uc.logger.Warn("SubmitReservation: origin rate limit for origin=%s", req.Origin)
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}

	var (
		result *domain.Reservation
		joined bool
	)

	// 5. Проверка конфликтов и вставка — одна атомарная операция:
	// сериализуемая транзакция закрывает гонку check-then-insert между
	// конкурирующими заявками на один слот
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Валидация даты
		if err := validateDate(req.Date, now, cfg.AdvanceBookingDays); err != nil {
			uc.logger.Warn("SubmitReservation: date validation failed: %v", err)
			return err
		}

		// 5.2. Полное закрытие даты
		blackoutDate, err := uc.blackoutRepo.GetBlackoutDate(txCtx, req.ResourceType, req.Date)
		if err != nil && !errors.Is(err, blackoutRepo.ErrBlackoutDateNotFound) {
			uc.logger.Error("SubmitReservation: failed to get blackout date: %v", err)
			return fmt.Errorf("%w: failed to get blackout date: %v", ErrInternal, err)
		}
		if blackoutDate != nil {
			uc.logger.Warn("SubmitReservation: date %s fully blacked out for resource=%s",
				req.Date.Format(domain.DateFormat), req.ResourceType)
			return fmt.Errorf("%w: date is closed", ErrClosed)
		}

		// 5.3. Частичные закрытия дня
		blackouts, err := uc.blackoutRepo.ListIntervals(txCtx, req.ResourceType, req.Date)
		if err != nil {
			uc.logger.Error("SubmitReservation: failed to list blackout intervals: %v", err)
			return fmt.Errorf("%w: failed to list blackout intervals: %v", ErrInternal, err)
		}

		duration := requestDuration(req, cfg)
		end, err := req.StartTime.AddMinutes(duration)
		if err != nil {
			return fmt.Errorf("%w: invalid start time: %v", ErrInvalidInput, err)
		}

		for _, b := range blackouts {
			if b.Overlaps(req.StartTime, end) {
				uc.logger.Warn("SubmitReservation: slot %s blocked by blackout interval", req.StartTime)
				return fmt.Errorf("%w: interval is closed", ErrClosed)
			}
		}

		// 5.4. Рабочие часы: конец бронирования не выходит за закрытие
		if !schedule.FitsOperatingHours(cfg, req.StartTime, duration) {
			uc.logger.Warn("SubmitReservation: slot %s does not fit operating hours", req.StartTime)
			return fmt.Errorf("%w: outside operating hours", ErrClosed)
		}

		// 5.5. Минимальное время до начала для бронирований на сегодня
		if schedule.PastCutoff(req.StartTime, req.Date, now, cfg.MinNoticeMinutes) {
			uc.logger.Warn("SubmitReservation: slot %s violates min notice %dm",
				req.StartTime, cfg.MinNoticeMinutes)
			return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, cfg.MinNoticeMinutes)
		}

		// 5.6. Актуальный набор активных бронирований — авторитетная
		// перепроверка, клиентскому снимку доступности не доверяем
		reservations, err := uc.reservationRepo.ListWithFilter(txCtx, domain.ReservationsFilter{
			ResourceType: req.ResourceType,
			Date:         &req.Date,
		})
		if err != nil {
			uc.logger.Error("SubmitReservation: failed to list reservations: %v", err)
			return fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
		}

		// 5.7. Сетка: старт должен быть каноническим; для shared pool
		// допускается внесеточный старт при присоединении к существующей группе
		if err := uc.validateSlotOnGrid(req, cfg, reservations); err != nil {
			return err
		}

		// 5.8. Проверка конфликтов и ёмкости по модели ресурса
		joined, err = uc.checkConflicts(req, cfg, duration, reservations)
		if err != nil {
			return err
		}

		// 5.9. Разрешение цены и фиксация ценового снимка
		overrides, err := uc.pricingRepo.ListForDate(txCtx, req.ResourceType, req.Date)
		if err != nil {
			uc.logger.Error("SubmitReservation: failed to list price overrides: %v", err)
			return fmt.Errorf("%w: failed to list price overrides: %v", ErrInternal, err)
		}

		snapshot, err := uc.buildSnapshot(req, cfg, overrides, joined)
		if err != nil {
			return err
		}

		// 5.10. Сохраняем бронирование в начальном статусе
		reservation := &domain.Reservation{
			ResourceType:    req.ResourceType,
			Model:           cfg.Model,
			UnitID:          req.UnitID,
			Variant:         req.Variant,
			Date:            req.Date,
			StartTime:       req.StartTime,
			DurationMinutes: duration,
			Units:           req.Units,
			Status:          domain.StatusPending,
			Price:           snapshot,
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			Comment:         req.Comment,
		}

		created, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			uc.logger.Error("SubmitReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("SubmitReservation: created reservation id=%d, joined=%v, total=%.2f",
		result.ID, joined, result.Price.Total)

	// 6. Fire-and-forget уведомление: сбой публикации логируется и никогда
	// не откатывает уже зафиксированное бронирование
	go uc.publishCreated(result)

	return fromDomain(result, joined), nil
}

// validateSlotOnGrid проверяет принадлежность старта канонической сетке
func (uc *UseCase) validateSlotOnGrid(req *Request, cfg *domain.ResourceConfig, reservations []*domain.Reservation) error {
	if schedule.OnGrid(cfg, req.StartTime) {
		return nil
	}

	// Внесеточный старт допустим только как присоединение к существующей
	// группе shared-pool ресурса (созданной персоналом вручную)
	if cfg.Model == domain.ModelSharedPool && req.Variant != nil &&
		schedule.HasGroup(reservations, req.StartTime, *req.Variant) {
		return nil
	}

	uc.logger.Warn("SubmitReservation: start %s is off-grid for resource=%s", req.StartTime, cfg.Type)
	return fmt.Errorf("%w: start time is not on the booking grid", ErrInvalidTimeSlot)
}

// checkConflicts выполняет авторитетную проверку конфликтов и ёмкости.
// Возвращает признак присоединения к существующей группе.
func (uc *UseCase) checkConflicts(req *Request, cfg *domain.ResourceConfig, duration int, reservations []*domain.Reservation) (bool, error) {
	switch cfg.Model {
	case domain.ModelSharedPool:
		joined := schedule.HasGroup(reservations, req.StartTime, *req.Variant)

		outcome, remaining, err := schedule.CheckSharedPool(
			schedule.ProspectiveReservation{
				Start:           req.StartTime,
				Variant:         *req.Variant,
				DurationMinutes: duration,
				Units:           req.Units,
			},
			reservations,
			cfg.BufferMinutes,
			cfg.TotalCapacity(),
		)
		if err != nil {
			return false, fmt.Errorf("%w: conflict check failed: %v", ErrInternal, err)
		}

		switch outcome {
		case schedule.OutcomeSlotConflict:
			uc.logger.Warn("SubmitReservation: slot conflict at %s for resource=%s", req.StartTime, cfg.Type)
			return false, ErrSlotConflict
		case schedule.OutcomeCapacityExceeded:
			uc.logger.Warn("SubmitReservation: capacity exceeded at %s: requested=%d, remaining=%d",
				req.StartTime, req.Units, remaining)
			return false, fmt.Errorf("%w: requested %d units, %d remaining", ErrCapacityExceeded, req.Units, remaining)
		}

		return joined, nil

	case domain.ModelFixedUnit:
		outcome, err := schedule.CheckFixedUnit(*req.UnitID, req.StartTime, duration, reservations)
		if err != nil {
			return false, fmt.Errorf("%w: conflict check failed: %v", ErrInternal, err)
		}
		if outcome != schedule.OutcomeFree {
			uc.logger.Warn("SubmitReservation: unit %s occupied at %s", *req.UnitID, req.StartTime)
			return false, ErrSlotConflict
		}
		return false, nil

	default:
		return false, fmt.Errorf("%w: unknown resource model %q", ErrInternal, cfg.Model)
	}
}

// buildSnapshot формирует неизменяемый ценовой снимок бронирования
func (uc *UseCase) buildSnapshot(req *Request, cfg *domain.ResourceConfig, overrides []*domain.PriceOverride, joined bool) (domain.PriceSnapshot, error) {
	variant, ok := cfg.VariantByCode(requestVariant(req, cfg))
	if !ok {
		return domain.PriceSnapshot{}, fmt.Errorf("%w: unknown variant", ErrInvalidInput)
	}

	unitPrice := schedule.ResolveUnitPrice(variant, overrides, req.Date)
	return schedule.BuildPriceSnapshot(unitPrice, req.Units, cfg.JoinDiscountPercent, joined), nil
}

// publishCreated публикует событие с собственным таймаутом, независимым
// от запроса гостя
func (uc *UseCase) publishCreated(res *domain.Reservation) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := uc.publisher.PublishReservationCreated(ctx, res); err != nil {
		uc.logger.Error("SubmitReservation: failed to publish created event for id=%d: %v", res.ID, err)
		return
	}
	uc.logger.Info("SubmitReservation: published created event for id=%d", res.ID)
}

// requestDuration возвращает длительность бронирования по варианту запроса
func requestDuration(req *Request, cfg *domain.ResourceConfig) int {
	if variant, ok := cfg.VariantByCode(requestVariant(req, cfg)); ok {
		return variant.DurationMinutes
	}
	return 0
}

// requestVariant возвращает код варианта запроса; для fixed-unit ресурсов
// с единственным тарифом берётся первый вариант каталога
func requestVariant(req *Request, cfg *domain.ResourceConfig) string {
	if req.Variant != nil {
		return *req.Variant
	}
	if len(cfg.Variants) > 0 {
		return cfg.Variants[0].Code
	}
	return ""
}
