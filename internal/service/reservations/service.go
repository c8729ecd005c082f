package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	reservationRepo "github.com/lesnaya-zaimka/booking-service/internal/infra/storage/reservation"
	"github.com/lesnaya-zaimka/booking-service/internal/schedule"
	"github.com/lesnaya-zaimka/booking-service/internal/service/reservations/models"
)

// Service сервис для работы с бронированиями со стороны персонала
type Service struct {
	catalog         domain.Catalog
	reservationRepo ReservationRepository
	txManager       TransactionManager
	pendingTTL      time.Duration
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	catalog domain.Catalog,
	reservationRepo ReservationRepository,
	txManager TransactionManager,
	pendingTTL time.Duration,
	logger Logger,
) *Service {
	return &Service{
		catalog:         catalog,
		reservationRepo: reservationRepo,
		txManager:       txManager,
		pendingTTL:      pendingTTL,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d", id)

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("GetByID: reservation id=%d not found", id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("GetByID: repository error for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainReservation(reservation), nil
}

// List получает бронирования ресурса с гибкой фильтрацией.
// Поддерживает фильтрацию по дате, юниту, статусу, телефону гостя и
// включение неактивных бронирований.
func (s *Service) List(ctx context.Context, req *models.ListReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("List: fetching reservations for resource=%s", req.ResourceType)

	if _, ok := s.catalog.Get(domain.ResourceType(req.ResourceType)); !ok {
		s.logger.Warn("List: resource type %q not in catalog", req.ResourceType)
		return nil, ErrReservationNotFound
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter for resource=%s: %v", req.ResourceType, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	reservations, err := s.reservationRepo.ListWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error for resource=%s: %v", req.ResourceType, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d reservations for resource=%s", len(reservations), req.ResourceType)
	return models.FromDomainReservationList(reservations), nil
}

// UpdateStatus переводит бронирование в новый статус.
// Допустимость перехода определяется таблицей переходов жизненного цикла;
// произвольные скачки статусов запрещены.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.ReservationResponse, error) {
	s.logger.Info("UpdateStatus: updating reservation id=%d to status=%s by staff=%s", id, req.Status, req.StaffID)

	newStatus, err := models.ToDomainReservationStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for reservation id=%d", req.Status, id)
		return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, req.Status)
	}

	var updated *domain.Reservation

	// Чтение текущего статуса и переход — атомарно, чтобы параллельные
	// обновления не обошли таблицу переходов
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		reservation, err := s.reservationRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				s.logger.Warn("UpdateStatus: reservation id=%d not found", id)
				return ErrReservationNotFound
			}
			s.logger.Error("UpdateStatus: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}

		if !reservation.Status.CanTransitionTo(newStatus) {
			s.logger.Warn("UpdateStatus: transition %s -> %s is not allowed for reservation id=%d",
				reservation.Status, newStatus, id)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, reservation.Status, newStatus)
		}

		updated, err = s.reservationRepo.UpdateStatus(txCtx, id, newStatus)
		if err != nil {
			s.logger.Error("UpdateStatus: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateStatus: successfully updated reservation id=%d to status=%s", id, newStatus)
	return models.FromDomainReservation(updated), nil
}

// Cancel отменяет бронирование с указанием причины.
// Отменить можно только бронирование в нетерминальном статусе.
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelReservationRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Cancel: cancelling reservation id=%d by staff=%s", id, req.StaffID)

	var cancelled *domain.Reservation

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		reservation, err := s.reservationRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				s.logger.Warn("Cancel: reservation id=%d not found", id)
				return ErrReservationNotFound
			}
			s.logger.Error("Cancel: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		if !reservation.Status.CanTransitionTo(domain.StatusCancelled) {
			s.logger.Warn("Cancel: reservation id=%d cannot be cancelled, status=%s", id, reservation.Status)
			return ErrCannotCancel
		}

		cancelled, err = s.reservationRepo.Cancel(txCtx, id, req.CancellationReason)
		if err != nil {
			s.logger.Error("Cancel: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: successfully cancelled reservation id=%d", id)
	return models.FromDomainReservation(cancelled), nil
}

// ExpirePending переводит в статус expired все pending-бронирования,
// созданные раньше, чем pendingTTL назад. Вызывается периодическим фоновым
// процессом.
func (s *Service) ExpirePending(ctx context.Context) (*models.ExpirePendingResponse, error) {
	deadline := s.timeProvider.Now().Add(-s.pendingTTL)

	ids, err := s.reservationRepo.ExpirePendingBefore(ctx, deadline)
	if err != nil {
		s.logger.Error("ExpirePending: repository error: %v", err)
		return nil, fmt.Errorf("%w: ExpirePending - repository error: %v", ErrInternal, err)
	}

	if len(ids) > 0 {
		s.logger.Info("ExpirePending: expired %d reservations created before %s: %v",
			len(ids), deadline.Format(time.RFC3339), ids)
	}

	return &models.ExpirePendingResponse{ExpiredIDs: ids, Total: len(ids)}, nil
}

// OverridePrice применяет административную корректировку цены за место и
// пересобирает ценовой снимок бронирования. Скидка за присоединение к группе
// сохраняется. Актор и причина корректировки фиксируются в логах.
func (s *Service) OverridePrice(ctx context.Context, id int64, req *models.OverridePriceRequest) (*models.ReservationResponse, error) {
	if req.StaffID == "" || req.Reason == "" {
		s.logger.Warn("OverridePrice: missing staffId or reason for reservation id=%d", id)
		return nil, fmt.Errorf("%w: staffId and reason are required", ErrInvalidInput)
	}
	if req.UnitPrice < 0 {
		return nil, fmt.Errorf("%w: unitPrice must be non-negative", ErrInvalidInput)
	}

	var updated *domain.Reservation

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		reservation, err := s.reservationRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				s.logger.Warn("OverridePrice: reservation id=%d not found", id)
				return ErrReservationNotFound
			}
			s.logger.Error("OverridePrice: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: OverridePrice - repository error: %v", ErrInternal, err)
		}

		if reservation.Status.IsTerminal() {
			s.logger.Warn("OverridePrice: reservation id=%d is in terminal status=%s", id, reservation.Status)
			return ErrCannotOverridePrice
		}

		joined := reservation.Price.DiscountPercent > 0
		snapshot := schedule.BuildPriceSnapshot(req.UnitPrice, reservation.Units, reservation.Price.DiscountPercent, joined)

		updated, err = s.reservationRepo.UpdatePriceSnapshot(txCtx, id, snapshot)
		if err != nil {
			s.logger.Error("OverridePrice: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: OverridePrice - repository error: %v", ErrInternal, err)
		}

		// Аудитная запись: кто, что и почему поменял
		s.logger.Info("OverridePrice: staff=%s changed unit price of reservation id=%d from %.2f to %.2f, total %.2f -> %.2f, reason: %s",
			req.StaffID, id, reservation.Price.UnitPrice, snapshot.UnitPrice, reservation.Price.Total, snapshot.Total, req.Reason)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return models.FromDomainReservation(updated), nil
}
