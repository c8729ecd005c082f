package create_reservation

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/lesnaya-zaimka/booking-service/internal/api/handlers"
	submitReservation "github.com/lesnaya-zaimka/booking-service/internal/usecase/submit_reservation"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgResourceNotFound   = "ресурс не найден"
	msgInvalidInput       = "некорректные данные бронирования"
	msgInvalidBookingDate = "некорректная дата бронирования"
	msgDateTooFar         = "дата бронирования слишком далеко в будущем"
	msgClosed             = "ресурс закрыт в выбранное время"
	msgInvalidTimeSlot    = "некорректный временной слот"
	msgTooLateToBook      = "слишком поздно для бронирования этого слота"
	msgSlotConflict       = "выбранный временной слот уже занят"
	msgCapacityExceeded   = "недостаточно свободных мест в выбранном слоте"
	msgRateLimited        = "слишком много заявок, попробуйте позже"
)

type Handler struct {
	useCase SubmitReservationUseCase
	logger  Logger
}

func NewHandler(useCase SubmitReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(clientOrigin(r))
	if err != nil {
		h.logger.Warn("POST /reservations - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, submitReservation.ErrResourceNotFound):
			h.logger.Warn("POST /reservations - Resource not found: resource=%s", req.ResourceType)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, submitReservation.ErrSlotConflict):
			h.logger.Warn("POST /reservations - Slot conflict: resource=%s, date=%s, time=%s",
				req.ResourceType, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, submitReservation.ErrCapacityExceeded):
			h.logger.Warn("POST /reservations - Capacity exceeded: resource=%s, date=%s, time=%s, units=%d",
				req.ResourceType, req.Date, req.StartTime, req.Units)
			handlers.RespondConflict(w, msgCapacityExceeded)

		case errors.Is(err, submitReservation.ErrRateLimited):
			h.logger.Warn("POST /reservations - Rate limited: phone=%s", req.CustomerPhone)
			handlers.RespondTooManyRequests(w, msgRateLimited)

		case errors.Is(err, submitReservation.ErrClosed):
			h.logger.Warn("POST /reservations - Resource closed: resource=%s, date=%s", req.ResourceType, req.Date)
			handlers.RespondBadRequest(w, msgClosed)

		case errors.Is(err, submitReservation.ErrInvalidDate):
			h.logger.Warn("POST /reservations - Invalid date: resource=%s, date=%s", req.ResourceType, req.Date)
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, submitReservation.ErrDateTooFarInFuture):
			h.logger.Warn("POST /reservations - Date too far: resource=%s, date=%s", req.ResourceType, req.Date)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, submitReservation.ErrInvalidTimeSlot):
			h.logger.Warn("POST /reservations - Invalid time slot: resource=%s, time=%s", req.ResourceType, req.StartTime)
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, submitReservation.ErrTooLateToBook):
			h.logger.Warn("POST /reservations - Too late to book: resource=%s, time=%s", req.ResourceType, req.StartTime)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, submitReservation.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: resource=%s, error=%v", req.ResourceType, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: resource=%s, error=%v",
				req.ResourceType, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations - Reservation created successfully: reservation_id=%d, resource=%s, joined=%v",
		result.ID, req.ResourceType, result.Joined)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

// clientOrigin возвращает сетевой адрес отправителя с учётом прокси
func clientOrigin(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// Берём первый адрес из цепочки
		if idx := strings.IndexByte(forwarded, ','); idx > 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
