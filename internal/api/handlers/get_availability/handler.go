package get_availability

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/lesnaya-zaimka/booking-service/internal/api/handlers"
	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	getAvailability "github.com/lesnaya-zaimka/booking-service/internal/usecase/get_availability"
)

const (
	msgMissingDate        = "дата обязательна"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgResourceNotFound   = "ресурс не найден"
	msgDateTooFar         = "дата слишком далеко в будущем"
	msgInvalidBookingDate = "некорректная дата"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources/{resourceType}/availability
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resourceType := vars["resourceType"]

	// Извлекаем date из query параметров
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /resources/{type}/availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /resources/{type}/availability - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{
		ResourceType: domain.ResourceType(resourceType),
		Date:         date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrResourceNotFound):
			h.logger.Warn("GET /resources/{type}/availability - Resource not found: resource=%s", resourceType)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, getAvailability.ErrDateTooFarInFuture):
			h.logger.Warn("GET /resources/{type}/availability - Date too far: resource=%s, date=%s", resourceType, dateStr)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailability.ErrInvalidDate), errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /resources/{type}/availability - Invalid request: resource=%s, date=%s", resourceType, dateStr)
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		default:
			h.logger.Error("GET /resources/{type}/availability - Failed: resource=%s, date=%s, error=%v",
				resourceType, dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /resources/{type}/availability - OK: resource=%s, date=%s, slots=%d, blocked=%v",
		resourceType, dateStr, len(result.Slots), result.Blocked)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
