package get_reservations

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/lesnaya-zaimka/booking-service/internal/api/handlers"
	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	"github.com/lesnaya-zaimka/booking-service/internal/service/reservations"
	"github.com/lesnaya-zaimka/booking-service/internal/service/reservations/models"
)

const (
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidStatus    = "некорректный статус"
	msgResourceNotFound = "ресурс не найден"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources/{resourceType}/reservations
// Query params: date, unitId, status, phone, includeInactive (все опциональны)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resourceType := vars["resourceType"]

	req := &models.ListReservationsRequest{
		ResourceType: resourceType,
	}

	query := r.URL.Query()

	// Извлекаем опциональные фильтры из query параметров
	if dateStr := query.Get("date"); dateStr != "" {
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			h.logger.Warn("GET /resources/{type}/reservations - Invalid date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.Date = &date
	}

	if unitID := query.Get("unitId"); unitID != "" {
		req.UnitID = &unitID
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if phone := query.Get("phone"); phone != "" {
		req.Phone = &phone
	}

	req.IncludeInactive = query.Get("includeInactive") == "true"

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("GET /resources/{type}/reservations - Resource not found: resource=%s", resourceType)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("GET /resources/{type}/reservations - Invalid filter: resource=%s, error=%v", resourceType, err)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /resources/{type}/reservations - Failed: resource=%s, error=%v", resourceType, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /resources/{type}/reservations - OK: resource=%s, total=%d", resourceType, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
