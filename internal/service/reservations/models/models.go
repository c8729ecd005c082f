package models

import (
	"errors"
	"time"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// Request модели

// ListReservationsRequest запрос на получение бронирований ресурса
type ListReservationsRequest struct {
	ResourceType    string     `json:"resourceType"`
	Date            *time.Time `json:"date,omitempty"`            // Фильтр по дате (опционально)
	UnitID          *string    `json:"unitId,omitempty"`          // Фильтр по юниту (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	Phone           *string    `json:"phone,omitempty"`           // Фильтр по телефону гостя (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отменённые/истёкшие/завершённые
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListReservationsRequest) ToDomainFilter() (domain.ReservationsFilter, error) {
	filter := domain.ReservationsFilter{
		ResourceType:    domain.ResourceType(r.ResourceType),
		Date:            r.Date,
		UnitID:          r.UnitID,
		Phone:           r.Phone,
		IncludeInactive: r.IncludeInactive,
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := ToDomainReservationStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// UpdateStatusRequest запрос на обновление статуса бронирования
type UpdateStatusRequest struct {
	StaffID string `json:"staffId"`
	Status  string `json:"status"`
}

// CancelReservationRequest запрос на отмену бронирования
type CancelReservationRequest struct {
	StaffID            string `json:"staffId"`
	CancellationReason string `json:"cancellationReason"`
}

// OverridePriceRequest запрос на административную корректировку цены.
// Actor и Reason обязательны: каждая корректировка фиксируется в логах.
type OverridePriceRequest struct {
	StaffID   string  `json:"staffId"`
	UnitPrice float64 `json:"unitPrice"`
	Reason    string  `json:"reason"`
}

// Response модели

// PriceSnapshotResponse ценовой снимок бронирования
type PriceSnapshotResponse struct {
	UnitPrice       float64 `json:"unitPrice"`
	DiscountPercent int     `json:"discountPercent"`
	BaseTotal       float64 `json:"baseTotal"`
	DiscountAmount  float64 `json:"discountAmount"`
	Total           float64 `json:"total"`
}

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID              int64   `json:"id"`
	ResourceType    string  `json:"resourceType"`
	Model           string  `json:"model"`
	UnitID          *string `json:"unitId,omitempty"`
	Variant         *string `json:"variant,omitempty"`
	Date            string  `json:"date"`      // "2026-08-28"
	StartTime       string  `json:"startTime"` // "10:00"
	DurationMinutes int     `json:"durationMinutes"`
	Units           int     `json:"units"`
	Status          string  `json:"status"`

	Price PriceSnapshotResponse `json:"price"`

	CustomerName  string  `json:"customerName"`
	CustomerPhone string  `json:"customerPhone"`
	Comment       *string `json:"comment,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	Total        int                   `json:"total"`
}

// ExpirePendingResponse результат сборки просроченных бронирований
type ExpirePendingResponse struct {
	ExpiredIDs []int64 `json:"expiredIds"`
	Total      int     `json:"total"`
}

// Конвертеры

// ToDomainReservationStatus конвертирует строку в domain.ReservationStatus
func ToDomainReservationStatus(s string) (domain.ReservationStatus, error) {
	if !domain.IsValidStatus(s) {
		return "", ErrInvalidStatus
	}
	return domain.ReservationStatus(s), nil
}

// FromDomainReservation конвертирует domain.Reservation в response
func FromDomainReservation(res *domain.Reservation) *ReservationResponse {
	resp := &ReservationResponse{
		ID:              res.ID,
		ResourceType:    string(res.ResourceType),
		Model:           string(res.Model),
		UnitID:          res.UnitID,
		Variant:         res.Variant,
		Date:            res.Date.Format(domain.DateFormat),
		StartTime:       res.StartTime.String(),
		DurationMinutes: res.DurationMinutes,
		Units:           res.Units,
		Status:          string(res.Status),
		Price: PriceSnapshotResponse{
			UnitPrice:       res.Price.UnitPrice,
			DiscountPercent: res.Price.DiscountPercent,
			BaseTotal:       res.Price.BaseTotal,
			DiscountAmount:  res.Price.DiscountAmount,
			Total:           res.Price.Total,
		},
		CustomerName:       res.CustomerName,
		CustomerPhone:      res.CustomerPhone,
		Comment:            res.Comment,
		CancellationReason: res.CancellationReason,
		CreatedAt:          res.CreatedAt,
		UpdatedAt:          res.UpdatedAt,
	}

	if res.CancelledAt != nil {
		cancelledAt := res.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledAt
	}

	return resp
}

// FromDomainReservationList конвертирует список domain.Reservation в response
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	items := make([]ReservationResponse, 0, len(reservations))
	for _, res := range reservations {
		items = append(items, *FromDomainReservation(res))
	}
	return &ReservationListResponse{
		Reservations: items,
		Total:        len(items),
	}
}
