package create_reservation

import (
	"time"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	submitReservation "github.com/lesnaya-zaimka/booking-service/internal/usecase/submit_reservation"
	"github.com/lesnaya-zaimka/booking-service/pkg/types"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	ResourceType  string  `json:"resourceType"`
	Date          string  `json:"date"`      // "2026-08-28"
	StartTime     string  `json:"startTime"` // "10:00"
	Variant       *string `json:"variant,omitempty"`
	UnitID        *string `json:"unitId,omitempty"`
	Units         int     `json:"units"`
	CustomerName  string  `json:"customerName"`
	CustomerPhone string  `json:"customerPhone"`
	Comment       *string `json:"comment,omitempty"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID              int64   `json:"id"`
	ResourceType    string  `json:"resourceType"`
	UnitID          *string `json:"unitId,omitempty"`
	Variant         *string `json:"variant,omitempty"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Units           int     `json:"units"`
	Status          string  `json:"status"`

	UnitPrice       float64 `json:"unitPrice"`
	DiscountPercent int     `json:"discountPercent"`
	BaseTotal       float64 `json:"baseTotal"`
	DiscountAmount  float64 `json:"discountAmount"`
	Total           float64 `json:"total"`
	Joined          bool    `json:"joined"`

	CustomerName  string  `json:"customerName"`
	CustomerPhone string  `json:"customerPhone"`
	Comment       *string `json:"comment,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(origin string) (*submitReservation.Request, error) {
	// Парсим дату
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	// Парсим время
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	units := r.Units
	if units == 0 {
		units = 1
	}

	return &submitReservation.Request{
		ResourceType:  domain.ResourceType(r.ResourceType),
		Date:          date,
		StartTime:     startTime,
		Variant:       r.Variant,
		UnitID:        r.UnitID,
		Units:         units,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Comment:       r.Comment,
		Origin:        origin,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *submitReservation.Response) *ReservationResponse {
	return &ReservationResponse{
		ID:              resp.ID,
		ResourceType:    string(resp.ResourceType),
		UnitID:          resp.UnitID,
		Variant:         resp.Variant,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Units:           resp.Units,
		Status:          resp.Status,
		UnitPrice:       resp.UnitPrice,
		DiscountPercent: resp.DiscountPercent,
		BaseTotal:       resp.BaseTotal,
		DiscountAmount:  resp.DiscountAmount,
		Total:           resp.Total,
		Joined:          resp.Joined,
		CustomerName:    resp.CustomerName,
		CustomerPhone:   resp.CustomerPhone,
		Comment:         resp.Comment,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
