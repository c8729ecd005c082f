package submit_reservation

import (
	"time"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	"github.com/lesnaya-zaimka/booking-service/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	ResourceType domain.ResourceType
	Date         time.Time
	StartTime    types.TimeString
	Variant      *string // вариант активности (shared pool)
	UnitID       *string // конкретный юнит (fixed unit)
	Units        int     // запрошенные места; для fixed unit всегда 1

	CustomerName  string
	CustomerPhone string
	Comment       *string

	// Origin сетевой адрес отправителя для origin-guard rate limiter'а
	Origin string
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64
	ResourceType    domain.ResourceType
	UnitID          *string
	Variant         *string
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Units           int
	Status          string

	// Ценовой снимок, зафиксированный при создании
	UnitPrice       float64
	DiscountPercent int
	BaseTotal       float64
	DiscountAmount  float64
	Total           float64

	// Joined истинно, если бронирование присоединилось к существующей группе
	Joined bool

	CustomerName  string
	CustomerPhone string
	Comment       *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func fromDomain(res *domain.Reservation, joined bool) *Response {
	return &Response{
		ID:              res.ID,
		ResourceType:    res.ResourceType,
		UnitID:          res.UnitID,
		Variant:         res.Variant,
		Date:            res.Date,
		StartTime:       res.StartTime,
		DurationMinutes: res.DurationMinutes,
		Units:           res.Units,
		Status:          string(res.Status),
		UnitPrice:       res.Price.UnitPrice,
		DiscountPercent: res.Price.DiscountPercent,
		BaseTotal:       res.Price.BaseTotal,
		DiscountAmount:  res.Price.DiscountAmount,
		Total:           res.Price.Total,
		Joined:          joined,
		CustomerName:    res.CustomerName,
		CustomerPhone:   res.CustomerPhone,
		Comment:         res.Comment,
		CreatedAt:       res.CreatedAt,
		UpdatedAt:       res.UpdatedAt,
	}
}
