package get_availability

import (
	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	getAvailability "github.com/lesnaya-zaimka/booking-service/internal/usecase/get_availability"
)

// SlotResponse HTTP модель кандидатного слота
type SlotResponse struct {
	StartTime           string   `json:"startTime"` // "10:00"
	Variant             *string  `json:"variant,omitempty"`
	UnitID              *string  `json:"unitId,omitempty"`
	DurationMinutes     int      `json:"durationMinutes"`
	State               string   `json:"state"`
	UnitPrice           float64  `json:"unitPrice"`
	DiscountedUnitPrice *float64 `json:"discountedUnitPrice,omitempty"`
	AvailableCapacity   int      `json:"availableCapacity"`
	TotalCapacity       int      `json:"totalCapacity"`
	OffGrid             bool     `json:"offGrid,omitempty"`
}

// BlackoutIntervalResponse HTTP модель частичного закрытия дня
type BlackoutIntervalResponse struct {
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

// AvailabilityResponse HTTP модель ответа с доступностью ресурса на дату
type AvailabilityResponse struct {
	ResourceType      string                     `json:"resourceType"`
	Date              string                     `json:"date"` // "2026-08-28"
	Blocked           bool                       `json:"blocked"`
	Reason            *string                    `json:"reason,omitempty"`
	Slots             []SlotResponse             `json:"slots"`
	BlackoutIntervals []BlackoutIntervalResponse `json:"blackoutIntervals,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime:           slot.StartTime.String(),
			Variant:             slot.Variant,
			UnitID:              slot.UnitID,
			DurationMinutes:     slot.DurationMinutes,
			State:               string(slot.State),
			UnitPrice:           slot.UnitPrice,
			DiscountedUnitPrice: slot.DiscountedUnitPrice,
			AvailableCapacity:   slot.AvailableCapacity,
			TotalCapacity:       slot.TotalCapacity,
			OffGrid:             slot.OffGrid,
		})
	}

	intervals := make([]BlackoutIntervalResponse, 0, len(resp.BlackoutIntervals))
	for _, iv := range resp.BlackoutIntervals {
		intervals = append(intervals, BlackoutIntervalResponse{
			StartTime: iv.StartTime,
			EndTime:   iv.EndTime,
			Reason:    iv.Reason,
		})
	}

	return &AvailabilityResponse{
		ResourceType:      string(resp.ResourceType),
		Date:              resp.Date.Format(domain.DateFormat),
		Blocked:           resp.Blocked,
		Reason:            resp.Reason,
		Slots:             slots,
		BlackoutIntervals: intervals,
	}
}
