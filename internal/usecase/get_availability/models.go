package get_availability

import (
	"time"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
)

// Request модель запроса доступности ресурса на дату
type Request struct {
	ResourceType domain.ResourceType
	Date         time.Time
}

// Response модель ответа с доступностью по слотам
type Response struct {
	Date         time.Time
	ResourceType domain.ResourceType

	// Blocked истинно, когда вся дата закрыта; Slots при этом пуст,
	// Reason содержит причину для гостя
	Blocked bool
	Reason  *string

	Slots []domain.Slot

	// BlackoutIntervals частичные закрытия дня, показываемые гостю
	BlackoutIntervals []BlackoutInterval
}

// BlackoutInterval частичное закрытие дня в ответе
type BlackoutInterval struct {
	StartTime *string
	EndTime   *string
	Reason    *string
}

func blackoutIntervalViews(intervals []*domain.BlackoutInterval) []BlackoutInterval {
	views := make([]BlackoutInterval, 0, len(intervals))
	for _, iv := range intervals {
		view := BlackoutInterval{Reason: iv.Reason}
		if iv.StartTime != nil {
			s := iv.StartTime.String()
			view.StartTime = &s
		}
		if iv.EndTime != nil {
			e := iv.EndTime.String()
			view.EndTime = &e
		}
		views = append(views, view)
	}
	return views
}
