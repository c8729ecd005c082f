package submit_reservation

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	"github.com/lesnaya-zaimka/booking-service/internal/schedule"
)

// validateRequest валидирует входные данные запроса против модели ресурса
func validateRequest(req *Request, cfg *domain.ResourceConfig) error {
	if req.ResourceType == "" {
		return fmt.Errorf("%w: resourceType is required", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// Проверяем, что время начала указано
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	// Валидируем формат времени
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.CustomerName == "" {
		return fmt.Errorf("%w: customerName is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(req.CustomerName) > domain.MaxCustomerNameLength {
		return fmt.Errorf("%w: customerName is too long", ErrInvalidInput)
	}

	if req.CustomerPhone == "" {
		return fmt.Errorf("%w: customerPhone is required", ErrInvalidInput)
	}
	if !validPhone(req.CustomerPhone) {
		return fmt.Errorf("%w: invalid customerPhone format", ErrInvalidInput)
	}

	if req.Comment != nil && utf8.RuneCountInString(*req.Comment) > domain.MaxCommentLength {
		return fmt.Errorf("%w: comment is too long", ErrInvalidInput)
	}

	// Поля, зависящие от модели ресурса
	switch cfg.Model {
	case domain.ModelSharedPool:
		if req.Variant == nil || *req.Variant == "" {
			return fmt.Errorf("%w: variant is required for shared pool resources", ErrInvalidInput)
		}
		if _, ok := cfg.VariantByCode(*req.Variant); !ok {
			return fmt.Errorf("%w: unknown variant %q", ErrInvalidInput, *req.Variant)
		}
		if req.UnitID != nil {
			return fmt.Errorf("%w: unitId is not applicable to shared pool resources", ErrInvalidInput)
		}
		if req.Units < 1 || req.Units > cfg.TotalCapacity() {
			return fmt.Errorf("%w: units must be between 1 and %d", ErrInvalidInput, cfg.TotalCapacity())
		}

	case domain.ModelFixedUnit:
		if req.UnitID == nil || *req.UnitID == "" {
			return fmt.Errorf("%w: unitId is required for fixed unit resources", ErrInvalidInput)
		}
		if _, ok := cfg.UnitByID(*req.UnitID); !ok {
			return fmt.Errorf("%w: unknown unit %q", ErrInvalidInput, *req.UnitID)
		}
		if req.Variant != nil {
			if _, ok := cfg.VariantByCode(*req.Variant); !ok {
				return fmt.Errorf("%w: unknown variant %q", ErrInvalidInput, *req.Variant)
			}
		}
		// Fixed-unit ресурс бронируется целиком
		if req.Units != 1 {
			return fmt.Errorf("%w: units must be 1 for fixed unit resources", ErrInvalidInput)
		}

	default:
		return fmt.Errorf("%w: unknown resource model %q", ErrInternal, cfg.Model)
	}

	return nil
}

// validateDate проверяет, что дата подходит для бронирования
func validateDate(reservationDate time.Time, now time.Time, advanceBookingDays int) error {
	// Проверяем, что дата не в прошлом
	if schedule.IsDateInPast(reservationDate, now) {
		return ErrInvalidDate
	}

	// Если advanceBookingDays = 0, нет ограничений на дату
	if advanceBookingDays == 0 {
		return nil
	}

	// Проверяем, что дата не превышает горизонт бронирования
	maxDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, advanceBookingDays)

	dateOnly := time.Date(reservationDate.Year(), reservationDate.Month(), reservationDate.Day(), 0, 0, 0, 0, reservationDate.Location())

	if dateOnly.After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}

// validPhone проверяет формат телефона: опциональный "+" и 10-15 цифр
func validPhone(phone string) bool {
	digits := 0
	for i, r := range phone {
		if r == '+' && i == 0 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
		digits++
	}
	return digits >= domain.MinPhoneDigits && digits <= domain.MaxPhoneDigits
}
