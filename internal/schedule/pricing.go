package schedule

import (
	"time"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
)

// ResolveUnitPrice возвращает цену за место для варианта на дату.
//
// Порядок разрешения (от частного к общему):
//  1. переопределение на конкретную дату для варианта;
//  2. переопределение на конкретную дату для всего типа ресурса;
//  3. дефолтное переопределение (без даты) для варианта;
//  4. дефолтное переопределение (без даты) для всего типа ресурса;
//  5. цена варианта из каталога.
func ResolveUnitPrice(
	variant *domain.Variant,
	overrides []*domain.PriceOverride,
	date time.Time,
) float64 {
	var (
		dateVariant *domain.PriceOverride
		dateAny     *domain.PriceOverride
		defVariant  *domain.PriceOverride
		defAny      *domain.PriceOverride
	)

	for _, ov := range overrides {
		matchesVariant := ov.Variant != nil && *ov.Variant == variant.Code
		matchesAll := ov.Variant == nil

		if ov.Date != nil && IsSameDay(*ov.Date, date) {
			if matchesVariant && dateVariant == nil {
				dateVariant = ov
			}
			if matchesAll && dateAny == nil {
				dateAny = ov
			}
		}
		if ov.Date == nil {
			if matchesVariant && defVariant == nil {
				defVariant = ov
			}
			if matchesAll && defAny == nil {
				defAny = ov
			}
		}
	}

	switch {
	case dateVariant != nil:
		return dateVariant.UnitPrice
	case dateAny != nil:
		return dateAny.UnitPrice
	case defVariant != nil:
		return defVariant.UnitPrice
	case defAny != nil:
		return defAny.UnitPrice
	default:
		return variant.UnitPrice
	}
}

// ApplyJoinDiscount возвращает цену за место с учётом скидки за присоединение
// к существующей группе. Бронирование, открывающее новую группу, скидку
// не получает.
func ApplyJoinDiscount(unitPrice float64, discountPercent int, joining bool) (float64, int) {
	if !joining || discountPercent <= 0 {
		return unitPrice, 0
	}
	discounted := unitPrice * (1 - float64(discountPercent)/100)
	return discounted, discountPercent
}

// BuildPriceSnapshot формирует неизменяемый ценовой снимок бронирования:
// базовая сумма, размер скидки и итог. Снимок фиксируется при создании и
// далее не пересчитывается.
func BuildPriceSnapshot(unitPrice float64, units int, discountPercent int, joining bool) domain.PriceSnapshot {
	perUnit, pct := ApplyJoinDiscount(unitPrice, discountPercent, joining)

	base := unitPrice * float64(units)
	total := perUnit * float64(units)

	return domain.PriceSnapshot{
		UnitPrice:       perUnit,
		DiscountPercent: pct,
		BaseTotal:       base,
		DiscountAmount:  base - total,
		Total:           total,
	}
}
