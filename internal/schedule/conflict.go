package schedule

import (
	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	"github.com/lesnaya-zaimka/booking-service/pkg/types"
)

// Outcome результат проверки конфликтов для предполагаемого бронирования
type Outcome int

const (
	// OutcomeFree слот свободен, бронирование допустимо
	OutcomeFree Outcome = iota

	// OutcomeSlotConflict интервал пересекается с несовместимым существующим
	// бронированием
	OutcomeSlotConflict

	// OutcomeCapacityExceeded группа с тем же (start, variant) существует,
	// но запрошенные места превышают остаток ёмкости пула
	OutcomeCapacityExceeded
)

// String возвращает строковое представление для логов
func (o Outcome) String() string {
	switch o {
	case OutcomeFree:
		return "free"
	case OutcomeSlotConflict:
		return "slot_conflict"
	case OutcomeCapacityExceeded:
		return "capacity_exceeded"
	default:
		return "unknown"
	}
}

// CheckSharedPool проверяет предполагаемое бронирование shared-pool ресурса
// против существующих активных бронирований.
//
// Эффективное занятое окно каждого бронирования: [start, start+duration+buffer).
// Пересечение окон — конфликт, кроме случая точного совпадения пары
// (start, variant): это присоединение к группе, и вместо конфликта проверяется
// остаток ёмкости пула. Совпадение старта при другом варианте — всегда жёсткий
// конфликт: кросс-вариантное присоединение запрещено.
//
// Бронирования с внесеточным стартом (созданные персоналом вручную) участвуют
// в общей математике пересечений наравне с сеточными.
func CheckSharedPool(
	prospective ProspectiveReservation,
	existing []*domain.Reservation,
	bufferMinutes int,
	poolCapacity int,
) (Outcome, int, error) {
	prospectiveEnd, err := prospective.Start.AddMinutes(prospective.DurationMinutes + bufferMinutes)
	if err != nil {
		return OutcomeSlotConflict, 0, err
	}

	groupUnits := 0

	for _, res := range existing {
		// Неактивные бронирования ресурс не удерживают
		if !res.IsActive() {
			continue
		}

		if res.SameGroup(prospective.Start, prospective.Variant) {
			// Та же группа: не временной конфликт, а проверка ёмкости
			groupUnits += res.Units
			continue
		}

		// Совпадающий старт при другом варианте — жёсткий конфликт
		if res.StartTime == prospective.Start {
			return OutcomeSlotConflict, 0, nil
		}

		resEnd, err := res.BusyEnd(bufferMinutes)
		if err != nil {
			// Некорректное время существующего бронирования пропускаем
			continue
		}

		// Пересечение эффективных окон: строгие неравенства, граничащие
		// интервалы не пересекаются
		if res.StartTime.IsBefore(prospectiveEnd) && resEnd.IsAfter(prospective.Start) {
			return OutcomeSlotConflict, 0, nil
		}
	}

	remaining := poolCapacity - groupUnits
	if prospective.Units > remaining {
		return OutcomeCapacityExceeded, remaining, nil
	}

	return OutcomeFree, remaining - prospective.Units, nil
}

// CheckFixedUnit проверяет предполагаемое бронирование конкретного юнита
// (например, бани B1) против существующих активных бронирований того же юнита.
// Занятость бинарная: любое пересечение интервалов [start, end) — конфликт.
func CheckFixedUnit(
	unitID string,
	start types.TimeString,
	durationMinutes int,
	existing []*domain.Reservation,
) (Outcome, error) {
	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return OutcomeSlotConflict, err
	}

	for _, res := range existing {
		if !res.IsActive() {
			continue
		}
		// Другие юниты независимы
		if res.UnitID == nil || *res.UnitID != unitID {
			continue
		}

		resEnd, err := res.EndTime()
		if err != nil {
			continue
		}

		// conflict iff !(end <= existing.start || start >= existing.end)
		if res.StartTime.IsBefore(end) && resEnd.IsAfter(start) {
			return OutcomeSlotConflict, nil
		}
	}

	return OutcomeFree, nil
}

// GroupUnits возвращает суммарное число мест, занятых активной группой
// с точным совпадением (start, variant).
func GroupUnits(existing []*domain.Reservation, start types.TimeString, variant string) int {
	total := 0
	for _, res := range existing {
		if res.IsActive() && res.SameGroup(start, variant) {
			total += res.Units
		}
	}
	return total
}

// HasGroup проверяет наличие активной группы с точным совпадением (start, variant)
func HasGroup(existing []*domain.Reservation, start types.TimeString, variant string) bool {
	for _, res := range existing {
		if res.IsActive() && res.SameGroup(start, variant) {
			return true
		}
	}
	return false
}

// ProspectiveReservation предполагаемое бронирование shared-pool ресурса
type ProspectiveReservation struct {
	Start           types.TimeString
	Variant         string
	DurationMinutes int
	Units           int
}
