package schedule

import (
	"time"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	"github.com/lesnaya-zaimka/booking-service/pkg/types"
)

// GenerateGrid генерирует канонический список стартовых времён для ресурса
// на указанную дату с фиксированным шагом cfg.SlotStepMinutes.
//
// Правила:
//   - слот попадает в сетку, только если его конец (start + durationMinutes)
//     не выходит за время закрытия;
//   - если дата — сегодня, отбрасываются слоты раньше now + MinNoticeMinutes;
//     сравнение по каждому слоту: слот со стартом, равным водоразделу или
//     позже него, остаётся;
//   - даты в прошлом дают пустую сетку.
//
// Порядок детерминированный, по возрастанию времени старта.
func GenerateGrid(
	cfg *domain.ResourceConfig,
	durationMinutes int,
	date time.Time,
	now time.Time,
) []types.TimeString {
	if IsDateInPast(date, now) {
		return []types.TimeString{}
	}

	// Шаг 1: генерируем все слоты от открытия до закрытия
	allSlots := FullGrid(cfg, durationMinutes)

	// Шаг 2: для будущих дат возвращаем всю сетку
	if !IsSameDay(date, now) {
		return allSlots
	}

	// Шаг 3: для сегодняшней даты фильтруем по минимальному времени до начала
	watermark, err := types.NewTimeString(now).AddMinutes(cfg.MinNoticeMinutes)
	if err != nil {
		// Водораздел ушёл за полночь — сегодня бронировать уже нечего
		return []types.TimeString{}
	}

	available := make([]types.TimeString, 0, len(allSlots))
	for _, slot := range allSlots {
		// Слот остаётся, если его старт не раньше водораздела
		// (старт, равный водоразделу, включается)
		if !slot.IsBefore(watermark) {
			available = append(available, slot)
		}
	}

	return available
}

// FullGrid генерирует каноническую сетку стартовых времён без фильтрации
// по дате: от открытия с шагом cfg.SlotStepMinutes, пока конец слота
// помещается до закрытия. Более длинные варианты перестают помещаться
// раньше коротких. Выход конца слота или следующего шага за полночь —
// конец сетки, а не ошибка конфигурации.
func FullGrid(cfg *domain.ResourceConfig, durationMinutes int) []types.TimeString {
	slots := make([]types.TimeString, 0)
	current := cfg.OpenTime

	for current.IsBefore(cfg.CloseTime) {
		slotEnd, err := current.AddMinutes(durationMinutes)
		if err != nil || slotEnd.IsAfter(cfg.CloseTime) {
			break
		}

		slots = append(slots, current)
		current, err = current.AddMinutes(cfg.SlotStepMinutes)
		if err != nil {
			break
		}
	}

	return slots
}

// FitsOperatingHours проверяет, что интервал [start, start+duration)
// укладывается в рабочие часы ресурса.
func FitsOperatingHours(cfg *domain.ResourceConfig, start types.TimeString, durationMinutes int) bool {
	if start.IsBefore(cfg.OpenTime) {
		return false
	}
	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return false
	}
	return !end.IsAfter(cfg.CloseTime)
}

// OnGrid проверяет, что стартовое время принадлежит канонической сетке:
// смещение от открытия кратно шагу сетки.
func OnGrid(cfg *domain.ResourceConfig, start types.TimeString) bool {
	offset := start.Minutes() - cfg.OpenTime.Minutes()
	if offset < 0 {
		return false
	}
	return offset%cfg.SlotStepMinutes == 0
}

// PastCutoff проверяет, что старт слота на сегодняшнюю дату нарушает
// минимальное время до бронирования.
func PastCutoff(start types.TimeString, date time.Time, now time.Time, minNoticeMinutes int) bool {
	if !IsSameDay(date, now) {
		return false
	}
	watermark, err := types.NewTimeString(now).AddMinutes(minNoticeMinutes)
	if err != nil {
		return true
	}
	return start.IsBefore(watermark)
}

// IsSameDay проверяет, что две даты относятся к одному и тому же дню
func IsSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func IsDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
