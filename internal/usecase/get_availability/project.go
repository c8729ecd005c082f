package get_availability

import (
	"sort"
	"time"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	"github.com/lesnaya-zaimka/booking-service/internal/schedule"
	"github.com/lesnaya-zaimka/booking-service/pkg/ptr"
	"github.com/lesnaya-zaimka/booking-service/pkg/types"
)

// projectSharedPool строит слоты shared-pool ресурса: сеточные кандидаты
// по каждому варианту плюс синтетические joinable-слоты для активных
// бронирований с внесеточным стартом.
func projectSharedPool(
	cfg *domain.ResourceConfig,
	date time.Time,
	now time.Time,
	reservations []*domain.Reservation,
	blackouts []*domain.BlackoutInterval,
	overrides []*domain.PriceOverride,
) []domain.Slot {
	slots := make([]domain.Slot, 0)

	// seen защищает от дублирования синтетических слотов с сеточными
	seen := make(map[string]bool)

	for vi := range cfg.Variants {
		variant := &cfg.Variants[vi]

		grid := schedule.FullGrid(cfg, variant.DurationMinutes)

		unitPrice := schedule.ResolveUnitPrice(variant, overrides, date)

		for _, start := range grid {
			slot := classifySharedPoolSlot(cfg, variant, start, date, now, unitPrice, reservations, blackouts)
			seen[slotKey(start, variant.Code)] = true
			// Слоты за водоразделом same-day cutoff гостю не показываются
			if slot.State == domain.SlotPastCutoff {
				continue
			}
			slots = append(slots, slot)
		}
	}

	// Синтетические joinable-слоты для внесеточных бронирований:
	// персонал может создать бронирование вне канонической сетки, и к нему
	// тоже можно присоединиться
	for _, res := range reservations {
		if !res.IsActive() || res.Variant == nil {
			continue
		}
		if seen[slotKey(res.StartTime, *res.Variant)] {
			continue
		}
		seen[slotKey(res.StartTime, *res.Variant)] = true

		variant, ok := cfg.VariantByCode(*res.Variant)
		if !ok {
			continue
		}

		unitPrice := schedule.ResolveUnitPrice(variant, overrides, date)
		slot := classifySharedPoolSlot(cfg, variant, res.StartTime, date, now, unitPrice, reservations, blackouts)
		slot.OffGrid = true

		// Те же фильтры закрытий и cutoff, что и для сеточных кандидатов
		if slot.State == domain.SlotPastCutoff || slot.State == domain.SlotBlocked {
			continue
		}
		slots = append(slots, slot)
	}

	sortSlots(slots)
	return slots
}

// classifySharedPoolSlot вычисляет состояние одного кандидата
// (open / joinable / full / blocked / past_cutoff)
func classifySharedPoolSlot(
	cfg *domain.ResourceConfig,
	variant *domain.Variant,
	start types.TimeString,
	date time.Time,
	now time.Time,
	unitPrice float64,
	reservations []*domain.Reservation,
	blackouts []*domain.BlackoutInterval,
) domain.Slot {
	slot := domain.Slot{
		StartTime:       start,
		Variant:         ptr.Ptr(variant.Code),
		DurationMinutes: variant.DurationMinutes,
		UnitPrice:       unitPrice,
		TotalCapacity:   cfg.TotalCapacity(),
	}

	end, err := start.AddMinutes(variant.DurationMinutes)
	if err != nil {
		slot.State = domain.SlotFull
		return slot
	}

	// 1. Закрытия персоналом
	for _, b := range blackouts {
		if b.Overlaps(start, end) {
			slot.State = domain.SlotBlocked
			return slot
		}
	}

	// 2. Same-day cutoff, по каждому слоту отдельно
	if schedule.PastCutoff(start, date, now, cfg.MinNoticeMinutes) {
		slot.State = domain.SlotPastCutoff
		return slot
	}

	// 3. Конфликты и ёмкость группы
	outcome, remaining, err := schedule.CheckSharedPool(
		schedule.ProspectiveReservation{
			Start:           start,
			Variant:         variant.Code,
			DurationMinutes: variant.DurationMinutes,
			Units:           1,
		},
		reservations,
		cfg.BufferMinutes,
		cfg.TotalCapacity(),
	)
	if err != nil {
		slot.State = domain.SlotFull
		return slot
	}

	switch outcome {
	case schedule.OutcomeSlotConflict:
		slot.State = domain.SlotFull
		slot.AvailableCapacity = 0

	case schedule.OutcomeCapacityExceeded:
		slot.State = domain.SlotFull
		slot.AvailableCapacity = 0

	case schedule.OutcomeFree:
		// remaining возвращён за вычетом одного запрошенного места
		slot.AvailableCapacity = remaining + 1
		if schedule.HasGroup(reservations, start, variant.Code) {
			slot.State = domain.SlotJoinable
			discounted, _ := schedule.ApplyJoinDiscount(unitPrice, cfg.JoinDiscountPercent, true)
			slot.DiscountedUnitPrice = ptr.Ptr(discounted)
		} else {
			slot.State = domain.SlotOpen
		}
	}

	return slot
}

// projectFixedUnit строит слоты fixed-unit ресурса: по каждому юниту и
// каждому сеточному кандидату бинарная занятость.
func projectFixedUnit(
	cfg *domain.ResourceConfig,
	date time.Time,
	now time.Time,
	reservations []*domain.Reservation,
	blackouts []*domain.BlackoutInterval,
	overrides []*domain.PriceOverride,
) []domain.Slot {
	slots := make([]domain.Slot, 0)

	for vi := range cfg.Variants {
		variant := &cfg.Variants[vi]

		grid := schedule.FullGrid(cfg, variant.DurationMinutes)

		unitPrice := schedule.ResolveUnitPrice(variant, overrides, date)

		for _, start := range grid {
			for ui := range cfg.Units {
				unit := &cfg.Units[ui]
				slot := classifyFixedUnitSlot(cfg, variant, unit, start, date, now, unitPrice, reservations, blackouts)
				if slot.State == domain.SlotPastCutoff {
					continue
				}
				slots = append(slots, slot)
			}
		}
	}

	sortSlots(slots)
	return slots
}

// classifyFixedUnitSlot вычисляет состояние кандидата для конкретного юнита
func classifyFixedUnitSlot(
	cfg *domain.ResourceConfig,
	variant *domain.Variant,
	unit *domain.Unit,
	start types.TimeString,
	date time.Time,
	now time.Time,
	unitPrice float64,
	reservations []*domain.Reservation,
	blackouts []*domain.BlackoutInterval,
) domain.Slot {
	slot := domain.Slot{
		StartTime:       start,
		UnitID:          ptr.Ptr(unit.ID),
		Variant:         ptr.Ptr(variant.Code),
		DurationMinutes: variant.DurationMinutes,
		UnitPrice:       unitPrice,
		TotalCapacity:   1,
	}

	end, err := start.AddMinutes(variant.DurationMinutes)
	if err != nil {
		slot.State = domain.SlotFull
		return slot
	}

	for _, b := range blackouts {
		if b.Overlaps(start, end) {
			slot.State = domain.SlotBlocked
			return slot
		}
	}

	if schedule.PastCutoff(start, date, now, cfg.MinNoticeMinutes) {
		slot.State = domain.SlotPastCutoff
		return slot
	}

	outcome, err := schedule.CheckFixedUnit(unit.ID, start, variant.DurationMinutes, reservations)
	if err != nil || outcome != schedule.OutcomeFree {
		slot.State = domain.SlotFull
		slot.AvailableCapacity = 0
		return slot
	}

	slot.State = domain.SlotOpen
	slot.AvailableCapacity = 1
	return slot
}

// sortSlots сортирует слоты по возрастанию времени старта; при равенстве —
// по варианту и юниту для детерминированного рендеринга
func sortSlots(slots []domain.Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime.IsBefore(slots[j].StartTime)
		}
		vi, vj := ptr.Deref(slots[i].Variant), ptr.Deref(slots[j].Variant)
		if vi != vj {
			return vi < vj
		}
		return ptr.Deref(slots[i].UnitID) < ptr.Deref(slots[j].UnitID)
	})
}

func slotKey(start types.TimeString, variant string) string {
	return start.String() + "|" + variant
}
