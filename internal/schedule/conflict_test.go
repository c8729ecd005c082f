package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	"github.com/lesnaya-zaimka/booking-service/pkg/types"
)

func poolReservation(start string, variant string, units int, status domain.ReservationStatus) *domain.Reservation {
	v := variant
	return &domain.Reservation{
		Model:           domain.ModelSharedPool,
		Variant:         &v,
		StartTime:       types.TimeString(start),
		DurationMinutes: 60,
		Units:           units,
		Status:          status,
	}
}

func unitReservation(unitID string, start string, durationMinutes int, status domain.ReservationStatus) *domain.Reservation {
	u := unitID
	return &domain.Reservation{
		Model:           domain.ModelFixedUnit,
		UnitID:          &u,
		StartTime:       types.TimeString(start),
		DurationMinutes: durationMinutes,
		Status:          status,
	}
}

func TestCheckSharedPool_EmptyPoolIsFree(t *testing.T) {
	outcome, remaining, err := CheckSharedPool(
		ProspectiveReservation{Start: "10:00", Variant: "short", DurationMinutes: 60, Units: 2},
		nil, 30, 4,
	)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFree, outcome)
	assert.Equal(t, 2, remaining)
}

func TestCheckSharedPool_JoinExistingGroup(t *testing.T) {
	// Группа 10:00/short уже держит 2 места из 4
	existing := []*domain.Reservation{
		poolReservation("10:00", "short", 2, domain.StatusConfirmed),
	}

	outcome, remaining, err := CheckSharedPool(
		ProspectiveReservation{Start: "10:00", Variant: "short", DurationMinutes: 60, Units: 2},
		existing, 30, 4,
	)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFree, outcome)
	// Группа заполнена: 2 + 2 = 4, остатка нет
	assert.Equal(t, 0, remaining)
}

func TestCheckSharedPool_GroupCapacityExceeded(t *testing.T) {
	existing := []*domain.Reservation{
		poolReservation("10:00", "short", 3, domain.StatusConfirmed),
	}

	outcome, remaining, err := CheckSharedPool(
		ProspectiveReservation{Start: "10:00", Variant: "short", DurationMinutes: 60, Units: 2},
		existing, 30, 4,
	)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCapacityExceeded, outcome)
	assert.Equal(t, 1, remaining)
}

func TestCheckSharedPool_SameStartDifferentVariantConflicts(t *testing.T) {
	// Кросс-вариантное присоединение запрещено даже при свободных местах
	existing := []*domain.Reservation{
		poolReservation("10:00", "short", 1, domain.StatusConfirmed),
	}

	outcome, _, err := CheckSharedPool(
		ProspectiveReservation{Start: "10:00", Variant: "long", DurationMinutes: 120, Units: 1},
		existing, 30, 4,
	)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSlotConflict, outcome)
}

func TestCheckSharedPool_BufferWindowConflicts(t *testing.T) {
	// Занятое окно 10:00 + 60м + 30м буфера = [10:00, 11:30)
	existing := []*domain.Reservation{
		poolReservation("10:00", "short", 1, domain.StatusConfirmed),
	}

	// Старт 11:00 попадает в буферное окно
	outcome, _, err := CheckSharedPool(
		ProspectiveReservation{Start: "11:00", Variant: "short", DurationMinutes: 60, Units: 1},
		existing, 30, 4,
	)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSlotConflict, outcome)

	// Старт 11:30 граничит с окном и не пересекается
	outcome, _, err = CheckSharedPool(
		ProspectiveReservation{Start: "11:30", Variant: "short", DurationMinutes: 60, Units: 1},
		existing, 30, 4,
	)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFree, outcome)
}

func TestCheckSharedPool_ProspectiveBufferReachesExistingStart(t *testing.T) {
	existing := []*domain.Reservation{
		poolReservation("12:00", "short", 1, domain.StatusConfirmed),
	}

	// Окно заявки [11:00, 12:30) накрывает старт 12:00
	outcome, _, err := CheckSharedPool(
		ProspectiveReservation{Start: "11:00", Variant: "short", DurationMinutes: 60, Units: 1},
		existing, 30, 4,
	)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSlotConflict, outcome)
}

func TestCheckSharedPool_InactiveReservationsIgnored(t *testing.T) {
	existing := []*domain.Reservation{
		poolReservation("10:00", "short", 4, domain.StatusCancelled),
		poolReservation("10:30", "short", 4, domain.StatusExpired),
	}

	outcome, remaining, err := CheckSharedPool(
		ProspectiveReservation{Start: "10:00", Variant: "short", DurationMinutes: 60, Units: 4},
		existing, 30, 4,
	)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFree, outcome)
	assert.Equal(t, 0, remaining)
}

func TestCheckSharedPool_OffGridReservationParticipates(t *testing.T) {
	// Внесеточное бронирование, созданное персоналом: окно [10:15, 11:45)
	existing := []*domain.Reservation{
		poolReservation("10:15", "short", 2, domain.StatusConfirmed),
	}

	// Сеточный слот 11:00 пересекается с внесеточным окном
	outcome, _, err := CheckSharedPool(
		ProspectiveReservation{Start: "11:00", Variant: "short", DurationMinutes: 60, Units: 1},
		existing, 30, 4,
	)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSlotConflict, outcome)

	// Точное совпадение с внесеточным стартом — присоединение к группе
	outcome, remaining, err := CheckSharedPool(
		ProspectiveReservation{Start: "10:15", Variant: "short", DurationMinutes: 60, Units: 2},
		existing, 30, 4,
	)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFree, outcome)
	assert.Equal(t, 0, remaining)
}

func TestCheckFixedUnit(t *testing.T) {
	existing := []*domain.Reservation{
		unitReservation("B1", "14:00", 180, domain.StatusConfirmed),
	}

	// Пересечение с [14:00, 17:00) того же юнита
	outcome, err := CheckFixedUnit("B1", types.TimeString("16:00"), 180, existing)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSlotConflict, outcome)

	// Граничащий интервал не пересекается
	outcome, err = CheckFixedUnit("B1", types.TimeString("17:00"), 180, existing)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFree, outcome)

	// Другой юнит независим
	outcome, err = CheckFixedUnit("B2", types.TimeString("14:00"), 180, existing)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFree, outcome)
}

func TestCheckFixedUnit_InactiveIgnored(t *testing.T) {
	existing := []*domain.Reservation{
		unitReservation("B1", "14:00", 180, domain.StatusCancelled),
	}

	outcome, err := CheckFixedUnit("B1", types.TimeString("14:00"), 180, existing)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFree, outcome)
}

func TestGroupUnitsAndHasGroup(t *testing.T) {
	existing := []*domain.Reservation{
		poolReservation("10:00", "short", 2, domain.StatusConfirmed),
		poolReservation("10:00", "short", 1, domain.StatusPending),
		poolReservation("10:00", "short", 4, domain.StatusCancelled),
		poolReservation("10:00", "long", 1, domain.StatusConfirmed),
	}

	assert.Equal(t, 3, GroupUnits(existing, types.TimeString("10:00"), "short"))
	assert.True(t, HasGroup(existing, types.TimeString("10:00"), "short"))
	assert.False(t, HasGroup(existing, types.TimeString("11:00"), "short"))
}
