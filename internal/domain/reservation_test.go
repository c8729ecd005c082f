package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lesnaya-zaimka/booking-service/pkg/types"
)

func TestReservationStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    ReservationStatus
		to      ReservationStatus
		allowed bool
	}{
		{"pending to awaiting_prepayment", StatusPending, StatusAwaitingPrepayment, true},
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to expired", StatusPending, StatusExpired, true},
		{"awaiting_prepayment to confirmed", StatusAwaitingPrepayment, StatusConfirmed, true},
		{"awaiting_prepayment to cancelled", StatusAwaitingPrepayment, StatusCancelled, true},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"pending to completed is forbidden", StatusPending, StatusCompleted, false},
		{"awaiting_prepayment to expired is forbidden", StatusAwaitingPrepayment, StatusExpired, false},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"expired is terminal", StatusExpired, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestReservationStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusAwaitingPrepayment.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
}

func TestReservationStatus_IsActive(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusAwaitingPrepayment.IsActive())
	assert.True(t, StatusConfirmed.IsActive())

	// Завершённое бронирование ресурс не удерживает
	assert.False(t, StatusCompleted.IsActive())
	assert.False(t, StatusCancelled.IsActive())
	assert.False(t, StatusExpired.IsActive())
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus("pending"))
	assert.True(t, IsValidStatus("confirmed"))
	assert.False(t, IsValidStatus("paid"))
	assert.False(t, IsValidStatus(""))
}

func TestReservation_BusyEnd(t *testing.T) {
	res := &Reservation{
		StartTime:       types.TimeString("10:00"),
		DurationMinutes: 60,
	}

	end, err := res.EndTime()
	assert.NoError(t, err)
	assert.Equal(t, types.TimeString("11:00"), end)

	busyEnd, err := res.BusyEnd(30)
	assert.NoError(t, err)
	assert.Equal(t, types.TimeString("11:30"), busyEnd)
}

func TestReservation_SameGroup(t *testing.T) {
	variant := "short"
	res := &Reservation{
		Model:     ModelSharedPool,
		Variant:   &variant,
		StartTime: types.TimeString("10:00"),
	}

	assert.True(t, res.SameGroup(types.TimeString("10:00"), "short"))

	// Другой вариант на тот же старт — не группа
	assert.False(t, res.SameGroup(types.TimeString("10:00"), "long"))

	// Другой старт — не группа
	assert.False(t, res.SameGroup(types.TimeString("10:30"), "short"))

	// Fixed-unit бронирования групп не образуют
	unitID := "B1"
	fixed := &Reservation{
		Model:     ModelFixedUnit,
		UnitID:    &unitID,
		StartTime: types.TimeString("10:00"),
	}
	assert.False(t, fixed.SameGroup(types.TimeString("10:00"), "short"))
}
