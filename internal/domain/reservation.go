package domain

import (
	"time"

	"github.com/lesnaya-zaimka/booking-service/pkg/types"
)

// ReservationStatus represents the lifecycle status of a reservation
type ReservationStatus string

const (
	StatusPending            ReservationStatus = "pending"
	StatusAwaitingPrepayment ReservationStatus = "awaiting_prepayment"
	StatusConfirmed          ReservationStatus = "confirmed"
	StatusCompleted          ReservationStatus = "completed"
	StatusCancelled          ReservationStatus = "cancelled"
	StatusExpired            ReservationStatus = "expired"
)

// statusTransitions is the single transition table used by every
// status-changing operation.
var statusTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:            {StatusAwaitingPrepayment, StatusConfirmed, StatusCancelled, StatusExpired},
	StatusAwaitingPrepayment: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:          {StatusCompleted, StatusCancelled},
	StatusCompleted:          {},
	StatusCancelled:          {},
	StatusExpired:            {},
}

// CanTransitionTo reports whether the transition s -> next is allowed.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is a final one.
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusExpired
}

// IsActive reports whether a reservation in this status still holds
// the resource. Completed reservations no longer do and are excluded
// from conflict checks.
func (s ReservationStatus) IsActive() bool {
	return s == StatusPending || s == StatusAwaitingPrepayment || s == StatusConfirmed
}

// IsValidStatus reports whether the string is a known status value.
func IsValidStatus(s string) bool {
	switch ReservationStatus(s) {
	case StatusPending, StatusAwaitingPrepayment, StatusConfirmed,
		StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// PriceSnapshot is the price computed at admission time and frozen on the
// reservation. It is never recomputed afterwards; staff corrections go
// through an explicit audited override.
type PriceSnapshot struct {
	UnitPrice       float64
	DiscountPercent int
	BaseTotal       float64
	DiscountAmount  float64
	Total           float64
}

// Reservation represents a guest reservation of a resort resource
type Reservation struct {
	ID              int64
	ResourceType    ResourceType
	Model           ResourceModel
	UnitID          *string // fixed-unit room id (e.g. "B1"), nil for shared pool
	Variant         *string // shared-pool activity variant code, nil for fixed unit
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Units           int // quads requested; always 1 for fixed-unit
	Status          ReservationStatus
	Price           PriceSnapshot

	CustomerName  string
	CustomerPhone string
	Comment       *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the reservation still holds the resource.
func (r *Reservation) IsActive() bool {
	return r.Status.IsActive()
}

// EndTime returns the nominal end of the reservation (without buffer).
func (r *Reservation) EndTime() (types.TimeString, error) {
	return r.StartTime.AddMinutes(r.DurationMinutes)
}

// BusyEnd returns the end of the effective busy window including the
// turnaround buffer.
func (r *Reservation) BusyEnd(bufferMinutes int) (types.TimeString, error) {
	return r.StartTime.AddMinutes(r.DurationMinutes + bufferMinutes)
}

// SameGroup reports whether the reservation belongs to the group defined by
// the exact (start, variant) pair. Only shared-pool reservations form groups.
func (r *Reservation) SameGroup(start types.TimeString, variant string) bool {
	if r.Model != ModelSharedPool || r.Variant == nil {
		return false
	}
	return r.StartTime == start && *r.Variant == variant
}

// ReservationsFilter фильтр для выборки бронирований
type ReservationsFilter struct {
	ResourceType    ResourceType // Обязательный параметр
	Date            *time.Time   // Фильтр по дате (опционально)
	UnitID          *string      // Фильтр по конкретному юниту (опционально)
	Status          *ReservationStatus
	Phone           *string // Фильтр по телефону гостя (опционально)
	IncludeInactive bool    // Включать ли отменённые/истёкшие/завершённые
}
