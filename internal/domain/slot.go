package domain

import "github.com/lesnaya-zaimka/booking-service/pkg/types"

// SlotState is the availability state of a candidate slot
type SlotState string

const (
	SlotOpen       SlotState = "open"        // full capacity free
	SlotJoinable   SlotState = "joinable"    // existing group with spare capacity
	SlotFull       SlotState = "full"        // at capacity
	SlotBlocked    SlotState = "blocked"     // blackout interval
	SlotPastCutoff SlotState = "past_cutoff" // violates same-day advance notice
)

// Slot is a candidate start time annotated with availability for guests
type Slot struct {
	StartTime       types.TimeString
	Variant         *string // shared-pool variant code
	UnitID          *string // fixed-unit id
	DurationMinutes int
	State           SlotState
	UnitPrice       float64
	// DiscountedUnitPrice is set for joinable slots and includes the
	// group-join discount.
	DiscountedUnitPrice *float64
	AvailableCapacity   int
	TotalCapacity       int
	// OffGrid marks synthetic entries produced for staff-created
	// reservations whose start time is outside the canonical grid.
	OffGrid bool
}

// Bookable reports whether a guest can submit a reservation for the slot.
func (s *Slot) Bookable() bool {
	return s.State == SlotOpen || s.State == SlotJoinable
}

// IsFull reports whether the slot has no remaining capacity.
func (s *Slot) IsFull() bool {
	return s.AvailableCapacity <= 0
}
