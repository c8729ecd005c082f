package domain

import (
	"time"

	"github.com/lesnaya-zaimka/booking-service/pkg/types"
)

// BlackoutInterval represents staff-imposed unavailability of a resource
// for part of a day. Absent start/end times mean the entire day.
type BlackoutInterval struct {
	ID           int64
	ResourceType ResourceType
	Date         time.Time
	StartTime    *types.TimeString
	EndTime      *types.TimeString
	Reason       *string
	CreatedAt    time.Time
}

// CoversWholeDay reports whether the interval blocks the entire day.
func (b *BlackoutInterval) CoversWholeDay() bool {
	return b.StartTime == nil || b.EndTime == nil
}

// Overlaps reports whether the blackout overlaps the [start, end) interval.
// Boundary-touching intervals do not overlap.
func (b *BlackoutInterval) Overlaps(start, end types.TimeString) bool {
	if b.CoversWholeDay() {
		return true
	}
	return b.StartTime.IsBefore(end) && b.EndTime.IsAfter(start)
}

// BlackoutDate represents a date fully closed to all reservations of a
// resource type, with an optional reason surfaced to guests.
type BlackoutDate struct {
	ID           int64
	ResourceType ResourceType
	Date         time.Time
	Reason       *string
	CreatedAt    time.Time
}
