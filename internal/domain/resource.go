package domain

import "github.com/lesnaya-zaimka/booking-service/pkg/types"

// ResourceModel determines how capacity of a resource is accounted
type ResourceModel string

const (
	// ModelSharedPool is one exclusive time-resource (e.g. the safari
	// instructor) whose unit capacity can be split across reservations
	// starting at the identical time and variant.
	ModelSharedPool ResourceModel = "shared_pool"

	// ModelFixedUnit is an independent resource instance (e.g. a bath house)
	// with binary occupancy per interval.
	ModelFixedUnit ResourceModel = "fixed_unit"
)

// ResourceType identifies a bookable resource kind (e.g. "safari", "bath")
type ResourceType string

// Variant is an activity variant of a shared-pool resource, or the single
// tariff of a fixed-unit resource. The variant determines the duration and
// the default per-unit price.
type Variant struct {
	Code            string
	Name            string
	DurationMinutes int
	UnitPrice       float64
}

// Unit is a physical instance of a fixed-unit resource
type Unit struct {
	ID   string
	Name string
}

// ResourceConfig describes a bookable resource type of the resort
type ResourceConfig struct {
	Type  ResourceType
	Model ResourceModel
	Name  string

	OpenTime  types.TimeString
	CloseTime types.TimeString

	// SlotStepMinutes is the grid granularity for candidate start times
	SlotStepMinutes int

	// Capacity is the unit pool size for shared-pool resources
	// (e.g. 4 quads); ignored for fixed-unit resources.
	Capacity int

	// BufferMinutes is appended after a reservation's nominal end before
	// computing overlaps (resource turnaround).
	BufferMinutes int

	// MinNoticeMinutes is the minimum lead time for same-day reservations
	MinNoticeMinutes int

	// AdvanceBookingDays limits how far ahead a date may be booked; 0 = unlimited
	AdvanceBookingDays int

	// JoinDiscountPercent is applied to the per-unit price when a
	// reservation joins an existing group
	JoinDiscountPercent int

	// RequiresIdentity marks resource types whose guests are identity-verified;
	// the per-origin rate limit guard only applies when false.
	RequiresIdentity bool

	Variants []Variant
	Units    []Unit
}

// VariantByCode returns the variant with the given code.
func (c *ResourceConfig) VariantByCode(code string) (*Variant, bool) {
	for i := range c.Variants {
		if c.Variants[i].Code == code {
			return &c.Variants[i], true
		}
	}
	return nil, false
}

// UnitByID returns the fixed unit with the given id.
func (c *ResourceConfig) UnitByID(id string) (*Unit, bool) {
	for i := range c.Units {
		if c.Units[i].ID == id {
			return &c.Units[i], true
		}
	}
	return nil, false
}

// TotalCapacity returns the bookable capacity of one slot: the pool size for
// shared-pool resources, 1 for a fixed unit.
func (c *ResourceConfig) TotalCapacity() int {
	if c.Model == ModelFixedUnit {
		return 1
	}
	return c.Capacity
}

// Catalog is the resource catalog of the resort, keyed by resource type
type Catalog map[ResourceType]*ResourceConfig

// Get returns the config for the given resource type.
func (c Catalog) Get(t ResourceType) (*ResourceConfig, bool) {
	cfg, ok := c[t]
	return cfg, ok
}
