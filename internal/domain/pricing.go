package domain

import "time"

// PriceOverride supersedes the catalog per-unit price of a resource type.
// Date-less overrides redefine the default price; date-specific ones win
// over both for their date.
type PriceOverride struct {
	ID           int64
	ResourceType ResourceType
	Variant      *string    // NULL = all variants of the resource type
	Date         *time.Time // NULL = default price
	UnitPrice    float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsDefault reports whether the override redefines the default price.
func (p *PriceOverride) IsDefault() bool {
	return p.Date == nil
}
