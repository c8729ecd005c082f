package override_price

// OverridePriceRequest HTTP request model
type OverridePriceRequest struct {
	UnitPrice float64 `json:"unitPrice"`
	Reason    string  `json:"reason"`
}
