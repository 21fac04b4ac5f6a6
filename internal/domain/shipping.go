package domain

// ShippingMethod is a selectable delivery option.
type ShippingMethod struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Cost             int64  `json:"cost"`
	EstimatedDaysMin int    `json:"estimated_days_min"`
	EstimatedDaysMax int    `json:"estimated_days_max"`
	Active           bool   `json:"active"`
}

// ShippingQuote is the shipping cost applied to an order.
type ShippingQuote struct {
	MethodID         string `json:"method_id,omitempty"`
	Name             string `json:"name"`
	Cost             int64  `json:"cost"`
	EstimatedDaysMin int    `json:"estimated_days_min,omitempty"`
	EstimatedDaysMax int    `json:"estimated_days_max,omitempty"`
	Default          bool   `json:"default"`
}
