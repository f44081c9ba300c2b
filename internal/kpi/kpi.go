package kpi

import "github.com/shopspring/decimal"

// Placeholder is rendered in place of a ratio whose divisor is zero.
const Placeholder = "-"

// Metrics holds the derived ratios of a sales entry, already formatted for display.
type Metrics struct {
	// ATV is the average transaction value: amount / transactions.
	ATV string `json:"atv"`
	// UPT is units per transaction: quantity / transactions.
	UPT string `json:"upt"`
	// ARP is the average retail price: amount / quantity.
	ARP string `json:"arp"`
}

// Empty returns metrics with every ratio set to the placeholder.
func Empty() Metrics {
	return Metrics{ATV: Placeholder, UPT: Placeholder, ARP: Placeholder}
}

// Compute derives ATV, UPT and ARP. Inputs must already be validated as non-negative.
func Compute(qty int64, amt decimal.Decimal, trans int64) Metrics {
	m := Empty()
	if trans > 0 {
		divisor := decimal.NewFromInt(trans)
		m.ATV = FormatRatio(amt.Div(divisor))
		m.UPT = FormatRatio(decimal.NewFromInt(qty).Div(divisor))
	}
	if qty > 0 {
		m.ARP = FormatRatio(amt.Div(decimal.NewFromInt(qty)))
	}
	return m
}

// FormatRatio rounds to two decimal places and prints the shortest exact representation,
// so 12.50 becomes "12.5" and 12.00 becomes "12".
func FormatRatio(v decimal.Decimal) string {
	return v.Round(2).String()
}
