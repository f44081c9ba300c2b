package kpi_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/branch-digest/internal/kpi"
)

func TestComputeSample(t *testing.T) {
	m := kpi.Compute(150, decimal.RequireFromString("12550.75"), 100)
	require.Equal(t, kpi.Metrics{ATV: "125.51", UPT: "1.5", ARP: "83.67"}, m)
}

func TestComputeZeroTransactions(t *testing.T) {
	for _, qty := range []int64{0, 1, 250} {
		m := kpi.Compute(qty, decimal.RequireFromString("999.99"), 0)
		require.Equal(t, kpi.Placeholder, m.ATV)
		require.Equal(t, kpi.Placeholder, m.UPT)
	}
}

func TestComputeZeroQuantity(t *testing.T) {
	for _, trans := range []int64{0, 3, 40} {
		m := kpi.Compute(0, decimal.RequireFromString("120"), trans)
		require.Equal(t, kpi.Placeholder, m.ARP)
	}
	m := kpi.Compute(0, decimal.RequireFromString("120"), 3)
	require.Equal(t, "40", m.ATV)
	require.Equal(t, "0", m.UPT)
}

func TestComputeAllZero(t *testing.T) {
	require.Equal(t, kpi.Empty(), kpi.Compute(0, decimal.Zero, 0))
}

func TestFormatRatio(t *testing.T) {
	cases := map[string]string{
		"2.50":     "2.5",
		"2.00":     "2",
		"2.999":    "3",
		"12.5":     "12.5",
		"125.5075": "125.51",
		"0.004":    "0",
		"0.005":    "0.01",
		"1.234":    "1.23",
	}
	for in, want := range cases {
		require.Equal(t, want, kpi.FormatRatio(decimal.RequireFromString(in)), in)
	}
}
