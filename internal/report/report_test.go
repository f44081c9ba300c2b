package report_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/branch-digest/internal/branch"
	"github.com/noah-isme/branch-digest/internal/common"
	"github.com/noah-isme/branch-digest/internal/kpi"
	"github.com/noah-isme/branch-digest/internal/report"
)

func TestParseFormAcceptsValidEntry(t *testing.T) {
	in, err := report.ParseForm(report.Form{Qty: " 150 ", Amount: "12550.75", Transactions: "100"})
	require.NoError(t, err)
	require.Equal(t, int64(150), in.Qty)
	require.True(t, in.Amount.Equal(decimal.RequireFromString("12550.75")))
	require.Equal(t, int64(100), in.Transactions)
	require.Equal(t, report.Form{Qty: "150", Amount: "12550.75", Transactions: "100"}, in.Text)
}

func TestParseFormRejectsInvalidEntries(t *testing.T) {
	cases := []struct {
		name  string
		form  report.Form
		field string
	}{
		{"empty qty", report.Form{Qty: "", Amount: "1", Transactions: "1"}, "qty"},
		{"blank amount", report.Form{Qty: "1", Amount: "   ", Transactions: "1"}, "amt"},
		{"non numeric trans", report.Form{Qty: "1", Amount: "1", Transactions: "ten"}, "trans"},
		{"negative qty", report.Form{Qty: "-1", Amount: "1", Transactions: "1"}, "qty"},
		{"negative amount", report.Form{Qty: "1", Amount: "-0.5", Transactions: "1"}, "amt"},
		{"fractional trans", report.Form{Qty: "1", Amount: "1", Transactions: "1.5"}, "trans"},
		{"overflow qty", report.Form{Qty: "99999999999999999999", Amount: "1", Transactions: "1"}, "qty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := report.ParseForm(tc.form)
			require.Error(t, err)
			var appErr *common.AppError
			require.True(t, errors.As(err, &appErr))
			require.Equal(t, "VALIDATION_FAILED", appErr.Code)
			require.Equal(t, report.ValidationMessage, appErr.Message)
			fields, ok := appErr.Details.(map[string]string)
			require.True(t, ok)
			require.Contains(t, fields, tc.field)
		})
	}
}

func TestNewReport(t *testing.T) {
	loc := time.FixedZone("AST", 3*60*60)
	at := time.Date(2024, time.March, 5, 21, 30, 0, 0, loc)
	in := report.Input{Qty: 150, Amount: decimal.RequireFromString("12550.75"), Transactions: 100}
	m := kpi.Compute(in.Qty, in.Amount, in.Transactions)

	r := report.New(branch.Mecca, at, in, m)
	require.Equal(t, "1709663400000", r.ID)
	require.Equal(t, time.UTC, r.Date.Location())
	require.True(t, r.Date.Equal(at))
	require.Equal(t, branch.Mecca, r.Branch)
	require.Equal(t, m, r.Metrics())
	require.Equal(t, in, r.Input())
}

func TestReportJSON(t *testing.T) {
	at := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	in := report.Input{Qty: 3, Amount: decimal.RequireFromString("10.5"), Transactions: 2}
	r := report.New(branch.Galleria, at, in, kpi.Compute(3, in.Amount, 2))

	data, err := json.Marshal(r)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"1709629200000","branch":"Galleria Mall","date":"2024-03-05T09:00:00Z","qty":3,"amt":"10.5","trans":2,"atv":"5.25","upt":"1.5","arp":"3.5"}`, string(data))

	var back report.Report
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, r.ID, back.ID)
	require.True(t, r.Date.Equal(back.Date))
	require.True(t, r.Amount.Equal(back.Amount))
}

func TestReportJSONAcceptsNumericAmount(t *testing.T) {
	raw := `{"id":"1","branch":"Fashion Gate","date":"2024-01-02T10:11:12.345Z","qty":4,"amt":99.9,"trans":3,"atv":"33.3","upt":"1.33","arp":"24.98"}`
	var r report.Report
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	require.Equal(t, branch.FashionGate, r.Branch)
	require.True(t, r.Amount.Equal(decimal.RequireFromString("99.9")))
	require.Equal(t, 345*time.Millisecond, time.Duration(r.Date.Nanosecond()))
}
