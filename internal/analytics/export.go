package analytics

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/branch-digest/internal/branch"
	"github.com/noah-isme/branch-digest/internal/common"
	"github.com/noah-isme/branch-digest/internal/obs"
)

// ExportSheet is the worksheet name of exported workbooks.
const ExportSheet = "History"

var exportHeadings = []string{"Date", "Branch", "QTY", "AMT", "TRANS", "ATV", "UPT", "ARP"}

// WriteXLSX renders the projection as a workbook: one heading row, one row per report
// and a trailing totals row. Dates are shown in loc (UTC when nil).
func WriteXLSX(w io.Writer, p Projection, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, 1, toAny(exportHeadings)); err != nil {
		return err
	}
	for i, r := range p.Reports {
		row := []any{
			r.Date.In(loc).Format("2006-01-02 15:04"),
			string(r.Branch),
			r.Qty,
			r.Amount.InexactFloat64(),
			r.Transactions,
			r.ATV,
			r.UPT,
			r.ARP,
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}
	totals := []any{
		"Total",
		fmt.Sprintf("%d reports", p.Summary.TotalReports),
		"",
		p.Summary.TotalAmount.InexactFloat64(),
		p.Summary.TotalTransactions,
	}
	if err := setRow(f, len(p.Reports)+2, totals); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(ExportSheet, cell, &values); err != nil {
		return fmt.Errorf("set row %d: %w", row, err)
	}
	return nil
}

func (f Filter) slug() string {
	if f == FilterAll || f == "" {
		return string(FilterAll)
	}
	return branch.Branch(f).Slug()
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Export handles GET /api/v1/history/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return
	}
	filter, order, appErr := ParseQuery(r)
	if appErr != nil {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
		return
	}
	projection, err := h.Svc.History(r.Context(), filter, order)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_ERROR", err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=report-history-%s.xlsx", projection.Filter.slug()))
	if err := WriteXLSX(w, projection, h.Location); err != nil {
		obs.ObserveHistoryExport("error")
		h.Logger.Error().Err(err).Msg("history export failed")
		return
	}
	obs.ObserveHistoryExport("ok")
}
