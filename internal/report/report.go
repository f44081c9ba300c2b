package report

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/branch-digest/internal/branch"
	"github.com/noah-isme/branch-digest/internal/kpi"
)

// Report is one persisted sales entry. Derived metrics are stored already formatted and
// are never recomputed after creation.
type Report struct {
	ID           string          `json:"id"`
	Branch       branch.Branch   `json:"branch"`
	Date         time.Time       `json:"date"`
	Qty          int64           `json:"qty"`
	Amount       decimal.Decimal `json:"amt"`
	Transactions int64           `json:"trans"`
	ATV          string          `json:"atv"`
	UPT          string          `json:"upt"`
	ARP          string          `json:"arp"`
}

// New builds the record for an entry created at the given instant. The identifier is the
// creation time in Unix milliseconds and is not guaranteed to be unique.
func New(b branch.Branch, at time.Time, in Input, m kpi.Metrics) Report {
	return Report{
		ID:           strconv.FormatInt(at.UnixMilli(), 10),
		Branch:       b,
		Date:         at.UTC(),
		Qty:          in.Qty,
		Amount:       in.Amount,
		Transactions: in.Transactions,
		ATV:          m.ATV,
		UPT:          m.UPT,
		ARP:          m.ARP,
	}
}

// Metrics returns the stored derived metrics.
func (r Report) Metrics() kpi.Metrics {
	return kpi.Metrics{ATV: r.ATV, UPT: r.UPT, ARP: r.ARP}
}

// Input returns the stored raw figures.
func (r Report) Input() Input {
	return Input{Qty: r.Qty, Amount: r.Amount, Transactions: r.Transactions}
}
