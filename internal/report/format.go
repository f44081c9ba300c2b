package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/branch-digest/internal/branch"
	"github.com/noah-isme/branch-digest/internal/kpi"
)

type digestRow struct {
	qty, amt, trans string
	metrics         kpi.Metrics
}

// Format renders the multi-branch digest message. Only the entered branch is populated;
// every other registered branch shows empty figures and placeholder metrics. Raw figures
// echo the text the user typed when the input carries it.
func Format(b branch.Branch, at time.Time, in Input, m kpi.Metrics) string {
	branches := branch.All()
	rows := make(map[branch.Branch]digestRow, len(branches))
	for _, br := range branches {
		rows[br] = digestRow{metrics: kpi.Empty()}
	}
	rows[b] = digestRow{
		qty:     textOr(in.Text.Qty, strconv.FormatInt(in.Qty, 10)),
		amt:     textOr(in.Text.Amount, in.Amount.String()),
		trans:   textOr(in.Text.Transactions, strconv.FormatInt(in.Transactions, 10)),
		metrics: m,
	}

	blocks := make([]string, 0, 1+2*len(branches))
	blocks = append(blocks, fmt.Sprintf("*%s*", DigestDate(at)))
	for _, br := range branches {
		row := rows[br]
		blocks = append(blocks, strings.Join([]string{
			"*" + br.SalesHeading() + "*",
			line("Qty", row.qty),
			line("Amt", row.amt),
			line("Trans", row.trans),
		}, "\n"))
	}
	for _, br := range branches {
		row := rows[br]
		blocks = append(blocks, strings.Join([]string{
			"*" + br.MetricsHeading() + "*",
			line("ATV", row.metrics.ATV),
			line("Upt", row.metrics.UPT),
			line("Arp", row.metrics.ARP),
		}, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func textOr(typed, fallback string) string {
	if typed != "" {
		return typed
	}
	return fallback
}

func line(label, value string) string {
	if value == "" {
		return label + ":"
	}
	return label + ": " + value
}

// DigestDate formats t as day-month-year without leading zeros, e.g. "5-3-2024".
func DigestDate(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Day(), int(t.Month()), t.Year())
}

// Message re-renders the digest for a stored report in the given location.
func (r Report) Message(loc *time.Location) string {
	at := r.Date
	if loc != nil {
		at = at.In(loc)
	}
	return Format(r.Branch, at, r.Input(), r.Metrics())
}
