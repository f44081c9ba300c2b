package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// ReportsSubmittedTotal counts digest submissions by branch and save outcome.
	ReportsSubmittedTotal *prometheus.CounterVec
	// HistoryReadFailuresTotal counts history reads that fell back to an empty list.
	HistoryReadFailuresTotal *prometheus.CounterVec
	// HistoryClearsTotal counts full-history clears.
	HistoryClearsTotal prometheus.Counter
	// HistoryExportsTotal counts spreadsheet exports of the history projection.
	HistoryExportsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ReportsSubmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Count of digest submissions by branch and save result.",
		}, []string{"branch", "result"})
		HistoryReadFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_read_failures_total",
			Help:      "Count of history reads treated as empty because of a failure.",
		}, []string{"reason"})
		HistoryClearsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_clears_total",
			Help:      "Number of full history clears.",
		})
		HistoryExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_exports_total",
			Help:      "Count of history spreadsheet exports by outcome.",
		}, []string{"result"})

		mustRegisterCollector(reg, ReportsSubmittedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ReportsSubmittedTotal = v
			}
		})
		mustRegisterCollector(reg, HistoryReadFailuresTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				HistoryReadFailuresTotal = v
			}
		})
		mustRegisterCollector(reg, HistoryClearsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				HistoryClearsTotal = v
			}
		})
		mustRegisterCollector(reg, HistoryExportsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				HistoryExportsTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}

// ObserveReportSubmitted records a submission outcome. It is a no-op before registration.
func ObserveReportSubmitted(branch, result string) {
	if ReportsSubmittedTotal != nil {
		ReportsSubmittedTotal.WithLabelValues(branch, result).Inc()
	}
}

// ObserveHistoryReadFailure records a history read that fell back to an empty list.
func ObserveHistoryReadFailure(reason string) {
	if HistoryReadFailuresTotal != nil {
		HistoryReadFailuresTotal.WithLabelValues(reason).Inc()
	}
}

// ObserveHistoryCleared records a full history clear.
func ObserveHistoryCleared() {
	if HistoryClearsTotal != nil {
		HistoryClearsTotal.Inc()
	}
}

// ObserveHistoryExport records a spreadsheet export outcome.
func ObserveHistoryExport(result string) {
	if HistoryExportsTotal != nil {
		HistoryExportsTotal.WithLabelValues(result).Inc()
	}
}
