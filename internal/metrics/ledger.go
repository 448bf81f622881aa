package metrics

import "github.com/prometheus/client_golang/prometheus"

// Consumption outcomes used as the "outcome" label of LedgerConsumptionsTotal.
const (
	OutcomeAccepted      = "accepted"
	OutcomeQuotaExceeded = "quota_exceeded"
	OutcomeUnknownToken  = "unknown_token"
	OutcomeInvalid       = "invalid"
)

// Ledger Prometheus metrics.
var (
	LedgerTokensIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "justext",
			Name:      "ledger_tokens_issued_total",
			Help:      "Total number of usage tokens issued",
		},
	)

	LedgerConsumptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "justext",
			Name:      "ledger_consumptions_total",
			Help:      "Word consumption attempts by outcome",
		},
		[]string{"outcome"},
	)

	LedgerWordsConsumedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "justext",
			Name:      "ledger_words_consumed_total",
			Help:      "Total words charged against token quotas",
		},
	)

	LedgerTokens = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "justext",
			Name:      "ledger_tokens",
			Help:      "Number of tokens held by the ledger",
		},
	)

	UsageStoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "justext",
			Name:      "usage_store_errors_total",
			Help:      "Failed write-behind operations against the usage store",
		},
		[]string{"op"},
	)
)

var ledgerMetricsRegistered bool

// RegisterLedgerMetrics registers Prometheus ledger metrics. Must be called once from main.
func RegisterLedgerMetrics() {
	if ledgerMetricsRegistered {
		return
	}
	prometheus.MustRegister(LedgerTokensIssuedTotal)
	prometheus.MustRegister(LedgerConsumptionsTotal)
	prometheus.MustRegister(LedgerWordsConsumedTotal)
	prometheus.MustRegister(LedgerTokens)
	prometheus.MustRegister(UsageStoreErrorsTotal)
	ledgerMetricsRegistered = true
}
