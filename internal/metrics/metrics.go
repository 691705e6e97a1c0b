package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	ItemsPurchased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameItemsPurchased,
			Help: HelpTextItemsPurchased,
		},
		[]string{LabelCategory},
	)

	CreditsSpent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCreditsSpent,
			Help: HelpTextCreditsSpent,
		},
	)

	CasesOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCasesOpened,
			Help: HelpTextCasesOpened,
		},
		[]string{LabelRarity, LabelDuplicate},
	)

	CompensationCredits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCompensationCredits,
			Help: HelpTextCompensationCredits,
		},
	)

	TradesSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTradesSettled,
			Help: HelpTextTradesSettled,
		},
		[]string{LabelStatus},
	)
)

// RecordPurchase records a settled purchase.
func RecordPurchase(category string, price int) {
	ItemsPurchased.WithLabelValues(category).Inc()
	CreditsSpent.Add(float64(price))
}

// RecordCaseOpen records a settled case resolution.
func RecordCaseOpen(rarity string, duplicate bool, compensation int64) {
	dup := "false"
	if duplicate {
		dup = "true"
	}
	CasesOpened.WithLabelValues(rarity, dup).Inc()
	if compensation > 0 {
		CompensationCredits.Add(float64(compensation))
	}
}

// RecordTradeSettled records a trade reaching a terminal state.
func RecordTradeSettled(status string) {
	TradesSettled.WithLabelValues(status).Inc()
}
