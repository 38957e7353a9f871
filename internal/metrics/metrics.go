package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "market_orders_completed_total",
			Help: "Orders confirmed and credited to seller wallets",
		},
	)
	ConfirmationsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "market_payment_confirmations_failed_total",
			Help: "Payment confirmations aborted by a transaction error",
		},
	)
	LedgerEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_wallet_transactions_total",
			Help: "Wallet ledger entries written",
		},
		[]string{"type", "source"},
	)

	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(OrdersCompleted)
	prometheus.MustRegister(ConfirmationsFailed)
	prometheus.MustRegister(LedgerEntries)
	prometheus.MustRegister(HTTPLatency)
}
