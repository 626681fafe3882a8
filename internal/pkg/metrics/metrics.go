package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fundgate_transactions_total",
		Help: "The total number of fund transactions processed",
	}, []string{"op", "status"})

	RejectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fundgate_rejects_total",
		Help: "Total business-rule rejections",
	}, []string{"op"})

	FundNotional = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fundgate_fund_notional",
		Help: "Last computed total fund notional in quote units",
	})

	SharesOutstanding = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fundgate_shares_outstanding",
		Help: "Total LP shares outstanding",
	})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fundgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
