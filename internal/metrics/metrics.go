package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"sync"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	HttpRequestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of handled HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	SlotBookingsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_slot_bookings_total",
			Help: "Total number of slot booking attempts by result.",
		},
		[]string{"result"},
	)
	StageTransitionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_stage_transitions_total",
			Help: "Total number of application stage transitions.",
		},
		[]string{"from", "to"},
	)
	RankingRecomputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portal_ranking_recompute_duration_seconds",
			Help:    "Duration of each phase ranking recomputation in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(HttpRequestsCounter)
		prometheus.MustRegister(HttpRequestDuration)
		prometheus.MustRegister(SlotBookingsCounter)
		prometheus.MustRegister(StageTransitionsCounter)
		prometheus.MustRegister(RankingRecomputeDuration)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
