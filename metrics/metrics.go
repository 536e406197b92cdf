package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BlogAPIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dailyread_blog_api_requests_total",
		Help: "Requests sent to the blog service, by operation and outcome.",
	}, []string{"op", "outcome"})

	BlogAPIDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dailyread_blog_api_request_duration_seconds",
		Help:    "Latency of requests sent to the blog service.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dailyread_query_cache_lookups_total",
		Help: "Query cache reads, by key scope and result.",
	}, []string{"scope", "result"})

	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dailyread_query_cache_invalidations_total",
		Help: "Query cache invalidations, by key scope.",
	}, []string{"scope"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dailyread_http_requests_total",
		Help: "HTTP requests served, by route and status code.",
	}, []string{"method", "route", "status"})

	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dailyread_ws_clients",
		Help: "Open websocket connections.",
	})
)
