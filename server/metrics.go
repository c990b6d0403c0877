package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	saves    *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "area_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "area_http_request_duration_seconds",
				Help: "Duration of HTTP requests",
			},
			[]string{"method", "route"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "area_saves_total",
				Help: "Total number of areas saved",
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.saves)
	return m
}

func (m *metrics) observe(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}
