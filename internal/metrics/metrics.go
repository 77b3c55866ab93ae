package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors groups the application's prometheus metrics. A nil *Collectors is a no-op.
type Collectors struct {
	clockEvents     *prometheus.CounterVec
	payrollsCreated *prometheus.CounterVec
	payrollNet      prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		clockEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "clock_events_total",
			Help:      "Clock-in/clock-out attempts by event and outcome.",
		}, []string{"event", "outcome"}),
		payrollsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "payrolls_created_total",
			Help:      "Payment records created by status.",
		}, []string{"status"}),
		payrollNet: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "workforce",
			Name:      "payroll_net_amount",
			Help:      "Net amount of created payment records.",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 12),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "workforce",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(c.clockEvents, c.payrollsCreated, c.payrollNet, c.httpRequests, c.httpDuration)
	return c
}

func (c *Collectors) ClockEvent(event, outcome string) {
	if c == nil {
		return
	}
	c.clockEvents.WithLabelValues(event, outcome).Inc()
}

func (c *Collectors) PayrollCreated(status string, net float64) {
	if c == nil {
		return
	}
	c.payrollsCreated.WithLabelValues(status).Inc()
	c.payrollNet.Observe(net)
}

func (c *Collectors) HTTPRequest(method string, code int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	c.httpDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
