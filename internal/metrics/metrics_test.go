package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilCollectorsAreNoop(t *testing.T) {
	var c *Collectors
	assert.NotPanics(t, func() {
		c.ClockEvent("clock_in", "ok")
		c.PayrollCreated("PENDING", 10)
		c.HTTPRequest("GET", 200, time.Millisecond)
	})
}

func TestCollectorsCount(t *testing.T) {
	c := New(prometheus.NewRegistry())
	c.ClockEvent("clock_in", "ok")
	c.ClockEvent("clock_in", "ok")
	c.ClockEvent("clock_out", "rejected")
	c.PayrollCreated("PENDING", 5100)
	c.HTTPRequest("POST", 409, 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.clockEvents.WithLabelValues("clock_in", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.clockEvents.WithLabelValues("clock_out", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.payrollsCreated.WithLabelValues("PENDING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("POST", "409")))
}
