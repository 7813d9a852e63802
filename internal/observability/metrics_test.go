package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecordPollLabelsBySessionKind(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordPoll("vehicle:VH-001", nil, 20*time.Millisecond)
	m.RecordPoll("vehicle:VH-002", nil, 20*time.Millisecond)
	m.RecordPoll("vehicle:VH-002", errors.New("timeout"), time.Second)
	m.RecordPoll("dashboard", nil, time.Millisecond)
	m.RecordPoll("", nil, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PollsTotal.WithLabelValues("vehicle", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollsTotal.WithLabelValues("vehicle", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollsTotal.WithLabelValues("dashboard", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollsTotal.WithLabelValues("unknown", "success")))
}

func TestSubscriptionGauge(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.SubscriptionOpened()
	m.SubscriptionOpened()
	m.SubscriptionClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSubscriptions))

	m.RecordStatusChange("vehicle")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusChanges.WithLabelValues("vehicle")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "NOT_FOUND")
		m.RecordPoll("dashboard", nil, time.Millisecond)
		m.SubscriptionOpened()
		m.SubscriptionClosed()
		m.RecordStatusChange("trip")
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 503, rec.Code)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RecordPoll("trip:TRP-000001", nil, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `realtime_polls_total{outcome="success",session="trip"} 1`)
}

func TestRequestLoggerRecordsRoutePattern(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/vehicles/:id", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTeapot).SendString("short and stout")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/vehicles/VH-001", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(body), "short"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/vehicles/:id", "418")))
}
