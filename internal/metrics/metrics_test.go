package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_ServesRuntimeCollectors(t *testing.T) {
	reg := NewRegistry()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAllCollectorsRegisterOnOneRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	assert.NotPanics(t, func() {
		NewPollMetrics(reg)
		NewHTTPMetrics(reg)
		NewInteractionMetrics(reg)
	})
}

func TestPollMetrics_Observe(t *testing.T) {
	m := NewPollMetrics(prometheus.NewRegistry())

	m.Observe(PollSuccess, 120*time.Millisecond)
	m.Observe(PollSuccess, 80*time.Millisecond)
	m.Observe(PollFailure, time.Second)
	m.Stale()
	m.SetPlayers(42)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PollsTotal.WithLabelValues(PollSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollsTotal.WithLabelValues(PollFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleResults))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.PlayersOnline))

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m.PollDuration))
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, uint64(3), families[0].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestNilReceiversAreNoOps(t *testing.T) {
	var p *PollMetrics
	var h *HTTPMetrics
	var i *InteractionMetrics

	assert.NotPanics(t, func() {
		p.Observe(PollSuccess, time.Second)
		p.SetPlayers(1)
		p.Stale()
		h.ObserveRateLimited()
		i.Toast()
		i.SecretUnlocked()
		i.SecretResolved("gofret")
		i.ClipboardCopy("primary")
		i.LinkOpened(true)
	})
}

func TestInteractionMetrics(t *testing.T) {
	m := NewInteractionMetrics(prometheus.NewRegistry())

	m.Toast()
	m.Toast()
	m.SecretUnlocked()
	m.SecretResolved("shady1545")
	m.ClipboardCopy("fallback")
	m.LinkOpened(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ToastsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SecretUnlocks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SecretResolutions.WithLabelValues("shady1545")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClipboardCopies.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinksOpened.WithLabelValues("failed")))
}

func TestHTTPMiddleware_RecordsRoute(t *testing.T) {
	m := NewHTTPMetrics(prometheus.NewRegistry())

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/stats", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", func(c echo.Context) error {
		return c.String(http.StatusOK, "metrics")
	})

	for _, path := range []string{"/api/stats", "/api/stats", "/metrics"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/stats", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestsTotal, "dragonsmp_http_requests_total"))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlightGauge))

	m.ObserveRateLimited()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited))
}

func TestMetricNamesUseNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPollMetrics(reg).Observe(PollSuccess, time.Millisecond)
	NewInteractionMetrics(reg).Toast()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		assert.True(t, strings.HasPrefix(f.GetName(), namespace+"_"), f.GetName())
	}
}

func TestHTTPMiddleware_ErrorStatus(t *testing.T) {
	m := NewHTTPMetrics(prometheus.NewRegistry())

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/boom", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/boom", "502")))
}
