package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	applogger "OmniTrade/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type denyAfter struct{ n int }

func (d *denyAfter) Allow(string) bool {
	d.n--
	return d.n >= 0
}

func TestRateLimitRejectsWith429(t *testing.T) {
	e := echo.New()
	e.POST("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RateLimit(&denyAfter{n: 1}))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRecoverTurnsPanicInto500(t *testing.T) {
	e := echo.New()
	e.Use(Recover(applogger.Nop()))
	e.GET("/boom", func(echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{AllowOrigins: []string{"http://dash.local"}, AllowMethods: []string{"GET", "POST"}, MaxAge: 600}))
	e.POST("/api/bots/:id/toggle", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/bots/1/toggle", nil)
	req.Header.Set("Origin", "http://dash.local")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://dash.local", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "600", rec.Header().Get(echo.HeaderAccessControlMaxAge))

	req = httptest.NewRequest(http.MethodOptions, "/api/bots/1/toggle", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := echo.New()
	e.Use(Metrics(reg, nil, 0))
	e.GET("/api/bots/:id", func(c echo.Context) error { return c.String(http.StatusOK, c.Param("id")) })

	for _, id := range []string{"1", "2", "3"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/bots/"+id, nil))
	}

	n, err := testutil.GatherAndCount(reg, "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "one series for the templated route")
}
