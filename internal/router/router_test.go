package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/visit-planner/internal/config"
	"github.com/iliyamo/visit-planner/internal/handler"
	"github.com/iliyamo/visit-planner/internal/middleware"
)

func TestRoutesAreRegistered(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e)
	RegisterAPI(e, &handler.PlanHandler{}, &handler.DiscountHandler{}, "secret", nil)

	want := map[string]bool{
		"GET /healthz":                 false,
		"POST /v1/plans":               false,
		"GET /v1/venues/:id/price":     false,
		"GET /v1/venues/:id/discounts": false,
	}
	for _, r := range e.Routes() {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for route, found := range want {
		assert.True(t, found, route)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAPIRunsLimiterBeforeHandlers(t *testing.T) {
	e := echo.New()
	limiter := middleware.NewTokenBucket(config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            5 * time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
		LocalFallback:  true,
	}, nil)
	RegisterAPI(e, &handler.PlanHandler{}, &handler.DiscountHandler{}, "secret", limiter)

	// The first request spends the only token and fails validation in the
	// handler; the second never reaches it.
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/plans", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/plans", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
