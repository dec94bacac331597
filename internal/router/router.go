package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/visit-planner/internal/handler"
	"github.com/iliyamo/visit-planner/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the planning endpoints under /v1. Every route runs
// the optional JWT middleware first, so the rate limiter can key on the
// caller, then the limiter itself. Anonymous callers are served; a bearer
// token only adds the caller's saved profile.
func RegisterAPI(e *echo.Echo, p *handler.PlanHandler, d *handler.DiscountHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	v1 := e.Group("/v1")
	v1.Use(middleware.OptionalJWT(jwtSecret))
	if limiter != nil {
		v1.Use(limiter)
	}
	v1.POST("/plans", p.CreatePlan)
	v1.GET("/venues/:id/price", p.GetPrice)
	v1.GET("/venues/:id/discounts", d.GetDiscounts)
}
