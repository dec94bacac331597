package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/visit-planner/internal/discount"
	"github.com/iliyamo/visit-planner/internal/repository"
)

// DiscountHandler serves the promotional programs of a venue.
type DiscountHandler struct {
	Venues   VenueStore
	Profiles ProfileStore
	Catalog  *discount.Catalog
	Resolver *discount.Resolver
	Now      func() time.Time
}

// GetDiscounts handles GET /v1/venues/:id/discounts. It evaluates the
// venue's programs for the caller at the current instant. A venue with no
// catalog entry has no rows.
func (h *DiscountHandler) GetDiscounts(c echo.Context) error {
	ctx := c.Request().Context()
	venue, err := h.Venues.GetByID(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrVenueNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
	}
	if err != nil {
		return internalError(c, "get venue", err)
	}
	items, home := queryTraveler(c)
	who, err := resolveTraveler(c, h.Profiles, items, home)
	if err != nil {
		return internalError(c, "load profile", err)
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	programs, _ := h.Catalog.ForVenue(venue.ID)
	return c.JSON(http.StatusOK, h.Resolver.Resolve(venue, programs, who.Profile, now))
}
