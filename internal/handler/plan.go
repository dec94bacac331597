package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/visit-planner/internal/calendar"
	"github.com/iliyamo/visit-planner/internal/model"
	"github.com/iliyamo/visit-planner/internal/planner"
	"github.com/iliyamo/visit-planner/internal/pricing"
	"github.com/iliyamo/visit-planner/internal/queue"
	"github.com/iliyamo/visit-planner/internal/repository"
)

// publishTimeout bounds the background plan.generated publish.
const publishTimeout = 5 * time.Second

// PlanHandler serves trip planning and single-venue pricing.
type PlanHandler struct {
	Venues    VenueStore
	Rules     RuleStore
	Profiles  ProfileStore
	Publisher PlanPublisher // nil disables plan.generated events
	Generator *planner.Generator
	Location  *time.Location
	Now       func() time.Time
}

// PlanRequest is the body of POST /v1/plans.
type PlanRequest struct {
	VenueIDs    []string                `json:"venue_ids"`
	StartDate   string                  `json:"start_date"`
	EndDate     string                  `json:"end_date"`
	Mode        string                  `json:"mode"`
	Eligibility []model.EligibilityItem `json:"eligibility"`
	Home        *model.Location         `json:"home"`
}

// CreatePlan handles POST /v1/plans. Unknown venue ids fail the whole
// request with 404 and the list of missing ids.
func (h *PlanHandler) CreatePlan(c echo.Context) error {
	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	ids := make([]string, 0, len(req.VenueIDs))
	for _, id := range req.VenueIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "venue_ids is required"})
	}
	start, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	end, err := calendar.ParseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
	}
	mode := planner.Mode(strings.ToLower(strings.TrimSpace(req.Mode)))
	if mode == "" {
		mode = planner.ModeMoney
	}

	ctx := c.Request().Context()
	who, err := resolveTraveler(c, h.Profiles, req.Eligibility, req.Home)
	if err != nil {
		return internalError(c, "load profile", err)
	}
	venues, missing, err := h.Venues.ListByIDs(ctx, ids)
	if err != nil {
		return internalError(c, "list venues", err)
	}
	if len(missing) > 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown venues", "venue_ids": missing})
	}
	rules, err := h.Rules.MapByVenueIDs(ctx, ids)
	if err != nil {
		return internalError(c, "load ticket rules", err)
	}

	plan, err := h.Generator.Generate(ctx, planner.Request{
		Venues:  venues,
		Rules:   rules,
		Profile: who.Profile,
		Home:    who.Home,
		Start:   start,
		End:     end,
		Mode:    mode,
	})
	switch {
	case errors.Is(err, planner.ErrInvalidRange), errors.Is(err, planner.ErrRangeTooLong), errors.Is(err, planner.ErrUnknownMode):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "request cancelled"})
	case err != nil:
		return internalError(c, "generate plan", err)
	}

	h.publish(ctx, queue.NewPlanGeneratedEvent(plan, who.UserID, h.now()))
	return c.JSON(http.StatusOK, plan)
}

// publish sends ev in the background. Failures are logged by the publisher
// and never reach the caller.
func (h *PlanHandler) publish(ctx context.Context, ev queue.PlanGeneratedEvent) {
	if h.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	go func() {
		defer cancel()
		if err := h.Publisher.PublishPlanGenerated(ctx, ev); err != nil {
			log.Printf("handler: plan %s not published: %v", ev.PlanID, err)
		}
	}()
}

// GetPrice handles GET /v1/venues/:id/price. The date defaults to today in
// the planner's time zone.
func (h *PlanHandler) GetPrice(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	date := today(h.now, h.location())
	if raw := c.QueryParam("date"); raw != "" {
		d, err := calendar.ParseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		date = d
	}

	venue, err := h.Venues.GetByID(ctx, id)
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
	rules, err := h.Rules.MapByVenueIDs(ctx, []string{venue.ID})
	if err != nil {
		return internalError(c, "load ticket rules", err)
	}

	price := pricing.NewResolver(rules).Resolve(venue.ID, date, who.Profile, who.Home)
	return c.JSON(http.StatusOK, echo.Map{
		"venue_id": venue.ID,
		"date":     calendar.Format(date),
		"price":    price,
	})
}

func (h *PlanHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *PlanHandler) location() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.UTC
}
