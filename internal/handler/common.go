// Package handler exposes the HTTP handlers of the planning API. Handlers
// depend on the small store interfaces below so tests can swap MySQL out.
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
	"github.com/iliyamo/visit-planner/internal/middleware"
	"github.com/iliyamo/visit-planner/internal/model"
	"github.com/iliyamo/visit-planner/internal/queue"
	"github.com/iliyamo/visit-planner/internal/repository"
)

// VenueStore loads venues. *repository.VenueRepo implements it.
type VenueStore interface {
	GetByID(ctx context.Context, id string) (model.Venue, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Venue, []string, error)
}

// RuleStore loads ticket rule entries. *repository.TicketRuleRepo implements it.
type RuleStore interface {
	MapByVenueIDs(ctx context.Context, ids []string) (map[string]model.TicketRuleEntry, error)
}

// ProfileStore loads saved traveler profiles. *repository.ProfileRepo implements it.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID uint64) (repository.StoredProfile, error)
}

// PlanPublisher announces generated plans.
type PlanPublisher interface {
	PublishPlanGenerated(ctx context.Context, ev queue.PlanGeneratedEvent) error
}

// traveler is the identity a request is priced for.
type traveler struct {
	UserID  uint64
	Profile model.Profile
	Home    model.Location
}

// resolveTraveler merges what the request carries with the caller's saved
// profile. Explicit items and home win; the saved profile fills whatever
// the request leaves out. Anonymous callers get only what they send.
func resolveTraveler(c echo.Context, profiles ProfileStore, items []model.EligibilityItem, home *model.Location) (traveler, error) {
	t := traveler{Profile: model.NewProfile(items)}
	if home != nil {
		t.Home = *home
	}
	uid, ok := middleware.UserID(c)
	if !ok {
		return t, nil
	}
	t.UserID = uid
	if items != nil && home != nil {
		return t, nil
	}
	sp, err := profiles.GetByUserID(c.Request().Context(), uid)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return t, nil
	}
	if err != nil {
		return traveler{}, err
	}
	if items == nil {
		t.Profile = sp.Profile
	}
	if home == nil {
		t.Home = sp.Home
	}
	return t, nil
}

// queryTraveler reads eligibility from query parameters: types is a comma
// list of eligibility types, dob feeds age_based, and home_city,
// home_region, home_country set the home location. Absent parameters yield
// nil so the saved profile can fill in.
func queryTraveler(c echo.Context) ([]model.EligibilityItem, *model.Location) {
	var items []model.EligibilityItem
	if raw := strings.TrimSpace(c.QueryParam("types")); raw != "" {
		items = []model.EligibilityItem{}
		for _, t := range strings.Split(raw, ",") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			it := model.EligibilityItem{Type: model.EligibilityType(t)}
			if it.Type == model.EligibilityAgeBased {
				it.Details.DateOfBirth = c.QueryParam("dob")
			}
			items = append(items, it)
		}
	}
	var home *model.Location
	city, region, country := c.QueryParam("home_city"), c.QueryParam("home_region"), c.QueryParam("home_country")
	if city != "" || region != "" || country != "" {
		home = &model.Location{City: city, Region: region, Country: country}
	}
	return items, home
}

// today returns the current civil date in loc.
func today(now func() time.Time, loc *time.Location) time.Time {
	return calendar.Day(now().In(loc))
}

func internalError(c echo.Context, where string, err error) error {
	log.Printf("handler: %s: %v", where, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
