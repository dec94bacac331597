package planner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/visit-planner/internal/geo"
	"github.com/iliyamo/visit-planner/internal/model"
)

func distance(a, b model.Venue) float64 { return geo.Distance(a.Lat, a.Lng, b.Lat, b.Lng) }

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testVenues() []model.Venue {
	return []model.Venue{
		{ID: "met", Name: "Art Museum", Lat: 40.7794, Lng: -73.9632, Hours: map[string]string{"daily": "10:00-17:00", "wednesday": "closed"}},
		{ID: "gug", Name: "Spiral Museum", Lat: 40.7830, Lng: -73.9590, Hours: map[string]string{"daily": "11am-6pm"}, VisitMinutes: 90},
		{ID: "moma", Name: "Modern Museum", Lat: 40.7614, Lng: -73.9776, Hours: map[string]string{"daily": "10:30-17:30"}},
		{ID: "nhm", Name: "History Museum", Lat: 40.7813, Lng: -73.9740},
	}
}

func testRules(t *testing.T) map[string]model.TicketRuleEntry {
	t.Helper()
	freeFri, err := model.NewFreeRule("free-friday-evening", nil, &model.DateConstraint{DaysOfWeek: []int{5}}, "Free Friday")
	require.NoError(t, err)
	student, err := model.NewDiscountRule("student", 800, &model.RuleEligibility{IsStudent: true}, nil, "Student rate")
	require.NoError(t, err)
	return map[string]model.TicketRuleEntry{
		"met":  {VenueID: "met", Currency: "USD", BasePriceCents: 3000, PricingNotes: "Suggested admission for NY residents", Rules: []model.TicketRule{student}},
		"gug":  {VenueID: "gug", Currency: "USD", BasePriceCents: 3000},
		"moma": {VenueID: "moma", Currency: "USD", BasePriceCents: 3000, Rules: []model.TicketRule{freeFri, student}},
	}
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	g := NewGenerator(nil, Options{MaxDays: 5})
	ctx := context.Background()

	_, err := g.Generate(ctx, Request{Mode: "fastest", Start: date("2026-10-19"), End: date("2026-10-20")})
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = g.Generate(ctx, Request{Mode: ModeMoney, Start: date("2026-10-20"), End: date("2026-10-19")})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = g.Generate(ctx, Request{Mode: ModeTime, Start: date("2026-10-19"), End: date("2026-10-24")})
	assert.ErrorIs(t, err, ErrRangeTooLong)
}

func TestGenerateMoneyMode(t *testing.T) {
	g := NewGenerator(nil, Options{Workers: 2})
	profile := model.NewProfile([]model.EligibilityItem{{Type: model.EligibilityStudent}})

	// Mon 19 .. Fri 23 October 2026.
	plan, err := g.Generate(context.Background(), Request{
		Venues:  append(testVenues(), testVenues()[0]),
		Rules:   testRules(t),
		Profile: profile,
		Mode:    ModeMoney,
		Start:   date("2026-10-19"),
		End:     date("2026-10-23"),
	})
	require.NoError(t, err)

	require.Len(t, plan.Itinerary, 5)
	assert.Equal(t, "2026-10-19", plan.StartDate)
	assert.Equal(t, "2026-10-23", plan.EndDate)
	assert.NotEmpty(t, plan.ID)

	byVenue := map[string]string{}
	for _, day := range plan.Itinerary {
		assert.LessOrEqual(t, len(day.Visits), MaxVisitsPerDay)
		for _, v := range day.Visits {
			assert.True(t, v.Open)
			_, dup := byVenue[v.VenueID]
			assert.False(t, dup, v.VenueID)
			byVenue[v.VenueID] = day.Date
		}
	}
	// moma is free on Friday and ranks first, but fills the empty Monday.
	assert.Equal(t, "2026-10-19", byVenue["moma"])
	assert.Len(t, byVenue, 4)
	assert.Empty(t, plan.Unscheduled)

	require.Len(t, plan.TicketPlan, 4)
	items := map[string]model.TicketPlanItem{}
	for _, it := range plan.TicketPlan {
		items[it.VenueID] = it
	}
	assert.True(t, items["nhm"].Unavailable)
	assert.Nil(t, items["nhm"].Price.PriceCents)
	assert.False(t, items["met"].Unavailable)
	assert.Equal(t, "Suggested admission for NY residents", items["met"].PricingNotes)
	assert.Equal(t, int64(2200), items["met"].Price.Cents())
	assert.Equal(t, 90, findVisit(plan, "gug").SuggestedMinutes)
	assert.Equal(t, DefaultVisitMinutes, findVisit(plan, "met").SuggestedMinutes)
}

func TestGenerateTimeModeSkipsClosedDays(t *testing.T) {
	g := NewGenerator(nil, Options{})

	// Wednesday 21 October 2026: met is closed.
	plan, err := g.Generate(context.Background(), Request{
		Venues: testVenues()[:1],
		Rules:  testRules(t),
		Mode:   ModeTime,
		Start:  date("2026-10-21"),
		End:    date("2026-10-22"),
	})
	require.NoError(t, err)

	require.Len(t, plan.Itinerary, 2)
	assert.Empty(t, plan.Itinerary[0].Visits)
	require.Len(t, plan.Itinerary[1].Visits, 1)
	assert.Equal(t, "met", plan.Itinerary[1].Visits[0].VenueID)
	assert.Equal(t, int64(3000), plan.TotalCents)
}

func TestGenerateReportsUnscheduledVenues(t *testing.T) {
	g := NewGenerator(nil, Options{})

	plan, err := g.Generate(context.Background(), Request{
		Venues: testVenues(),
		Rules:  testRules(t),
		Mode:   ModeTime,
		Start:  date("2026-10-19"),
		End:    date("2026-10-19"),
	})
	require.NoError(t, err)

	require.Len(t, plan.Itinerary, 1)
	assert.Len(t, plan.Itinerary[0].Visits, 2)
	assert.Len(t, plan.Unscheduled, 2)
	assert.Len(t, plan.TicketPlan, 2)
}

func TestGenerateIsIndependentOfWorkerCount(t *testing.T) {
	req := Request{
		Venues: testVenues(),
		Rules:  testRules(t),
		Mode:   ModeMoney,
		Start:  date("2026-10-19"),
		End:    date("2026-10-31"),
	}
	one, err := NewGenerator(nil, Options{Workers: 1}).Generate(context.Background(), req)
	require.NoError(t, err)
	many, err := NewGenerator(nil, Options{Workers: 8}).Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, one.Itinerary, many.Itinerary)
	assert.Equal(t, one.TicketPlan, many.TicketPlan)
}

func TestGenerateStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(nil, Options{}).Generate(ctx, Request{
		Venues: testVenues(),
		Mode:   ModeMoney,
		Start:  date("2026-10-19"),
		End:    date("2026-10-20"),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func findVisit(p *Plan, venueID string) model.Visit {
	for _, day := range p.Itinerary {
		for _, v := range day.Visits {
			if v.VenueID == venueID {
				return v
			}
		}
	}
	return model.Visit{}
}
