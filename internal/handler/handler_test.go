package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/visit-planner/internal/discount"
	"github.com/iliyamo/visit-planner/internal/middleware"
	"github.com/iliyamo/visit-planner/internal/model"
	"github.com/iliyamo/visit-planner/internal/planner"
	"github.com/iliyamo/visit-planner/internal/queue"
	"github.com/iliyamo/visit-planner/internal/repository"
)

const secret = "handler-test"

type fakeVenues map[string]model.Venue

func (f fakeVenues) GetByID(_ context.Context, id string) (model.Venue, error) {
	v, ok := f[id]
	if !ok {
		return model.Venue{}, repository.ErrVenueNotFound
	}
	return v, nil
}

func (f fakeVenues) ListByIDs(_ context.Context, ids []string) ([]model.Venue, []string, error) {
	var out []model.Venue
	var missing []string
	for _, id := range ids {
		if v, ok := f[id]; ok {
			out = append(out, v)
		} else {
			missing = append(missing, id)
		}
	}
	return out, missing, nil
}

type fakeRules map[string]model.TicketRuleEntry

func (f fakeRules) MapByVenueIDs(_ context.Context, ids []string) (map[string]model.TicketRuleEntry, error) {
	out := map[string]model.TicketRuleEntry{}
	for _, id := range ids {
		if e, ok := f[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

type fakeProfiles struct {
	byUser map[uint64]repository.StoredProfile
	err    error
}

func (f fakeProfiles) GetByUserID(_ context.Context, id uint64) (repository.StoredProfile, error) {
	if f.err != nil {
		return repository.StoredProfile{}, f.err
	}
	sp, ok := f.byUser[id]
	if !ok {
		return repository.StoredProfile{}, repository.ErrProfileNotFound
	}
	return sp, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.PlanGeneratedEvent
	done   chan struct{}
}

func (f *fakePublisher) PublishPlanGenerated(_ context.Context, ev queue.PlanGeneratedEvent) error {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

// fixedNow is Friday 2026-05-01 10:30 in New York.
var fixedNow = time.Date(2026, 5, 1, 14, 30, 0, 0, time.UTC)

func testRules(t *testing.T) fakeRules {
	t.Helper()
	freeFri, err := model.NewFreeRule("free-friday", model.Anyone, &model.DateConstraint{DaysOfWeek: []int{5}}, "Free Fridays")
	require.NoError(t, err)
	resident, err := model.NewFreeRule("ny-resident", &model.RuleEligibility{ResidentState: "NY"}, model.AnyDate, "NY residents")
	require.NoError(t, err)
	student, err := model.NewDiscountRule("student", 800, &model.RuleEligibility{IsStudent: true}, model.AnyDate, "Student rate")
	require.NoError(t, err)
	return fakeRules{
		"moma":       {VenueID: "moma", Currency: "USD", BasePriceCents: 3000, Rules: []model.TicketRule{freeFri, student}},
		"art-museum": {VenueID: "art-museum", Currency: "USD", BasePriceCents: 3000, Rules: []model.TicketRule{resident, student}},
	}
}

func newServer(t *testing.T, profiles fakeProfiles, pub PlanPublisher) *echo.Echo {
	t.Helper()
	venues := fakeVenues{
		"moma":       {ID: "moma", Name: "Modern Museum", Lat: 40.7614, Lng: -73.9776, Hours: map[string]string{"daily": "10:30-17:30"}},
		"art-museum": {ID: "art-museum", Name: "Art Museum", Lat: 40.7794, Lng: -73.9632, Hours: map[string]string{"daily": "10:00-17:00"}},
		"no-rules":   {ID: "no-rules", Name: "Small Gallery", Lat: 40.7, Lng: -73.9},
	}
	catalog, err := discount.LoadCatalog("")
	require.NoError(t, err)
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := func() time.Time { return fixedNow }

	ph := &PlanHandler{
		Venues:    venues,
		Rules:     testRules(t),
		Profiles:  profiles,
		Publisher: pub,
		Generator: planner.NewGenerator(nil, planner.Options{MaxDays: 7}),
		Location:  loc,
		Now:       now,
	}
	dh := &DiscountHandler{
		Venues:   venues,
		Profiles: profiles,
		Catalog:  catalog,
		Resolver: discount.NewResolver(loc),
		Now:      now,
	}
	e := echo.New()
	g := e.Group("/v1", middleware.OptionalJWT(secret))
	g.POST("/plans", ph.CreatePlan)
	g.GET("/venues/:id/price", ph.GetPrice)
	g.GET("/venues/:id/discounts", dh.GetDiscounts)
	return e
}

func token(t *testing.T, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func do(e *echo.Echo, method, target, body, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreatePlan(t *testing.T) {
	pub := &fakePublisher{done: make(chan struct{}, 1)}
	e := newServer(t, fakeProfiles{}, pub)

	rec := do(e, http.MethodPost, "/v1/plans",
		`{"venue_ids":["moma"],"start_date":"2026-05-01","end_date":"2026-05-02","mode":"money"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var plan planner.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	require.Len(t, plan.Itinerary, 2)
	require.Len(t, plan.Itinerary[0].Visits, 1)
	assert.Equal(t, "moma", plan.Itinerary[0].Visits[0].VenueID)
	assert.True(t, plan.Itinerary[0].Visits[0].Price.Free())
	assert.Empty(t, plan.Itinerary[1].Visits)
	require.Len(t, plan.TicketPlan, 1)
	assert.EqualValues(t, 0, plan.TotalCents)
	assert.EqualValues(t, 3000, plan.SavingsCents)

	select {
	case <-pub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("plan.generated was not published")
	}
	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.events, 1)
	assert.Equal(t, plan.ID, pub.events[0].PlanID)
	assert.Zero(t, pub.events[0].UserID)
	assert.Equal(t, 1, pub.events[0].ScheduledCount)
}

func TestCreatePlanUsesSavedProfile(t *testing.T) {
	profiles := fakeProfiles{byUser: map[uint64]repository.StoredProfile{
		5: {UserID: 5, Home: model.Location{City: "Brooklyn", Region: "NY", Country: "US"}},
	}}
	e := newServer(t, profiles, nil)
	body := `{"venue_ids":["art-museum"],"start_date":"2026-05-02","end_date":"2026-05-02","mode":"time"}`

	rec := do(e, http.MethodPost, "/v1/plans", body, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var anon planner.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &anon))
	assert.EqualValues(t, 3000, anon.TotalCents)

	rec = do(e, http.MethodPost, "/v1/plans", body, token(t, "5"))
	require.Equal(t, http.StatusOK, rec.Code)
	var resident planner.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resident))
	assert.EqualValues(t, 0, resident.TotalCents)

	// An explicit home in the body wins over the saved one.
	body = `{"venue_ids":["art-museum"],"start_date":"2026-05-02","end_date":"2026-05-02","mode":"time","home":{"city":"Boston","region":"MA","country":"US"}}`
	rec = do(e, http.MethodPost, "/v1/plans", body, token(t, "5"))
	require.Equal(t, http.StatusOK, rec.Code)
	var visitor planner.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &visitor))
	assert.EqualValues(t, 3000, visitor.TotalCents)
}

func TestCreatePlanErrors(t *testing.T) {
	e := newServer(t, fakeProfiles{}, nil)
	cases := []struct {
		name string
		body string
		code int
		want string
	}{
		{"bad json", `{`, http.StatusBadRequest, "invalid json"},
		{"no venues", `{"venue_ids":[],"start_date":"2026-05-01","end_date":"2026-05-02"}`, http.StatusBadRequest, "venue_ids"},
		{"bad start", `{"venue_ids":["moma"],"start_date":"05/01/2026","end_date":"2026-05-02"}`, http.StatusBadRequest, "start_date"},
		{"reversed", `{"venue_ids":["moma"],"start_date":"2026-05-03","end_date":"2026-05-01"}`, http.StatusBadRequest, "end date before start date"},
		{"too long", `{"venue_ids":["moma"],"start_date":"2026-05-01","end_date":"2026-05-31"}`, http.StatusBadRequest, "too long"},
		{"bad mode", `{"venue_ids":["moma"],"start_date":"2026-05-01","end_date":"2026-05-02","mode":"fast"}`, http.StatusBadRequest, "unknown planning mode"},
		{"unknown venue", `{"venue_ids":["moma","louvre"],"start_date":"2026-05-01","end_date":"2026-05-02"}`, http.StatusNotFound, "louvre"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/v1/plans", tc.body, "")
			assert.Equal(t, tc.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestCreatePlanProfileStoreFailure(t *testing.T) {
	e := newServer(t, fakeProfiles{err: errors.New("db down")}, nil)
	rec := do(e, http.MethodPost, "/v1/plans",
		`{"venue_ids":["moma"],"start_date":"2026-05-01","end_date":"2026-05-01"}`, token(t, "5"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

type priceResponse struct {
	VenueID string            `json:"venue_id"`
	Date    string            `json:"date"`
	Price   model.PriceResult `json:"price"`
}

func TestGetPrice(t *testing.T) {
	e := newServer(t, fakeProfiles{}, nil)

	rec := do(e, http.MethodGet, "/v1/venues/moma/price?date=2026-05-02&types=student", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res priceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "2026-05-02", res.Date)
	assert.EqualValues(t, 2200, res.Price.Cents())
	assert.Equal(t, []string{"student"}, res.Price.AppliedRuleIDs)

	// Without a date the planner zone's today applies: a Friday.
	rec = do(e, http.MethodGet, "/v1/venues/moma/price", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "2026-05-01", res.Date)
	assert.True(t, res.Price.Free())

	rec = do(e, http.MethodGet, "/v1/venues/art-museum/price?date=2026-05-02&home_region=NY", "", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Price.Free())

	rec = do(e, http.MethodGet, "/v1/venues/no-rules/price?date=2026-05-02", "", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Price.Known())
	assert.Equal(t, model.ConfidenceUnknown, res.Price.Confidence)
}

func TestGetPriceErrors(t *testing.T) {
	e := newServer(t, fakeProfiles{}, nil)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/venues/louvre/price", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/venues/moma/price?date=tomorrow", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/v1/venues/moma/price", "", "bogus").Code)
}

func TestGetDiscounts(t *testing.T) {
	e := newServer(t, fakeProfiles{}, nil)

	rec := do(e, http.MethodGet, "/v1/venues/art-museum/discounts?types=bank_card", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res discount.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "art-museum", res.VenueID)
	assert.NotEmpty(t, res.MemberNote)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "summer-fridays", res.Rows[0].ProgramID)
	assert.Equal(t, model.StatusSeasonal, res.Rows[0].Status)
	assert.Equal(t, "museums-on-us", res.Rows[1].ProgramID)
	assert.True(t, res.Rows[1].Qualifies)
	assert.Equal(t, model.StatusInfo, res.Rows[2].Status)

	rec = do(e, http.MethodGet, "/v1/venues/moma/discounts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Empty(t, res.Rows)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/venues/louvre/discounts", "", "").Code)
}
