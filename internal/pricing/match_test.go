package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/visit-planner/internal/model"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func intp(v int) *int { return &v }

func TestDateMatchesNilIsUnconstrained(t *testing.T) {
	assert.True(t, DateMatches(model.AnyDate, day(2026, time.October, 19)))
	assert.True(t, DateMatchesAt(nil, day(2026, time.October, 19)))
}

func TestDateMatchesFirstFullWeekend(t *testing.T) {
	// May 2026 starts on a Friday.
	c := &model.DateConstraint{WeekRule: model.FirstFullWeekend}
	var matched []int
	for d := 1; d <= 31; d++ {
		if DateMatches(c, day(2026, time.May, d)) {
			matched = append(matched, d)
		}
	}
	assert.Equal(t, []int{2, 3}, matched)
}

func TestDateMatchesFirstSundayAndSaturday(t *testing.T) {
	sun := &model.DateConstraint{WeekRule: model.FirstSunday}
	sat := &model.DateConstraint{WeekRule: model.FirstSaturday}

	assert.True(t, DateMatches(sun, day(2026, time.November, 1)))
	assert.False(t, DateMatches(sun, day(2026, time.November, 8)))
	assert.True(t, DateMatches(sat, day(2026, time.November, 7)))
	assert.False(t, DateMatches(sat, day(2026, time.November, 14)))
}

func TestDateMatchesCombinesWeekRuleAndDayOfWeek(t *testing.T) {
	// First full weekend of May 2026 is Sat 2 / Sun 3; only Sunday survives.
	c := &model.DateConstraint{WeekRule: model.FirstFullWeekend, DaysOfWeek: []int{7}}

	assert.False(t, DateMatches(c, day(2026, time.May, 2)))
	assert.True(t, DateMatches(c, day(2026, time.May, 3)))
	assert.False(t, DateMatches(c, day(2026, time.May, 10)))
}

func TestDateMatchesMonthsAndDays(t *testing.T) {
	c := &model.DateConstraint{Months: []int{6, 7, 8}, DaysOfWeek: []int{5}}

	assert.True(t, DateMatches(c, day(2026, time.July, 3)))
	assert.False(t, DateMatches(c, day(2026, time.July, 4)))
	assert.False(t, DateMatches(c, day(2026, time.September, 4)))
}

func TestDateMatchesAtTimeWindow(t *testing.T) {
	c := &model.DateConstraint{DaysOfWeek: []int{4}, TimeWindow: &model.TimeWindow{Start: "17:00", End: "20:00"}}
	thu := day(2026, time.October, 22)

	assert.True(t, DateMatches(c, thu))
	assert.False(t, DateMatchesAt(c, thu.Add(16*time.Hour+59*time.Minute)))
	assert.True(t, DateMatchesAt(c, thu.Add(17*time.Hour)))
	assert.False(t, DateMatchesAt(c, thu.Add(20*time.Hour)))
}

func TestEligibilityMatchesNilIsUnconstrained(t *testing.T) {
	assert.True(t, EligibilityMatches(model.Anyone, model.Profile{}, model.Location{}, day(2026, time.January, 1)))
}

func TestEligibilityMatchesResidency(t *testing.T) {
	on := day(2026, time.October, 19)
	req := &model.RuleEligibility{ResidentState: "NY"}

	assert.True(t, EligibilityMatches(req, model.Profile{}, model.Location{Region: "NY"}, on))
	assert.False(t, EligibilityMatches(req, model.Profile{}, model.Location{Region: "NJ"}, on))

	resident := model.NewProfile([]model.EligibilityItem{{
		Type:    model.EligibilityLocalResident,
		Details: model.EligibilityDetails{Locations: []string{"Brooklyn, NY"}},
	}})
	assert.True(t, EligibilityMatches(req, resident, model.Location{Region: "NJ"}, on))

	// The list entry must contain the target, not the other way round.
	short := model.NewProfile([]model.EligibilityItem{{
		Type:    model.EligibilityLocalResident,
		Details: model.EligibilityDetails{Locations: []string{"NY"}},
	}})
	assert.False(t, EligibilityMatches(&model.RuleEligibility{ResidentCity: "New York, NY"}, short, model.Location{}, on))
}

func TestEligibilityMatchesProgramsIgnoreExpiry(t *testing.T) {
	on := day(2026, time.October, 19)
	p := model.NewProfile([]model.EligibilityItem{
		{Type: model.EligibilityStudent},
		{Type: model.EligibilityLibraryPass, Details: model.EligibilityDetails{
			Memberships: []model.Membership{{Institution: "Public Library", Expires: "2020-01-01"}},
		}},
	})

	assert.True(t, EligibilityMatches(&model.RuleEligibility{IsStudent: true}, p, model.Location{}, on))
	assert.True(t, EligibilityMatches(&model.RuleEligibility{Program: model.EligibilityLibraryPass}, p, model.Location{}, on))
	assert.False(t, EligibilityMatches(&model.RuleEligibility{Program: model.EligibilityMilitary}, p, model.Location{}, on))
	assert.False(t, EligibilityMatches(&model.RuleEligibility{IsStudent: true, Program: model.EligibilityTeacher}, p, model.Location{}, on))
}

func TestEligibilityMatchesAge(t *testing.T) {
	birthday := func(dob string) model.Profile {
		return model.NewProfile([]model.EligibilityItem{{
			Type:    model.EligibilityAgeBased,
			Details: model.EligibilityDetails{DateOfBirth: dob},
		}})
	}
	senior := &model.RuleEligibility{IsSenior: true}
	child := &model.RuleEligibility{MaxAge: intp(12)}

	// Turns 65 on 2026-10-20.
	p := birthday("1961-10-20")
	assert.False(t, EligibilityMatches(senior, p, model.Location{}, day(2026, time.October, 19)))
	assert.True(t, EligibilityMatches(senior, p, model.Location{}, day(2026, time.October, 20)))

	kid := birthday("2014-03-01")
	assert.True(t, EligibilityMatches(child, kid, model.Location{}, day(2027, time.February, 28)))
	assert.False(t, EligibilityMatches(child, kid, model.Location{}, day(2027, time.March, 1)))

	// No birth date recorded: never matches, never panics.
	noDOB := model.NewProfile([]model.EligibilityItem{{Type: model.EligibilityAgeBased}})
	assert.False(t, EligibilityMatches(senior, noDOB, model.Location{}, day(2026, time.October, 19)))
	assert.False(t, EligibilityMatches(child, model.Profile{}, model.Location{}, day(2026, time.October, 19)))
}
