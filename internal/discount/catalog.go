package discount

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/visit-planner/internal/calendar"
	"github.com/iliyamo/visit-planner/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrInvalidCatalog is returned when a catalog fails validation.
var ErrInvalidCatalog = errors.New("invalid discount catalog")

// Kind is the recurrence shape of a promotional program.
type Kind string

const (
	// KindSeasonal runs between two dates on selected weekdays during
	// opening hours.
	KindSeasonal Kind = "seasonal"
	// KindMonthly recurs every month on a calendar position such as the
	// first full weekend.
	KindMonthly Kind = "monthly"
	// KindMembershipHours describes members-only hours. It is informational
	// and never time-driven.
	KindMembershipHours Kind = "membership_hours"
)

// Program is one promotional program of a venue.
type Program struct {
	ID          string                `yaml:"id"`
	Name        string                `yaml:"name"`
	Description string                `yaml:"description"`
	Kind        Kind                  `yaml:"kind"`
	Requires    model.EligibilityType `yaml:"requires"`
	Institution string                `yaml:"institution"`
	SeasonStart string                `yaml:"season_start"`
	SeasonEnd   string                `yaml:"season_end"`
	Weekdays    []int                 `yaml:"weekdays"`
	WeekRule    model.WeekRule        `yaml:"week_rule"`
	TimeWindow  *model.TimeWindow     `yaml:"time_window"`
	Hours       string                `yaml:"hours"`

	start, end time.Time
}

// VenuePrograms is the program set of one venue.
type VenuePrograms struct {
	VenueID    string    `yaml:"venue_id"`
	MemberNote string    `yaml:"member_note"`
	Programs   []Program `yaml:"programs"`
}

// Catalog holds the program sets of every known venue.
type Catalog struct {
	Venues []VenuePrograms `yaml:"venues"`

	byVenue map[string]int
}

// LoadCatalog reads a YAML catalog from path. An empty path loads the
// catalog built into the binary.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	c.byVenue = make(map[string]int, len(c.Venues))
	for i := range c.Venues {
		vp := &c.Venues[i]
		if vp.VenueID == "" {
			return nil, fmt.Errorf("%w: venue %d has no venue_id", ErrInvalidCatalog, i)
		}
		if _, dup := c.byVenue[vp.VenueID]; dup {
			return nil, fmt.Errorf("%w: venue %s listed twice", ErrInvalidCatalog, vp.VenueID)
		}
		for j := range vp.Programs {
			if err := vp.Programs[j].validate(); err != nil {
				return nil, fmt.Errorf("%w: venue %s: %v", ErrInvalidCatalog, vp.VenueID, err)
			}
		}
		c.byVenue[vp.VenueID] = i
	}
	return &c, nil
}

// ForVenue returns the program set of a venue.
func (c *Catalog) ForVenue(venueID string) (VenuePrograms, bool) {
	i, ok := c.byVenue[venueID]
	if !ok {
		return VenuePrograms{}, false
	}
	return c.Venues[i], true
}

func (p *Program) validate() error {
	if p.ID == "" {
		return errors.New("program without id")
	}
	for _, wd := range p.Weekdays {
		if wd < 1 || wd > 7 {
			return fmt.Errorf("program %s: weekday %d out of range", p.ID, wd)
		}
	}
	if p.TimeWindow != nil {
		if _, _, ok := p.TimeWindow.Minutes(); !ok {
			return fmt.Errorf("program %s: bad time_window %q", p.ID, p.TimeWindow.String())
		}
	}
	switch p.Kind {
	case KindSeasonal:
		var err error
		if p.start, err = calendar.ParseDate(p.SeasonStart); err != nil {
			return fmt.Errorf("program %s: season_start: %w", p.ID, err)
		}
		if p.end, err = calendar.ParseDate(p.SeasonEnd); err != nil {
			return fmt.Errorf("program %s: season_end: %w", p.ID, err)
		}
		if p.end.Before(p.start) {
			return fmt.Errorf("program %s: season ends before it starts", p.ID)
		}
	case KindMonthly:
		switch p.WeekRule {
		case model.FirstSunday, model.FirstSaturday, model.FirstFullWeekend:
		default:
			return fmt.Errorf("program %s: unknown week_rule %q", p.ID, p.WeekRule)
		}
	case KindMembershipHours:
	default:
		return fmt.Errorf("program %s: unknown kind %q", p.ID, p.Kind)
	}
	return nil
}
