package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/visit-planner/internal/model"
)

// VenueRepo reads the 'venues' table.
type VenueRepo struct{ DB *sql.DB }

func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{DB: db} }

const venueColumns = "id,name,lat,lng,hours,city,state,country,visit_minutes"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(s rowScanner) (model.Venue, error) {
	var (
		v     model.Venue
		hours sql.NullString
	)
	if err := s.Scan(&v.ID, &v.Name, &v.Lat, &v.Lng, &hours, &v.City, &v.State, &v.Country, &v.VisitMinutes); err != nil {
		return model.Venue{}, err
	}
	h, err := decodeHours(hours)
	if err != nil {
		return model.Venue{}, fmt.Errorf("venue %s: %w", v.ID, err)
	}
	v.Hours = h
	return v, nil
}

// decodeHours turns the JSON hours column into a weekday map. NULL and empty
// values decode to nil, which the planner treats as always open.
func decodeHours(col sql.NullString) (map[string]string, error) {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil, nil
	}
	var h map[string]string
	if err := json.Unmarshal([]byte(col.String), &h); err != nil {
		return nil, fmt.Errorf("decode hours: %w", err)
	}
	return h, nil
}

// GetByID fetches a single venue.
func (r *VenueRepo) GetByID(ctx context.Context, id string) (model.Venue, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+venueColumns+" FROM venues WHERE id=? LIMIT 1", id)
	v, err := scanVenue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Venue{}, ErrVenueNotFound
	}
	return v, err
}

// ListByIDs fetches the venues named by ids in the caller's order. Ids with
// no row are returned in missing; duplicates are looked up once.
func (r *VenueRepo) ListByIDs(ctx context.Context, ids []string) (venues []model.Venue, missing []string, err error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+venueColumns+" FROM venues WHERE id IN ("+placeholders(len(ids))+")", args(ids)...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	byID := make(map[string]model.Venue, len(ids))
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, nil, err
		}
		byID[v.ID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	venues, missing = orderByIDs(ids, byID)
	return venues, missing, nil
}

func orderByIDs(ids []string, byID map[string]model.Venue) ([]model.Venue, []string) {
	var (
		venues  = make([]model.Venue, 0, len(ids))
		missing []string
		seen    = make(map[string]bool, len(ids))
	)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if v, ok := byID[id]; ok {
			venues = append(venues, v)
		} else {
			missing = append(missing, id)
		}
	}
	return venues, missing
}
