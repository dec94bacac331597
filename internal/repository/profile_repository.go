package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/visit-planner/internal/model"
)

// StoredProfile is a traveler's saved home location and eligibility items,
// mirroring the 'user_profiles' table.
type StoredProfile struct {
	UserID  uint64
	Home    model.Location
	Profile model.Profile
}

type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// GetByUserID fetches the profile saved for userID.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (StoredProfile, error) {
	var (
		sp    = StoredProfile{UserID: userID}
		items sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT home_city,home_region,home_country,eligibility FROM user_profiles WHERE user_id=? LIMIT 1",
		userID).Scan(&sp.Home.City, &sp.Home.Region, &sp.Home.Country, &items)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return StoredProfile{}, err
	}
	sp.Profile, err = decodeProfile(items)
	if err != nil {
		return StoredProfile{}, fmt.Errorf("user %d: %w", userID, err)
	}
	return sp, nil
}

func decodeProfile(col sql.NullString) (model.Profile, error) {
	if !col.Valid || col.String == "" || col.String == "null" {
		return model.NewProfile(nil), nil
	}
	var items []model.EligibilityItem
	if err := json.Unmarshal([]byte(col.String), &items); err != nil {
		return model.Profile{}, fmt.Errorf("decode eligibility: %w", err)
	}
	return model.NewProfile(items), nil
}
