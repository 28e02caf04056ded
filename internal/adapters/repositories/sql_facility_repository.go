package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/platform/obs"
)

// SQL-backed implementation of the FacilityRepository port. Works with
// both the sqlite and pgx drivers.
type SQLFacilityRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLFacilityRepository(db *sql.DB, driver string) *SQLFacilityRepository {
	return &SQLFacilityRepository{DB: db, Driver: driver}
}

// Return all facilities in dataset order, parsed into their typed form.
// Price texts that match no known pattern are logged and priced at 0.
func (s *SQLFacilityRepository) ListFacilities(ctx context.Context) (_ []domain.Facility, err error) {
	defer obs.Time(ctx, "facilities.List")(&err)

	if s.DB == nil {
		return nil, errors.New("sql facility repository: DB is nil")
	}

	query := `
	SELECT
		id,
		name,
		description,
		latitude,
		longitude,
		open_close_times,
		busy_hours,
		prices
	FROM facilities
	ORDER BY position, id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list facilities: query facilities table: %w", err)
	}
	defer rows.Close()

	facilities := make([]domain.Facility, 0, 64)
	for rows.Next() {
		var r domain.FacilityRecord
		var busy string
		if err := rows.Scan(
			&r.ID,
			&r.Name,
			&r.Description,
			&r.Latitude,
			&r.Longitude,
			&r.OpenCloseTimes,
			&busy,
			&r.Prices,
		); err != nil {
			return nil, fmt.Errorf("list facilities: scan row: %w", err)
		}

		if busy != "" {
			if err := json.Unmarshal([]byte(busy), &r.BusyHours); err != nil {
				return nil, fmt.Errorf("list facilities: decode busy hours id=%q: %w", r.ID, err)
			}
		}

		f, err := domain.NewFacility(r)
		if err != nil {
			return nil, fmt.Errorf("list facilities: id=%q: %w", r.ID, err)
		}
		if !f.Price.Known() {
			log.Warn().Str("facility", f.ID).Str("prices", f.RawPrice).Msg("unrecognised price text, costs will be 0")
		}
		facilities = append(facilities, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list facilities: row iteration: %w", err)
	}

	return facilities, nil
}
