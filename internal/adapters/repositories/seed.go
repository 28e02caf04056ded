package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"parking-planner-service/internal/domain"
)

// ReadFacilityRecords reads a facility dataset from a .json, .yaml or .yml
// file and validates every record.
func ReadFacilityRecords(path string) ([]domain.FacilityRecord, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facilities: read %q: %w", path, err)
	}

	var data []domain.FacilityRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(bytes, &data); err != nil {
			return nil, fmt.Errorf("read facilities: parse json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(bytes, &data); err != nil {
			return nil, fmt.Errorf("read facilities: parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("read facilities: unsupported file type %q", filepath.Ext(path))
	}

	seen := make(map[string]int, len(data))
	for i, rec := range data {
		f, err := domain.NewFacility(rec)
		if err != nil {
			return nil, fmt.Errorf("read facilities: item at index %d: %w", i+1, err)
		}
		if prev, ok := seen[f.ID]; ok {
			return nil, fmt.Errorf("read facilities: item at index %d: duplicate id %q (first at index %d)", i+1, f.ID, prev)
		}
		seen[f.ID] = i + 1
		data[i] = f.Record()
	}

	return data, nil
}

// Populate the facilities table from a dataset file. Records are upserted
// by id; their position follows file order.
func SeedFromFile(ctx context.Context, conn *sql.DB, driver, path string) (int, error) {
	records, err := ReadFacilityRecords(path)
	if err != nil {
		return 0, fmt.Errorf("seed facilities: %w", err)
	}
	if err := SeedRecords(ctx, conn, driver, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func SeedRecords(ctx context.Context, conn *sql.DB, driver string, records []domain.FacilityRecord) error {
	if conn == nil {
		return errors.New("seed facilities: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed facilities: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := Rebind(driver, `
	INSERT INTO facilities (
		id,
		position,
		name,
		description,
		latitude,
		longitude,
		open_close_times,
		busy_hours,
		prices
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET position = EXCLUDED.position,
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		open_close_times = EXCLUDED.open_close_times,
		busy_hours = EXCLUDED.busy_hours,
		prices = EXCLUDED.prices;
	`)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed facilities: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		busy := r.BusyHours
		if busy == nil {
			busy = []string{}
		}
		busyJSON, err := json.Marshal(busy)
		if err != nil {
			return fmt.Errorf("seed facilities: encode busy hours id=%q: %w", r.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			r.ID,
			i,
			r.Name,
			r.Description,
			r.Latitude,
			r.Longitude,
			r.OpenCloseTimes,
			string(busyJSON),
			r.Prices,
		); err != nil {
			return fmt.Errorf("seed facilities: insert id=%q: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed facilities: commit tx: %w", err)
	}

	return nil
}
