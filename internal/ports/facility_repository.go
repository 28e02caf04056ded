package ports

import (
	"context"

	"parking-planner-service/internal/domain"
)

// Port: a boundary for retrieving parking facilities from a data source.
type FacilityRepository interface {
	// Retrieve every facility available for planning, in dataset order.
	ListFacilities(ctx context.Context) ([]domain.Facility, error)
}
