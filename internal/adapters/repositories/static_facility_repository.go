package repositories

import (
	"context"
	"slices"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/ports"
)

// In-memory FacilityRepository over a fixed snapshot. The server loads the
// dataset once at start and serves every request from it.
type StaticFacilityRepository struct {
	facilities []domain.Facility
}

func NewStaticFacilityRepository(facilities []domain.Facility) *StaticFacilityRepository {
	return &StaticFacilityRepository{facilities: slices.Clone(facilities)}
}

// LoadStatic lists src once and returns a snapshot of the result.
func LoadStatic(ctx context.Context, src ports.FacilityRepository) (*StaticFacilityRepository, error) {
	fs, err := src.ListFacilities(ctx)
	if err != nil {
		return nil, err
	}
	return NewStaticFacilityRepository(fs), nil
}

func (s *StaticFacilityRepository) ListFacilities(context.Context) ([]domain.Facility, error) {
	return slices.Clone(s.facilities), nil
}
