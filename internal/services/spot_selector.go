package services

import (
	"slices"
	"time"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/geo"
)

type candidate struct {
	facility domain.Facility
	distance float64
}

// FindBestSpot picks the best facility open at `at` within maxRadiusMeters
// of target. It returns false when none qualifies, which callers treat as
// "no parking available" rather than an error.
//
// Ranking uses a stable sort, so ties keep dataset order:
//   - closest: ascending distance to target.
//   - cheap: free facilities first, then ascending distance. This is a
//     free/paid split, not a comparison of computed costs.
func FindBestSpot(
	facilities []domain.Facility,
	target domain.Coordinates,
	at time.Time,
	maxRadiusMeters float64,
	pref domain.Preference,
) (domain.Facility, bool) {
	candidates := make([]candidate, 0, len(facilities))
	for _, f := range facilities {
		d := geo.DistanceMeters(f.Location, target)
		if d <= maxRadiusMeters && domain.IsOpen(f, at) {
			candidates = append(candidates, candidate{facility: f, distance: d})
		}
	}

	if len(candidates) == 0 {
		return domain.Facility{}, false
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		if pref == domain.PreferCheap {
			fa, fb := a.facility.Price.IsFree(), b.facility.Price.IsFree()
			if fa && !fb {
				return -1
			}
			if fb && !fa {
				return 1
			}
		}
		return compareFloat(a.distance, b.distance)
	})

	return candidates[0].facility, true
}

// FindBackupSpot returns the first facility, in dataset order, other than
// exclude that is open at `at` and within maxRadiusMeters of target.
// No ranking is applied.
func FindBackupSpot(
	facilities []domain.Facility,
	exclude domain.Facility,
	target domain.Coordinates,
	at time.Time,
	maxRadiusMeters float64,
) (domain.Facility, bool) {
	for _, f := range facilities {
		if f.ID == exclude.ID {
			continue
		}
		if !domain.IsOpen(f, at) {
			continue
		}
		if geo.DistanceMeters(f.Location, target) <= maxRadiusMeters {
			return f, true
		}
	}
	return domain.Facility{}, false
}

func compareFloat(a, b float64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
