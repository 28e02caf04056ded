package ports

import (
	"context"
	"time"

	"parking-planner-service/internal/domain"
)

// Contract for reading calendar entries for one day.
type CalendarSource interface {
	// Return the entries of the calendar at ref (URL or path) that overlap
	// the local day containing day.
	EntriesForDay(ctx context.Context, ref string, day time.Time) ([]domain.CalendarEntry, error)
}
