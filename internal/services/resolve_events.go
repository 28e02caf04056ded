package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/ports"
)

// Maximum concurrent geocoding calls per planning run.
const geocodeConcurrency = 5

const untitledEvent = "Event"

// ResolveEvents turns calendar entries into Events located at a point and
// expressed in loc.
//
// Entries carrying coordinates are used as-is; the others are geocoded
// concurrently by geocoder (nil disables geocoding). Entries that cannot be
// located, have invalid coordinates, or do not end after they start are
// dropped with a warning. Only cancellation of ctx is returned as an error.
func ResolveEvents(
	ctx context.Context,
	entries []domain.CalendarEntry,
	geocoder ports.Geocoder,
	loc *time.Location,
) ([]domain.Event, error) {
	if loc == nil {
		loc = time.UTC
	}

	located := make([]*domain.Coordinates, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(geocodeConcurrency)

	for i, e := range entries {
		if e.Coords != nil {
			c := *e.Coords
			located[i] = &c
			continue
		}

		address := strings.TrimSpace(e.Address)
		if address == "" || geocoder == nil {
			continue
		}

		g.Go(func() error {
			c, err := geocoder.Geocode(gctx, address)
			if err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("title", e.Title).Str("address", address).Msg("dropping event: geocode failed")
				return nil
			}
			located[i] = &c
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolve events: %w", err)
	}

	events := make([]domain.Event, 0, len(entries))
	for i, e := range entries {
		c := located[i]
		switch {
		case c == nil:
			if e.Coords == nil && (geocoder == nil || strings.TrimSpace(e.Address) == "") {
				log.Ctx(ctx).Warn().Str("title", e.Title).Msg("dropping event: no location")
			}
			continue
		case !c.Valid():
			log.Ctx(ctx).Warn().Str("title", e.Title).Stringer("coords", c).Msg("dropping event: coordinates out of range")
			continue
		case !e.End.After(e.Start):
			log.Ctx(ctx).Warn().Str("title", e.Title).Time("start", e.Start).Time("end", e.End).Msg("dropping event: end is not after start")
			continue
		}

		title := strings.TrimSpace(e.Title)
		if title == "" {
			title = untitledEvent
		}

		events = append(events, domain.Event{
			Title:    title,
			Location: *c,
			Start:    e.Start.In(loc),
			End:      e.End.In(loc),
		})
	}

	return events, nil
}

// UpcomingEvents keeps the events that start after now.
func UpcomingEvents(events []domain.Event, now time.Time) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if e.Start.After(now) {
			out = append(out, e)
		}
	}
	return out
}
