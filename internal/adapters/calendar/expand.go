package calendar

import (
	"cmp"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/teambition/rrule-go"

	"parking-planner-service/internal/domain"
)

// Safety cap on instances produced by one recurring event in a window.
const maxOccurrencesPerEvent = 500

// expandDay returns the timed instances of events that overlap
// [from, to), converted to from's location. All-day events carry no
// arrival time and are skipped.
func expandDay(events []vevent, from, to time.Time) []domain.CalendarEntry {
	loc := from.Location()

	overrides := make(map[string][]vevent)
	for _, ev := range events {
		if ev.Recurrence != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
		}
	}

	used := make(map[*vevent]bool)
	out := make([]domain.CalendarEntry, 0, len(events))
	for _, ev := range events {
		if ev.Recurrence != nil || ev.AllDay {
			continue
		}

		if ev.RRule == "" {
			if overlaps(ev.Start, ev.End, from, to) {
				out = append(out, entryFor(ev, ev.Start, ev.End, loc))
			}
			continue
		}

		ovs := overrides[ev.UID]
		for _, start := range occurrences(ev, from, to) {
			inst, end := ev, start.Add(ev.End.Sub(ev.Start))
			if i := slices.IndexFunc(ovs, func(o vevent) bool { return o.Recurrence.Equal(start) }); i >= 0 {
				used[&ovs[i]] = true
				inst, start, end = ovs[i], ovs[i].Start, ovs[i].End
			}
			if overlaps(start, end, from, to) {
				out = append(out, entryFor(inst, start, end, loc))
			}
		}
	}

	// Overrides moved into the window from an instance outside it.
	for uid := range overrides {
		ovs := overrides[uid]
		for i := range ovs {
			o := &ovs[i]
			if used[o] || o.AllDay || !overlaps(o.Start, o.End, from, to) {
				continue
			}
			out = append(out, entryFor(*o, o.Start, o.End, loc))
		}
	}

	slices.SortStableFunc(out, func(a, b domain.CalendarEntry) int {
		return cmp.Or(a.Start.Compare(b.Start), cmp.Compare(a.UID, b.UID))
	})
	return out
}

// occurrences lists the recurrence starts of ev whose instance could
// overlap [from, to).
func occurrences(ev vevent, from, to time.Time) []time.Time {
	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		log.Warn().Err(err).Str("uid", ev.UID).Str("rrule", ev.RRule).Msg("skipping unparseable RRULE")
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen by the event duration so instances starting before from that
	// are still running are included.
	dur := ev.End.Sub(ev.Start)
	starts := set.Between(from.Add(-dur).In(ev.Start.Location()), to.In(ev.Start.Location()), true)
	if len(starts) > maxOccurrencesPerEvent {
		log.Warn().Str("uid", ev.UID).Int("cap", maxOccurrencesPerEvent).Msg("truncating recurring event")
		starts = starts[:maxOccurrencesPerEvent]
	}
	return starts
}

func entryFor(ev vevent, start, end time.Time, loc *time.Location) domain.CalendarEntry {
	return domain.CalendarEntry{
		UID:     ev.UID,
		Title:   ev.Summary,
		Address: ev.Location,
		Coords:  ev.Geo,
		Start:   start.In(loc),
		End:     end.In(loc),
	}
}

// overlaps reports whether [aStart, aEnd) intersects [bStart, bEnd).
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aEnd.After(aStart) {
		return !aStart.Before(bStart) && aStart.Before(bEnd)
	}
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
