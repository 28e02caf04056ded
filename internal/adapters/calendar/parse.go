package calendar

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/rs/zerolog/log"

	"parking-planner-service/internal/domain"
)

// vevent is the normalized form of one VEVENT before recurrence expansion.
type vevent struct {
	UID      string
	Summary  string
	Location string
	Geo      *domain.Coordinates

	Start  time.Time
	End    time.Time
	AllDay bool

	RRule      string
	ExDates    []time.Time
	Recurrence *time.Time
}

// parseCalendar parses an ICS payload. Malformed or cancelled VEVENTs are
// logged and skipped.
func parseCalendar(body []byte) ([]vevent, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("parse calendar: empty body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	events := make([]vevent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			log.Warn().Err(err).Msg("skipping calendar event")
			continue
		}
		if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil && strings.EqualFold(p.Value, "CANCELLED") {
			continue
		}
		events = append(events, ev)
	}

	return events, nil
}

func parseVEvent(ve *ical.VEvent) (vevent, error) {
	var out vevent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := ve.GetProperty("GEO"); p != nil {
		geo, err := parseGeo(p.Value)
		if err != nil {
			return out, fmt.Errorf("uid %q: %w", out.UID, err)
		}
		out.Geo = &geo
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("uid %q: DTSTART: %w", out.UID, err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		// No DTEND: an instant.
		end = start
	}
	out.Start, out.End = start, end

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	startLoc := start.Location()
	if dtStart != nil {
		if vs, ok := dtStart.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			out.AllDay = true
		}
		if !strings.Contains(dtStart.Value, "T") {
			out.AllDay = true
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		loc := paramLocation(p.ICalParameters, startLoc)
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(part, loc); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if t, err := parseICSTime(p.Value, paramLocation(p.ICalParameters, startLoc)); err == nil {
			out.Recurrence = &t
		}
	}

	return out, nil
}

// parseGeo reads a GEO value "lat;lng".
func parseGeo(v string) (domain.Coordinates, error) {
	latText, lngText, ok := strings.Cut(v, ";")
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("malformed GEO %q", v)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("GEO latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngText), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("GEO longitude: %w", err)
	}
	c := domain.Coordinates{Lat: lat, Lng: lng}
	if !c.Valid() {
		return domain.Coordinates{}, fmt.Errorf("GEO out of range %q", v)
	}
	return c, nil
}

func paramLocation(params map[string][]string, fallback *time.Location) *time.Location {
	if tz, ok := params["TZID"]; ok && len(tz) > 0 {
		if loc, err := time.LoadLocation(tz[0]); err == nil {
			return loc
		}
	}
	return fallback
}

// parseICSTime parses a DATE or DATE-TIME value. Floating values are read
// in loc.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}
