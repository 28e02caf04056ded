package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Schedule value meaning the facility never closes.
const AlwaysOpenRange = "00:00 am - 11:59 pm"

type DayState int

const (
	// No usable entry for the weekday. Treated as closed.
	DayMissing DayState = iota
	DayClosed
	DayAlwaysOpen
	DayRange
	// Entry exists but could not be parsed. Treated as open.
	DayUnparsed
)

// Opening hours for one weekday, in minutes after local midnight.
// Close < Open means the range crosses midnight.
type DaySchedule struct {
	State DayState
	Open  int
	Close int
	Raw   string
}

func (d DaySchedule) crossesMidnight() bool {
	return d.State == DayRange && d.Close < d.Open
}

// Typed weekly opening schedule, parsed once at ingestion.
type WeeklySchedule struct {
	Days [7]DaySchedule
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(am|pm)$`)

// ParseWeeklySchedule converts the free-text schedule into a WeeklySchedule.
//
// Entries are separated by "<br>" or newlines and look like
// "Monday : 6:30 am - 1:00 am" or "Sunday : Closed". Weekdays with no entry
// stay DayMissing; entries whose time range cannot be read become DayUnparsed.
func ParseWeeklySchedule(text string) WeeklySchedule {
	var ws WeeklySchedule

	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "<br>", "\n")

	for _, line := range strings.Split(normalized, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		day, ok := weekdayPrefix(line)
		if !ok {
			continue
		}
		// First entry for a weekday wins.
		if ws.Days[day].State != DayMissing {
			continue
		}
		ws.Days[day] = parseDayEntry(line)
	}

	return ws
}

func weekdayPrefix(line string) (time.Weekday, bool) {
	lower := strings.ToLower(line)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.HasPrefix(lower, strings.ToLower(d.String())) {
			return d, true
		}
	}
	return 0, false
}

func parseDayEntry(line string) DaySchedule {
	if strings.Contains(strings.ToLower(line), "closed") {
		return DaySchedule{State: DayClosed, Raw: line}
	}

	_, rng, found := strings.Cut(line, " : ")
	if !found {
		return DaySchedule{State: DayUnparsed, Raw: line}
	}
	rng = strings.TrimSpace(rng)

	if strings.Contains(strings.ToLower(rng), AlwaysOpenRange) {
		return DaySchedule{State: DayAlwaysOpen, Raw: line}
	}

	startText, endText, found := strings.Cut(rng, " - ")
	if !found {
		return DaySchedule{State: DayUnparsed, Raw: line}
	}

	open, ok := parseClock(startText)
	if !ok {
		return DaySchedule{State: DayUnparsed, Raw: line}
	}
	closing, ok := parseClock(endText)
	if !ok {
		return DaySchedule{State: DayUnparsed, Raw: line}
	}

	return DaySchedule{State: DayRange, Open: open, Close: closing, Raw: line}
}

// parseClock reads "h:mm am" (or "h:mmam") into minutes after midnight.
func parseClock(s string) (int, bool) {
	m := clockPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, false
	}

	h, err := strconv.Atoi(m[1])
	if err != nil || h > 12 {
		return 0, false
	}
	minutes, err := strconv.Atoi(m[2])
	if err != nil || minutes > 59 {
		return 0, false
	}

	if m[3] == "pm" && h < 12 {
		h += 12
	}
	if m[3] == "am" && h == 12 {
		h = 0
	}

	return h*60 + minutes, true
}

// IsOpenAt reports whether the schedule is open at instant t, evaluated in
// t's own location.
//
// A missing or closed weekday is never open. An unparseable entry is open
// (fail-open policy for malformed data). A range whose end is before its
// start runs past midnight, and the previous day's overnight range also
// covers the early hours of t's day.
func (ws WeeklySchedule) IsOpenAt(t time.Time) bool {
	today := ws.Days[t.Weekday()]

	switch today.State {
	case DayMissing, DayClosed:
		return false
	case DayAlwaysOpen, DayUnparsed:
		return true
	}

	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	start := midnight.Add(time.Duration(today.Open) * time.Minute)
	end := midnight.Add(time.Duration(today.Close) * time.Minute)
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
	}
	if !t.Before(start) && !t.After(end) {
		return true
	}

	yesterday := ws.Days[(t.Weekday()+6)%7]
	if yesterday.crossesMidnight() {
		spill := midnight.Add(time.Duration(yesterday.Close) * time.Minute)
		if !t.After(spill) {
			return true
		}
	}

	return false
}
