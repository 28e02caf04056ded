package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-planner-service/internal/domain"
)

var sampleICS = strings.Join([]string{
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//planner//test//EN",
	"BEGIN:VEVENT",
	"UID:single-1",
	"DTSTAMP:20261001T000000Z",
	"DTSTART:20261019T090000Z",
	"DTEND:20261019T100000Z",
	"SUMMARY:Dentist",
	"LOCATION:1 High St Leicester",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:weekly-1",
	"DTSTAMP:20261001T000000Z",
	"DTSTART:20261005T140000Z",
	"DTEND:20261005T150000Z",
	"RRULE:FREQ=WEEKLY;BYDAY=MO",
	"GEO:52.6369;-1.1398",
	"SUMMARY:Standup",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:daily-1",
	"DTSTAMP:20261001T000000Z",
	"DTSTART:20261017T080000Z",
	"DTEND:20261017T083000Z",
	"RRULE:FREQ=DAILY;COUNT=10",
	"EXDATE:20261019T080000Z",
	"SUMMARY:School run",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:allday-1",
	"DTSTAMP:20261001T000000Z",
	"DTSTART;VALUE=DATE:20261019",
	"DTEND;VALUE=DATE:20261020",
	"SUMMARY:Holiday",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:other-1",
	"DTSTAMP:20261001T000000Z",
	"DTSTART:20261020T090000Z",
	"DTEND:20261020T100000Z",
	"SUMMARY:Tomorrow",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:cancel-1",
	"DTSTAMP:20261001T000000Z",
	"DTSTART:20261019T110000Z",
	"DTEND:20261019T120000Z",
	"STATUS:CANCELLED",
	"SUMMARY:Cancelled lunch",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:weekly-2",
	"DTSTAMP:20261001T000000Z",
	"DTSTART:20261012T160000Z",
	"DTEND:20261012T170000Z",
	"RRULE:FREQ=WEEKLY",
	"SUMMARY:Gym",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:weekly-2",
	"DTSTAMP:20261001T000000Z",
	"RECURRENCE-ID:20261019T160000Z",
	"DTSTART:20261019T170000Z",
	"DTEND:20261019T180000Z",
	"SUMMARY:Gym (moved)",
	"END:VEVENT",
	"END:VCALENDAR",
	"",
}, "\r\n")

var day = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func assertSampleEntries(t *testing.T, entries []domain.CalendarEntry) {
	t.Helper()

	titles := make([]string, 0, len(entries))
	for _, e := range entries {
		titles = append(titles, e.Title)
	}
	require.Equal(t, []string{"Dentist", "Standup", "Gym (moved)"}, titles)

	assert.Equal(t, "1 High St Leicester", entries[0].Address)
	assert.Nil(t, entries[0].Coords)
	assert.Equal(t, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), entries[0].Start)

	require.NotNil(t, entries[1].Coords)
	assert.Equal(t, domain.Coordinates{Lat: 52.6369, Lng: -1.1398}, *entries[1].Coords)
	assert.True(t, entries[1].Start.Equal(time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)))
	assert.True(t, entries[1].End.Equal(time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)))

	assert.True(t, entries[2].Start.Equal(time.Date(2026, 10, 19, 17, 0, 0, 0, time.UTC)))
}

func TestICSSourceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.ics")
	require.NoError(t, os.WriteFile(path, []byte(sampleICS), 0o644))

	entries, err := NewICSSource(true).EntriesForDay(context.Background(), path, day)
	require.NoError(t, err)
	assertSampleEntries(t, entries)
}

func TestICSSourceFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	entries, err := NewICSSource(false).EntriesForDay(context.Background(), srv.URL+"/cal.ics", day)
	require.NoError(t, err)
	assertSampleEntries(t, entries)
}

func TestICSSourceRejectsLocalFilesWhenDisabled(t *testing.T) {
	_, err := NewICSSource(false).EntriesForDay(context.Background(), "/etc/passwd", day)
	assert.ErrorIs(t, err, ErrLocalFilesDisabled)
}

func TestICSSourceEmptyBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ics")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := NewICSSource(true).EntriesForDay(context.Background(), path, day)
	assert.ErrorContains(t, err, "empty body")
}

func TestOverlaps(t *testing.T) {
	from := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside", from.Add(time.Hour), from.Add(2 * time.Hour), true},
		{"ends at window start", from.Add(-time.Hour), from, false},
		{"starts at window end", to, to.Add(time.Hour), false},
		{"spans midnight into window", from.Add(-time.Hour), from.Add(time.Hour), true},
		{"instant inside", from.Add(time.Hour), from.Add(time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, overlaps(tt.start, tt.end, from, to))
		})
	}
}

func TestParseGeo(t *testing.T) {
	c, err := parseGeo("52.5;-1.25")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 52.5, Lng: -1.25}, c)

	_, err = parseGeo("52.5,-1.25")
	assert.Error(t, err)
	_, err = parseGeo("95;0")
	assert.Error(t, err)
}
