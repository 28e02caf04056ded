package domain

import "time"

// Represents a calendar event resolved to a geographic point.
// Start is always before End. Events are immutable inputs to one planning run.
type Event struct {
	Title    string
	Location Coordinates
	Start    time.Time
	End      time.Time
}

// Represents a calendar entry before geocoding.
// Coords is set when the calendar source already carries a point
// (e.g. an ICS GEO property); otherwise Address must be geocoded.
type CalendarEntry struct {
	UID     string
	Title   string
	Address string
	Coords  *Coordinates
	Start   time.Time
	End     time.Time
}
