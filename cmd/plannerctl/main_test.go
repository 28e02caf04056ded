package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-planner-service/internal/api/dto"
)

const facilitiesJSON = `[
	{
		"id": "alpha",
		"name": "Alpha Street",
		"description": "Pay and display",
		"latitude": 52.6379,
		"longitude": -1.1398,
		"openCloseTimes": "Monday : 00:00 am - 11:59 pm<br>Tuesday : 00:00 am - 11:59 pm<br>Wednesday : 00:00 am - 11:59 pm<br>Thursday : 00:00 am - 11:59 pm<br>Friday : 00:00 am - 11:59 pm<br>Saturday : 00:00 am - 11:59 pm<br>Sunday : 00:00 am - 11:59 pm",
		"prices": "£2/hour"
	},
	{
		"id": "beta",
		"name": "Beta Yard",
		"description": "2 hours free",
		"latitude": 52.60,
		"longitude": -1.10,
		"openCloseTimes": "Monday : Closed",
		"prices": "Free"
	}
]`

// A Monday far enough ahead to never be in the past.
const eventsJSON = `[
	{"title": "Dentist", "lat": 52.6369, "lng": -1.1398, "start": "2099-01-05T10:00:00Z", "end": "2099-01-05T11:00:00Z"}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "app.db"))
	t.Setenv("SEED_PATH", filepath.Join(t.TempDir(), "none.json"))
	t.Setenv("GEOCODER", "none")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("DEFAULT_RADIUS_METERS", "800")
	t.Setenv("DEFAULT_PREFERENCE", "cheap")
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPlanPrintsTimeline(t *testing.T) {
	isolateEnv(t)
	fac := writeFile(t, "facilities.json", facilitiesJSON)
	events := writeFile(t, "events.json", eventsJSON)

	out, err := execute(t, "plan", "--home", "52.62,-1.12", "--events", events, "-f", fac)
	require.NoError(t, err)

	assert.Contains(t, out, "Leave Home: Drive ~")
	assert.Contains(t, out, "Park at Alpha Street: £2/hour [£4.00]")
	assert.Contains(t, out, "09:45  Arrive at Dentist")
	assert.Contains(t, out, "Total cost: £4.00 (1 events, 0 without parking)")
}

func TestPlanJSONOutput(t *testing.T) {
	isolateEnv(t)
	fac := writeFile(t, "facilities.json", facilitiesJSON)
	events := writeFile(t, "events.json", eventsJSON)

	out, err := execute(t, "plan", "--home", "52.62,-1.12", "--events", events, "-f", fac, "--radius", "50", "--json")
	require.NoError(t, err)

	var res dto.ItineraryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Steps, 1)
	assert.Equal(t, "No parking for Dentist", res.Steps[0].Title)
	assert.Equal(t, 1, res.EventsWithoutParking)
}

func TestPlanRejectsBadInput(t *testing.T) {
	isolateEnv(t)
	fac := writeFile(t, "facilities.json", facilitiesJSON)
	events := writeFile(t, "events.json", eventsJSON)

	_, err := execute(t, "plan", "--events", events, "-f", fac)
	assert.Error(t, err, "home is required")

	_, err = execute(t, "plan", "--home", "52.62", "--events", events, "-f", fac)
	assert.ErrorContains(t, err, "lat,lng")

	_, err = execute(t, "plan", "--home", "52.62,-1.12", "-f", fac)
	assert.ErrorContains(t, err, "--events or --ics")

	_, err = execute(t, "plan", "--home", "52.62,-1.12", "--events", events, "-f", fac, "--preference", "fastest")
	assert.Error(t, err)

	bad := writeFile(t, "bad.json", `[{"title": "X", "lat": 1, "start": "2099-01-05T10:00:00Z", "end": "2099-01-05T11:00:00Z"}]`)
	_, err = execute(t, "plan", "--home", "52.62,-1.12", "--events", bad, "-f", fac)
	assert.ErrorContains(t, err, "lat and lng")
}

func TestSeedAndListFacilities(t *testing.T) {
	isolateEnv(t)
	fac := writeFile(t, "facilities.json", facilitiesJSON)

	out, err := execute(t, "initdb")
	require.NoError(t, err)
	assert.Contains(t, out, "schema ready (sqlite)")

	out, err = execute(t, "seed", fac)
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 2 facilities")

	out, err = execute(t, "facilities")
	require.NoError(t, err)
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "Beta Yard")
	assert.Regexp(t, `beta\s+Beta Yard\s+Free\s+2`, out)
}

func TestParseLatLng(t *testing.T) {
	c, err := parseLatLng(" 52.62 , -1.12 ")
	require.NoError(t, err)
	assert.Equal(t, 52.62, c.Lat)
	assert.Equal(t, -1.12, c.Lng)

	_, err = parseLatLng("95,0")
	assert.Error(t, err)
	_, err = parseLatLng("a,b")
	assert.Error(t, err)
}
