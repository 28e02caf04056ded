package repositories

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/platform/db"
)

const facilitiesJSON = `[
  {
    "id": "haymarket",
    "name": "Haymarket Car Park",
    "description": "Multi-storey, 3 hours free for shoppers",
    "latitude": 52.6375,
    "longitude": -1.1320,
    "openCloseTimes": "Monday : 7:00 am - 11:00 pm<br>Sunday : Closed",
    "busyHours": ["Busy 12 pm - 2 pm"],
    "prices": "£2/hour"
  },
  {
    "name": "Abbey Park Road",
    "description": "On-street",
    "latitude": 52.6450,
    "longitude": -1.1350,
    "openCloseTimes": "Monday : 00:00 am - 11:59 pm",
    "prices": "Call for rates"
  }
]`

const facilitiesYAML = `- id: station
  name: Station Car Park
  description: Long stay
  latitude: 52.6314
  longitude: -1.1254
  openCloseTimes: "Monday : 6:30 am - 1:00 am"
  busyHours: []
  prices: "£3 per 4 hours"
`

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, InitSchema(context.Background(), conn))
	return conn
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestSeedAndListFacilities(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	n, err := SeedFromFile(ctx, conn, db.DriverSQLite, writeFile(t, "facilities.json", facilitiesJSON))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	repo := NewSQLFacilityRepository(conn, db.DriverSQLite)
	fs, err := repo.ListFacilities(ctx)
	require.NoError(t, err)
	require.Len(t, fs, 2)

	assert.Equal(t, "haymarket", fs[0].ID)
	assert.Equal(t, 3.0, fs[0].MaxFreeHours)
	assert.Equal(t, domain.PricePerHour, fs[0].Price.Kind)
	assert.Equal(t, []string{"Busy 12 pm - 2 pm"}, fs[0].BusyHours)

	assert.Equal(t, "Abbey Park Road", fs[1].ID, "id defaults to name")
	assert.False(t, fs[1].Price.Known())
	assert.Equal(t, domain.UnlimitedFreeHours, fs[1].MaxFreeHours)
	assert.Empty(t, fs[1].BusyHours)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	path := writeFile(t, "facilities.json", facilitiesJSON)

	_, err := SeedFromFile(ctx, conn, db.DriverSQLite, path)
	require.NoError(t, err)
	_, err = SeedFromFile(ctx, conn, db.DriverSQLite, path)
	require.NoError(t, err)

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM facilities").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSeedFromYAML(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	_, err := SeedFromFile(ctx, conn, db.DriverSQLite, writeFile(t, "facilities.yaml", facilitiesYAML))
	require.NoError(t, err)

	fs, err := NewSQLFacilityRepository(conn, db.DriverSQLite).ListFacilities(ctx)
	require.NoError(t, err)
	require.Len(t, fs, 1)
	assert.Equal(t, domain.PricePerBlock, fs[0].Price.Kind)
	assert.Equal(t, 4.0, fs[0].Price.BlockHours)
}

func TestReadFacilityRecordsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want string
	}{
		{"bad json", "f.json", `{"not": "a list"}`, "parse json"},
		{"unsupported", "f.csv", `id,name`, "unsupported file type"},
		{"empty name", "f.json", `[{"name": " ", "latitude": 1, "longitude": 1}]`, "index 1"},
		{"bad coords", "f.json", `[{"name": "X", "latitude": 91, "longitude": 1}]`, "coordinates"},
		{"duplicate id", "f.json", `[{"name": "A", "latitude": 1, "longitude": 1}, {"name": "A", "latitude": 2, "longitude": 2}]`, "duplicate id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFacilityRecords(writeFile(t, tt.file, tt.data))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE b = ? AND c IN (?, ?)"
	assert.Equal(t, q, Rebind(db.DriverSQLite, q))
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c IN ($2, $3)", Rebind(db.DriverPostgres, q))
}

func TestStaticFacilityRepository(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	_, err := SeedFromFile(ctx, conn, db.DriverSQLite, writeFile(t, "facilities.json", facilitiesJSON))
	require.NoError(t, err)

	static, err := LoadStatic(ctx, NewSQLFacilityRepository(conn, db.DriverSQLite))
	require.NoError(t, err)

	_, err = conn.Exec("DELETE FROM facilities")
	require.NoError(t, err)

	fs, err := static.ListFacilities(ctx)
	require.NoError(t, err)
	assert.Len(t, fs, 2, "snapshot is unaffected by later writes")

	fs[0].Name = "mutated"
	again, _ := static.ListFacilities(ctx)
	assert.Equal(t, "Haymarket Car Park", again[0].Name)
}
