package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"parking-planner-service/internal/adapters/calendar"
	"parking-planner-service/internal/api/dto"
	"parking-planner-service/internal/app"
	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/services"
)

type planOptions struct {
	home       string
	eventsFile string
	ics        string
	date       string
	radius     float64
	preference string
	facilities string
	asJSON     bool
}

func newPlanCmd(c *cli) *cobra.Command {
	var opts planOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a parking itinerary for a day",
		Example: "  plannerctl plan --home 52.62,-1.12 --events day.json\n" +
			"  plannerctl plan --home 52.62,-1.12 --ics calendar.ics --date 2026-10-20",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, c, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.home, "home", "", "home coordinates as lat,lng")
	f.StringVar(&opts.eventsFile, "events", "", "JSON file with an array of events")
	f.StringVar(&opts.ics, "ics", "", "iCalendar file path or http(s)/webcal URL")
	f.StringVar(&opts.date, "date", "", "day to plan (YYYY-MM-DD, default today)")
	f.Float64Var(&opts.radius, "radius", 0, "search radius in meters (default from config)")
	f.StringVar(&opts.preference, "preference", "", "cheap or closest (default from config)")
	f.StringVarP(&opts.facilities, "facilities", "f", "", "read facilities from a dataset file instead of the database")
	f.BoolVar(&opts.asJSON, "json", false, "print the itinerary as JSON")
	_ = cmd.MarkFlagRequired("home")

	return cmd
}

func runPlan(cmd *cobra.Command, c *cli, opts planOptions) error {
	ctx := cmd.Context()

	home, err := parseLatLng(opts.home)
	if err != nil {
		return err
	}
	if opts.eventsFile == "" && opts.ics == "" {
		return errors.New("one of --events or --ics is required")
	}

	var entries []domain.CalendarEntry
	if opts.eventsFile != "" {
		entries, err = readEventsFile(opts.eventsFile)
		if err != nil {
			return err
		}
	}

	loc := c.cfg.Location()
	var day time.Time
	if opts.date != "" {
		day, err = time.ParseInLocation(time.DateOnly, opts.date, loc)
		if err != nil {
			return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
		}
	}

	radius := c.cfg.DefaultRadiusMeters
	if cmd.Flags().Changed("radius") {
		radius = opts.radius
	}
	pref := c.cfg.Preference()
	if opts.preference != "" {
		pref = domain.Preference(strings.ToLower(opts.preference))
	}

	repo, store, err := loadFacilities(ctx, c, opts.facilities)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	geocoder, closeGeocoder, err := app.Geocoder(ctx, c.cfg, store)
	if err != nil {
		return err
	}
	defer closeGeocoder()

	planner := &services.DayPlanner{
		Facilities: repo,
		Geocoder:   geocoder,
		Calendar:   calendar.NewICSSource(true),
		Location:   loc,
	}

	it, err := planner.PlanDay(ctx, services.PlanDayRequest{
		Home:            home,
		Entries:         entries,
		CalendarRef:     opts.ics,
		Day:             day,
		MaxRadiusMeters: radius,
		Preference:      pref,
	})
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(dto.FromItinerary(it))
	}
	return printItinerary(cmd.OutOrStdout(), it)
}

func parseLatLng(s string) (domain.Coordinates, error) {
	latText, lngText, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("--home must be lat,lng, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("--home latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngText), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("--home longitude: %w", err)
	}
	c := domain.Coordinates{Lat: lat, Lng: lng}
	if !c.Valid() {
		return domain.Coordinates{}, fmt.Errorf("--home out of range: %s", c)
	}
	return c, nil
}

// readEventsFile reads events in the same shape the HTTP API accepts.
func readEventsFile(path string) ([]domain.CalendarEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	var reqs []dto.EventRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("read events: parse %q: %w", path, err)
	}

	entries := make([]domain.CalendarEntry, 0, len(reqs))
	for i, r := range reqs {
		e, err := r.Entry()
		if err != nil {
			return nil, fmt.Errorf("read events: item %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func printItinerary(w io.Writer, it domain.Itinerary) error {
	if len(it.Steps) == 0 {
		_, err := fmt.Fprintln(w, "Nothing to plan: no upcoming events.")
		return err
	}

	for _, s := range it.Steps {
		line := fmt.Sprintf("%s  %s", s.Time.Format("15:04"), s.Title)
		if s.Description != "" {
			line += ": " + s.Description
		}
		if s.Cost != nil {
			line += fmt.Sprintf(" [£%.2f]", *s.Cost)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nTotal cost: £%.2f (%d events, %d without parking)\n",
		it.TotalCost, it.EventsPlanned, it.EventsWithoutParking)
	return err
}
