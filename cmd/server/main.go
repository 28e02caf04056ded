package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"parking-planner-service/internal/adapters/calendar"
	"parking-planner-service/internal/api"
	"parking-planner-service/internal/app"
	"parking-planner-service/internal/config"
	"parking-planner-service/internal/platform/logging"
	"parking-planner-service/internal/platform/metrics"
	"parking-planner-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQL, geocoders, caches) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logging.Setup("prod", "info")
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.AppEnv, cfg.LogLevel)
	if envErr != nil {
		log.Debug().Msg("no .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer store.Close()

	// Seed demo data on startup for local runs.
	if err := store.SeedIfPresent(ctx, cfg.SeedPath); err != nil {
		log.Fatal().Err(err).Msg("seed facilities")
	}

	// Facilities are static reference data; read them once.
	facilities, err := store.LoadFacilities(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load facilities")
	}

	geocoder, closeGeocoder, err := app.Geocoder(ctx, cfg, store)
	if err != nil {
		log.Fatal().Err(err).Msg("configure geocoder")
	}
	defer closeGeocoder()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.NewPlanner(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("register metrics")
	}

	loc := cfg.Location()
	planner := &services.DayPlanner{
		Facilities: facilities,
		Geocoder:   geocoder,
		Calendar:   calendar.NewICSSource(false),
		Recorder:   m,
		Location:   loc,
	}

	router := api.NewRouter(api.Deps{
		Facilities:        facilities,
		Planner:           planner,
		Metrics:           m,
		Gatherer:          reg,
		DefaultRadius:     cfg.DefaultRadiusMeters,
		DefaultPreference: cfg.Preference(),
		Location:          loc,
	})

	// Timeouts are tuned for cold-cache planning (geocoding and calendar fetches).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().
		Str("addr", srv.Addr).
		Str("db_driver", cfg.DBDriver).
		Str("geocoder", cfg.Geocoder).
		Str("timezone", loc.String()).
		Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
