package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parking-planner-service/internal/api/handlers"
	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/platform/metrics"
	"parking-planner-service/internal/ports"
	"parking-planner-service/internal/services"
)

// Dependencies of the HTTP API. Metrics and Gatherer are optional.
type Deps struct {
	Facilities        ports.FacilityRepository
	Planner           *services.DayPlanner
	Metrics           *metrics.Planner
	Gatherer          prometheus.Gatherer
	DefaultRadius     float64
	DefaultPreference domain.Preference
	Location          *time.Location
	Now               func() time.Time
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()

	facilityHandler := &handlers.FacilityHandler{
		Repo:              d.Facilities,
		DefaultRadius:     d.DefaultRadius,
		DefaultPreference: d.DefaultPreference,
		Location:          d.Location,
		Now:               d.Now,
	}
	itineraryHandler := &handlers.ItineraryHandler{
		Planner:           d.Planner,
		DefaultRadius:     d.DefaultRadius,
		DefaultPreference: d.DefaultPreference,
		Location:          d.Location,
	}

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.HandleFunc("/facilities", facilityHandler.List).Methods(http.MethodGet)
	// expects ?lat={float}&lng={float}[&at={RFC3339}&radius={meters}&preference={cheap|closest}]
	r.HandleFunc("/facilities/best", facilityHandler.Best).Methods(http.MethodGet)
	r.HandleFunc("/itineraries", itineraryHandler.Plan).Methods(http.MethodPost)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	r.Use(loggingMiddleware(d.Metrics))

	return requestIDMiddleware(r)
}
