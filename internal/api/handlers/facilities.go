package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"parking-planner-service/internal/api/dto"
	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/geo"
	"parking-planner-service/internal/ports"
	"parking-planner-service/internal/services"
)

type FacilityHandler struct {
	Repo              ports.FacilityRepository
	DefaultRadius     float64
	DefaultPreference domain.Preference
	// Zone opening hours are evaluated in. Defaults to UTC.
	Location          *time.Location
	Now               func() time.Time
}

// List returns every loaded facility.
func (h *FacilityHandler) List(w http.ResponseWriter, r *http.Request) {
	fs, err := h.Repo.ListFacilities(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("list facilities failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListFacilityResponse{Facilities: make([]dto.FacilityResponse, 0, len(fs))}
	for _, f := range fs {
		res.Facilities = append(res.Facilities, dto.FromFacility(f))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Best returns the facility the planner would choose for a point and time.
// Query: lat, lng (required), at (RFC3339, default now), radius, preference.
func (h *FacilityHandler) Best(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	target, ok := parsePoint(q.Get("lat"), q.Get("lng"))
	if !ok {
		writeError(w, r, http.StatusBadRequest, "lat and lng must be valid coordinates")
		return
	}

	at := time.Now()
	if h.Now != nil {
		at = h.Now()
	}
	if s := strings.TrimSpace(q.Get("at")); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "at must be an RFC3339 timestamp")
			return
		}
		at = t
	}
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	at = at.In(loc)

	radius := h.DefaultRadius
	if s := strings.TrimSpace(q.Get("radius")); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 || v > domain.MaxRadiusMeters {
			writeError(w, r, http.StatusBadRequest, "radius must be a number in (0, 5000]")
			return
		}
		radius = v
	}

	pref := h.DefaultPreference
	if s := strings.TrimSpace(q.Get("preference")); s != "" {
		p, err := domain.ParsePreference(s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "preference must be cheap or closest")
			return
		}
		pref = p
	}

	fs, err := h.Repo.ListFacilities(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("list facilities failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	best, ok := services.FindBestSpot(fs, target, at, radius, pref)
	if !ok {
		writeError(w, r, http.StatusNotFound, "no parking available")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.BestFacilityResponse{
		Facility:       dto.FromFacility(best),
		DistanceMeters: geo.DistanceMeters(best.Location, target),
	})
}

func parsePoint(latText, lngText string) (domain.Coordinates, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return domain.Coordinates{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngText), 64)
	if err != nil {
		return domain.Coordinates{}, false
	}
	c := domain.Coordinates{Lat: lat, Lng: lng}
	return c, c.Valid()
}
