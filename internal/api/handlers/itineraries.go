package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"parking-planner-service/internal/api/dto"
	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/services"
)

type ItineraryHandler struct {
	Planner           *services.DayPlanner
	DefaultRadius     float64
	DefaultPreference domain.Preference
	Location          *time.Location
}

// Plan generates the itinerary for the posted events and/or calendar.
func (h *ItineraryHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.ItineraryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Home == nil {
		writeError(w, r, http.StatusBadRequest, "home is required")
		return
	}
	if len(req.Events) == 0 && strings.TrimSpace(req.CalendarURL) == "" {
		writeError(w, r, http.StatusBadRequest, "events or calendar_url is required")
		return
	}

	entries := make([]domain.CalendarEntry, 0, len(req.Events))
	for _, e := range req.Events {
		entry, err := e.Entry()
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		entries = append(entries, entry)
	}

	calendarURL := strings.TrimSpace(req.CalendarURL)
	if calendarURL != "" && !isRemoteCalendar(calendarURL) {
		writeError(w, r, http.StatusBadRequest, "calendar_url must be an http, https or webcal URL")
		return
	}

	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	var day time.Time
	if s := strings.TrimSpace(req.Date); s != "" {
		d, err := time.ParseInLocation(time.DateOnly, s, loc)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = d
	}

	radius := h.DefaultRadius
	if req.MaxRadiusMeters != nil {
		radius = *req.MaxRadiusMeters
	}
	pref := h.DefaultPreference
	if s := strings.TrimSpace(req.Preference); s != "" {
		pref = domain.Preference(strings.ToLower(s))
	}

	it, err := h.Planner.PlanDay(r.Context(), services.PlanDayRequest{
		Home:            domain.Coordinates{Lat: req.Home.Lat, Lng: req.Home.Lng},
		Entries:         entries,
		CalendarRef:     calendarURL,
		Day:             day,
		MaxRadiusMeters: radius,
		Preference:      pref,
	})
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrCalendarUnavailable):
		log.Ctx(r.Context()).Warn().Err(err).Msg("calendar import failed")
		writeError(w, r, http.StatusBadGateway, "calendar unavailable")
		return
	case err != nil:
		log.Ctx(r.Context()).Error().Err(err).Msg("plan itinerary failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromItinerary(it))
}

func isRemoteCalendar(ref string) bool {
	lower := strings.ToLower(ref)
	for _, scheme := range []string{"http://", "https://", "webcal://"} {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}
