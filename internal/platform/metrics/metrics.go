package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"parking-planner-service/internal/domain"
)

// Planner records itinerary and HTTP metrics in Prometheus.
type Planner struct {
	plans          prometheus.Counter
	steps          *prometheus.CounterVec
	withoutParking prometheus.Counter
	relocations    *prometheus.CounterVec
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// NewPlanner registers planner metrics on reg. If reg is nil, the default
// registerer is used. Collectors that are already registered are reused.
func NewPlanner(reg prometheus.Registerer) (*Planner, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	plans := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planner_itineraries_total",
		Help: "Total number of generated itineraries",
	})
	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_steps_total",
		Help: "Timeline steps emitted, by kind",
	}, []string{"kind"})
	withoutParking := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planner_events_without_parking_total",
		Help: "Events for which no facility was open within the radius",
	})
	relocations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_relocations_total",
		Help: "Grace-period expiries, by outcome",
	}, []string{"outcome"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served",
	}, []string{"route", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	var err error
	if plans, err = register(reg, plans); err != nil {
		return nil, err
	}
	if steps, err = register(reg, steps); err != nil {
		return nil, err
	}
	if withoutParking, err = register(reg, withoutParking); err != nil {
		return nil, err
	}
	if relocations, err = register(reg, relocations); err != nil {
		return nil, err
	}
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}

	return &Planner{
		plans:          plans,
		steps:          steps,
		withoutParking: withoutParking,
		relocations:    relocations,
		requests:       requests,
		latency:        latency,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordItinerary counts one generated itinerary and its steps.
func (p *Planner) RecordItinerary(it domain.Itinerary) {
	p.plans.Inc()
	p.withoutParking.Add(float64(it.EventsWithoutParking))

	for _, s := range it.Steps {
		p.steps.WithLabelValues(string(s.Kind)).Inc()
		switch s.Title {
		case "Move Car":
			p.relocations.WithLabelValues("moved").Inc()
		case "Limit Reached":
			p.relocations.WithLabelValues("limit_reached").Inc()
		}
	}
}

// RecordRequest observes one served HTTP request.
func (p *Planner) RecordRequest(route, method string, status int, d time.Duration) {
	p.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	p.latency.WithLabelValues(route, method).Observe(d.Seconds())
}
