// Package server exposes place resolution over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/placetag-cli/internal/geo"
	"github.com/sells-group/placetag-cli/internal/registry"
	"github.com/sells-group/placetag-cli/internal/resolve"
	"github.com/sells-group/placetag-cli/internal/tags"
)

// Resolver is the subset of *resolve.Resolver served here.
type Resolver interface {
	Resolve(p geo.GeoPoint) resolve.Resolution
	Overlaps(p geo.GeoPoint) []resolve.SourceMatch
	Sources() []string
}

// PlaceResponse is the body of GET /v1/place.
type PlaceResponse struct {
	Lat           float64  `json:"lat"`
	Lon           float64  `json:"lon"`
	Found         bool     `json:"found"`
	Place         string   `json:"place,omitempty"`
	Source        string   `json:"source,omitempty"`
	Territories   []string `json:"territories"`
	TerritoryList string   `json:"territory_list"`
	Tags          []string `json:"tags"`
}

// DatasetsResponse is the body of GET /v1/datasets.
type DatasetsResponse struct {
	Loaded   []string         `json:"loaded"`
	Failures []FailureSummary `json:"failures"`
}

// FailureSummary is one dataset that did not load.
type FailureSummary struct {
	Dataset string `json:"dataset"`
	Error   string `json:"error"`
}

type handler struct {
	resolver Resolver
	failures []registry.LoadFailure
}

// NewRouter builds the API routes.
func NewRouter(r Resolver, failures []registry.LoadFailure) http.Handler {
	h := &handler{resolver: r, failures: failures}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(requestLogger)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.Route("/v1", func(r chi.Router) {
		r.Get("/place", h.place)
		r.Get("/overlaps", h.overlaps)
		r.Get("/datasets", h.datasets)
	})

	return mux
}

func (h *handler) place(w http.ResponseWriter, r *http.Request) {
	p, ok := pointParam(w, r)
	if !ok {
		return
	}

	res := h.resolver.Resolve(p)
	body := PlaceResponse{
		Lat:           p.Lat,
		Lon:           p.Lon,
		Found:         res.Found,
		Territories:   res.Territories,
		TerritoryList: res.TerritoryList(),
		Tags:          []string{},
	}
	if body.Territories == nil {
		body.Territories = []string{}
	}
	if res.Found {
		body.Place = res.Place.Name
		body.Source = res.Place.Source
		body.Tags = append(body.Tags, tags.Make(tags.Place, res.Place.Name))
	}
	if len(res.Territories) > 0 {
		body.Tags = append(body.Tags, tags.Make(tags.Territory, body.TerritoryList))
	}

	writeJSON(w, http.StatusOK, body)
}

func (h *handler) overlaps(w http.ResponseWriter, r *http.Request) {
	p, ok := pointParam(w, r)
	if !ok {
		return
	}
	matches := h.resolver.Overlaps(p)
	if matches == nil {
		matches = []resolve.SourceMatch{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (h *handler) datasets(w http.ResponseWriter, _ *http.Request) {
	body := DatasetsResponse{Loaded: h.resolver.Sources(), Failures: []FailureSummary{}}
	for _, f := range h.failures {
		body.Failures = append(body.Failures, FailureSummary{Dataset: f.Dataset, Error: f.Err.Error()})
	}
	writeJSON(w, http.StatusOK, body)
}

// pointParam parses lat and lon query parameters, writing a 400 response
// when they are missing or out of range.
func pointParam(w http.ResponseWriter, r *http.Request) (geo.GeoPoint, bool) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "lat must be a number")
		return geo.GeoPoint{}, false
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "lon must be a number")
		return geo.GeoPoint{}, false
	}
	p, err := geo.NewGeoPoint(lat, lon)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return geo.GeoPoint{}, false
	}
	return p, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("component", "server"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
