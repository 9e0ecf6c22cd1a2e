package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lox/nycair/internal/aggregate"
	"github.com/lox/nycair/internal/chart"
	"github.com/lox/nycair/internal/dataset"
	"github.com/lox/nycair/internal/models"
	"github.com/lox/nycair/internal/scene"
)

// SceneResponse is the JSON form of a rendered scene.
type SceneResponse struct {
	Index     int                 `json:"index"`
	Narrative scene.Narrative     `json:"narrative"`
	Filter    *models.FilterState `json:"filter,omitempty"`
	Elements  []chart.Described   `json:"elements"`
}

// YearlyResponse is the yearly average series of one location, or of the
// whole city when Location is empty.
type YearlyResponse struct {
	Location string                 `json:"location,omitempty"`
	Points   []models.YearlyAverage `json:"points"`
}

// LocationsResponse lists the drill-down choices.
type LocationsResponse struct {
	Locations []string `json:"locations"`
	Years     []int    `json:"years"`
}

// HealthStatus reports whether the dataset loads and what it contained.
type HealthStatus struct {
	Status         string `json:"status"`
	Source         string `json:"source,omitempty"`
	Rows           int    `json:"rows"`
	Kept           int    `json:"kept"`
	OtherPollutant int    `json:"other_pollutant"`
	BadDate        int    `json:"bad_date"`
	NoValue        int    `json:"no_value"`
	Error          string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleAPIScene(w http.ResponseWriter, r *http.Request) {
	index, ok := sceneIndex(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	elems, state, err := s.renderScene(r.Context(), r, index)
	if err != nil {
		writeRenderError(w, err)
		return
	}
	narrative, _ := s.controller.Narratives().Get(index)
	resp := SceneResponse{Index: index, Narrative: narrative, Elements: chart.Describe(elems)}
	if index == scene.DrilldownIndex {
		resp.Filter = &state
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPIYearly(w http.ResponseWriter, r *http.Request) {
	ms, err := s.data.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	resp := YearlyResponse{Location: location}
	if location == "" {
		resp.Points = aggregate.ByYear(ms)
	} else {
		series, _ := aggregate.ByYearAndLocation(ms, []string{location}).Get(location)
		resp.Points = series.Points
	}
	if resp.Points == nil {
		resp.Points = []models.YearlyAverage{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPILocations(w http.ResponseWriter, r *http.Request) {
	ms, err := s.data.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	d := scene.NewDrill(ms)
	writeJSON(w, http.StatusOK, LocationsResponse{Locations: d.Locations(), Years: d.Years()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.data.Load(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthStatus{Status: "error", Error: err.Error()})
		return
	}
	stats, _ := s.data.Stats()
	health := HealthStatus{
		Status:         "ok",
		Rows:           stats.Rows,
		Kept:           stats.Kept,
		OtherPollutant: stats.OtherPollutant,
		BadDate:        stats.BadDate,
		NoValue:        stats.NoValue,
	}
	if src, ok := s.data.(interface{ Source() dataset.Source }); ok {
		health.Source = src.Source().String()
	}
	writeJSON(w, http.StatusOK, health)
}
