package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/lox/nycair/internal/chart"
	"github.com/lox/nycair/internal/imagegen"
	"github.com/lox/nycair/internal/metrics"
	"github.com/lox/nycair/internal/models"
	"github.com/lox/nycair/internal/scene"
)

// renderError carries the response status of a failed standalone render.
type renderError struct {
	status int
	err    error
}

func (e *renderError) Error() string { return e.err.Error() }
func (e *renderError) Unwrap() error { return e.err }

func writeRenderError(w http.ResponseWriter, err error) {
	var re *renderError
	if errors.As(err, &re) {
		http.Error(w, re.Error(), re.status)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// filterFromQuery reads the drill-down selection from the location, from and
// to query parameters. Missing parameters keep their default value; with
// none present the default state is used.
func filterFromQuery(r *http.Request, ms []models.Measurement, index int) (*models.FilterState, error) {
	q := r.URL.Query()
	if index != scene.DrilldownIndex || (!q.Has("location") && !q.Has("from") && !q.Has("to")) {
		return nil, nil
	}
	state := scene.NewDrill(ms).DefaultState()
	if v := q.Get("location"); v != "" {
		state.Location = v
	}
	for _, f := range []struct {
		name string
		dst  *int
	}{{"from", &state.FromYear}, {"to", &state.ToYear}} {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		year, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s year %q", scene.ErrInvalidOption, f.name, v)
		}
		*f.dst = year
	}
	return &state, nil
}

// renderScene draws scene index on a fresh surface, independent of the
// controller's current scene.
func (s *Server) renderScene(ctx context.Context, r *http.Request, index int) ([]chart.Element, models.FilterState, error) {
	ms, err := s.data.Load(ctx)
	if err != nil {
		return nil, models.FilterState{}, &renderError{http.StatusServiceUnavailable, err}
	}
	var filter *models.FilterState
	if r != nil {
		if filter, err = filterFromQuery(r, ms, index); err != nil {
			return nil, models.FilterState{}, &renderError{http.StatusBadRequest, err}
		}
	}
	cmds, state, err := scene.Commands(ms, index, filter)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, scene.ErrInvalidOption):
			status = http.StatusBadRequest
		case errors.Is(err, scene.ErrUnknownScene):
			status = http.StatusNotFound
		}
		return nil, state, &renderError{status, err}
	}
	surface := chart.NewSurface()
	if err := surface.Apply(cmds...); err != nil {
		return nil, state, err
	}
	return surface.Elements(), state, nil
}

// currentElements returns the controller's surface, showing the first scene
// if nothing has been drawn yet.
func (s *Server) currentElements(ctx context.Context) ([]chart.Element, error) {
	if snap := s.controller.Snapshot(); snap.Shown {
		return snap.Elements, nil
	}
	if err := s.controller.Show(ctx, 0); err != nil && !errors.Is(err, scene.ErrSuperseded) {
		return nil, &renderError{showStatus(err), err}
	}
	return s.controller.Snapshot().Elements, nil
}

func (s *Server) writeImage(w http.ResponseWriter, format, contentType string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.logger.Error("image render failed", "format", format, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.ImagesRenderedTotal.WithLabelValues(format).Inc()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func svgWriter(elems []chart.Element) func(io.Writer) error {
	return func(w io.Writer) error { return chart.WriteSVG(w, elems) }
}

func pngWriter(elems []chart.Element) func(io.Writer) error {
	return func(w io.Writer) error { return chart.WritePNG(w, elems) }
}

func (s *Server) handleCurrentSVG(w http.ResponseWriter, r *http.Request) {
	elems, err := s.currentElements(r.Context())
	if err != nil {
		writeRenderError(w, err)
		return
	}
	s.writeImage(w, "svg", "image/svg+xml", svgWriter(elems))
}

func (s *Server) handleCurrentPNG(w http.ResponseWriter, r *http.Request) {
	elems, err := s.currentElements(r.Context())
	if err != nil {
		writeRenderError(w, err)
		return
	}
	s.writeImage(w, "png", "image/png", pngWriter(elems))
}

func (s *Server) handleSceneSVG(w http.ResponseWriter, r *http.Request) {
	s.handleSceneImage(w, r, "svg")
}

func (s *Server) handleScenePNG(w http.ResponseWriter, r *http.Request) {
	s.handleSceneImage(w, r, "png")
}

func (s *Server) handleScenePDF(w http.ResponseWriter, r *http.Request) {
	s.handleSceneImage(w, r, "pdf")
}

func (s *Server) handleSceneImage(w http.ResponseWriter, r *http.Request, format string) {
	index, ok := sceneIndex(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	elems, _, err := s.renderScene(r.Context(), r, index)
	if err != nil {
		writeRenderError(w, err)
		return
	}

	switch format {
	case "svg":
		s.writeImage(w, format, "image/svg+xml", svgWriter(elems))
	case "png":
		s.writeImage(w, format, "image/png", pngWriter(elems))
	case "pdf":
		narrative, _ := s.controller.Narratives().Get(index)
		report := chart.Report{Title: narrative.Title, Body: narrative.Body}
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"scene-%d.pdf\"", index+1))
		s.writeImage(w, format, "application/pdf", func(w io.Writer) error {
			return chart.WritePDF(w, elems, report)
		})
	}
}

// handlePreview serves the social preview card of a scene. Cards are cached
// per scene for the server's preview TTL.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	index, ok := sceneIndex(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	key := strconv.Itoa(index)
	if data, ok := s.ogCache.Get(key); ok {
		servePreview(w, data)
		return
	}

	elems, _, err := s.renderScene(r.Context(), nil, index)
	if err != nil {
		writeRenderError(w, err)
		return
	}
	var chartPNG bytes.Buffer
	if err := chart.WritePNG(&chartPNG, elems); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	narrative, _ := s.controller.Narratives().Get(index)
	data, err := imagegen.GeneratePreview(chartPNG.Bytes(), imagegen.PreviewData{
		Title:    chartTitle(elems),
		Subtitle: narrative.Title,
		Footer:   "NYC Air Quality: Nitrogen dioxide (NO2)",
	})
	if err != nil {
		s.logger.Error("preview generation failed", "scene", index, "error", err)
		http.Error(w, "preview generation failed", http.StatusInternalServerError)
		return
	}
	s.ogCache.Set(key, data)
	metrics.ImagesRenderedTotal.WithLabelValues("preview").Inc()
	servePreview(w, data)
}

func servePreview(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=600")
	w.Write(data)
}

func chartTitle(elems []chart.Element) string {
	for _, e := range elems {
		if t, ok := e.(chart.Text); ok && t.ElementID() == scene.IDTitle {
			return t.Content
		}
	}
	return ""
}
