package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lox/nycair/internal/scene"
)

// sceneIndex reads the {index} URL parameter.
func sceneIndex(r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 || i >= scene.Count {
		return 0, false
	}
	return i, true
}

// showStatus maps the result of a scene change to a response status. A
// superseded change is not an error: the page shows whatever won.
func showStatus(err error) int {
	switch {
	case err == nil, errors.Is(err, scene.ErrSuperseded):
		return http.StatusOK
	case errors.Is(err, scene.ErrUnknownScene):
		return http.StatusNotFound
	}
	return http.StatusServiceUnavailable
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if !s.controller.Snapshot().Shown {
		status = showStatus(s.controller.Show(r.Context(), 0))
	}
	s.renderPage(w, status)
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	index, ok := sceneIndex(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	status := showStatus(s.controller.Show(r.Context(), index))
	if status == http.StatusNotFound {
		http.NotFound(w, r)
		return
	}
	s.renderPage(w, status)
}

// handleFilter applies the submitted selector values as one change and
// redirects back to the page. Fields left out of the form keep their value.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	if index, ok := sceneIndex(r); !ok || index != scene.DrilldownIndex {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap := s.controller.Snapshot()
	if !snap.Interactive() {
		err := s.controller.Show(r.Context(), scene.DrilldownIndex)
		if err != nil && !errors.Is(err, scene.ErrSuperseded) {
			http.Error(w, err.Error(), showStatus(err))
			return
		}
		snap = s.controller.Snapshot()
	}

	state := snap.Filter
	if v := r.PostForm.Get(scene.SelectLocation); v != "" {
		state.Location = v
	}
	for _, f := range []struct {
		name string
		dst  *int
	}{{scene.SelectFrom, &state.FromYear}, {scene.SelectTo, &state.ToYear}} {
		v := r.PostForm.Get(f.name)
		if v == "" {
			continue
		}
		year, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid "+f.name+" year: "+v, http.StatusBadRequest)
			return
		}
		*f.dst = year
	}

	if state != snap.Filter {
		if err := s.controller.SetFilter(state); err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, scene.ErrInvalidOption):
				status = http.StatusBadRequest
			case errors.Is(err, scene.ErrNotInteractive):
				status = http.StatusConflict
			}
			http.Error(w, err.Error(), status)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderPage(w http.ResponseWriter, status int) {
	data, err := s.pageData(s.controller.Snapshot())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error("template error", "template", "index.html", "error", err)
	}
}
