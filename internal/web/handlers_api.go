package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/worlddash/internal/core"
	"github.com/JonMunkholm/worlddash/internal/logging"
	"github.com/JonMunkholm/worlddash/internal/present"
)

type datasetResponse struct {
	Version         string         `json:"version"`
	LoadedAt        time.Time      `json:"loaded_at"`
	Count           int            `json:"count"`
	TotalPopulation int64          `json:"total_population"`
	Rows            []core.Country `json:"rows"`
}

type filterResponse struct {
	core.View
	Count int `json:"count"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Countries int    `json:"countries"`
}

// handleDataset serves the merged table. The dataset version is the ETag.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	etag := `"` + s.dataset.Version() + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, r, datasetResponse{
		Version:         s.dataset.Version(),
		LoadedAt:        s.dataset.LoadedAt(),
		Count:           s.dataset.Len(),
		TotalPopulation: s.dataset.TotalPopulation(),
		Rows:            s.dataset.Rows(),
	})
}

func (s *Server) handleBuckets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.catalog)
}

// apiCriteria resolves the English query parameters of an API request.
func (s *Server) apiCriteria(r *http.Request) (core.Criteria, error) {
	return s.catalog.Criteria(apiParams.selections(r.URL.Query()))
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	crit, err := s.apiCriteria(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	view := s.filter(r, "api_filter", crit)
	writeJSON(w, r, filterResponse{View: view, Count: view.Len()})
}

// handleExport streams the filtered view as CSV. Concurrent exports are
// bounded by the export limiter.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	crit, err := s.apiCriteria(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	if err := s.exports.acquire(r.Context()); err != nil {
		if errors.Is(err, ErrExportBusy) {
			w.Header().Set("Retry-After", "5")
			s.respondError(w, r, err, http.StatusTooManyRequests)
			return
		}
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	defer s.exports.release()

	view := s.filter(r, "api_export", crit)

	name := "worlddash"
	if v := view.Version; len(v) >= 8 {
		name += "-" + v[:8]
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, name))
	if err := present.WriteCSV(w, view); err != nil {
		logging.FromContext(r.Context()).Error("export failed", "rows", view.Len(), "error", err)
	}
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "page")
	page, ok := present.ParsePage(name)
	if !ok {
		s.respondError(w, r, fmt.Errorf("chart page %q not found", name), http.StatusNotFound)
		return
	}
	crit, err := s.apiCriteria(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	view := s.filter(r, "api_charts", crit)
	writeJSON(w, r, present.ChartsFor(page, view))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, healthResponse{
		Status:    "ok",
		Version:   s.dataset.Version(),
		Countries: s.dataset.Len(),
	})
}
