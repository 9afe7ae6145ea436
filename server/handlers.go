package server

import (
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/lumen-org/lumen/engine"
	"github.com/lumen-org/lumen/helpers"
	"github.com/lumen-org/lumen/schema"
	"github.com/lumen-org/lumen/warehouse"
)

// ============================================================================
// DATASET HANDLERS
// ============================================================================

type tableResponse struct {
	Dataset string         `json:"dataset"`
	Summary engine.Summary `json:"summary"`
	Columns []string       `json:"columns"`
	Rows    [][]any        `json:"rows"`
	Message string         `json:"message,omitempty"`
}

// filterFor builds the dataset's FilterConfig from query parameters.
func filterFor(dataset string, q url.Values) (engine.FilterConfig, error) {
	if dataset == "people" {
		return peopleFilter(q)
	}
	return sessionsFilter(q)
}

func (s *Server) datasetTable(ds *warehouse.Datasets, name string) *engine.Table {
	if name == "people" {
		return ds.People
	}
	return ds.Sessions
}

// filteredView runs the full filter-and-project pass for a request.
// Loader failures abort the render (500); bad parameters and unknown
// columns are the caller's mistake (400).
func (s *Server) filteredView(w http.ResponseWriter, r *http.Request, dataset string) (view engine.Rowset, summary engine.Summary, ok bool) {
	ds, err := s.source.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("error loading data: %v", err))
		return nil, engine.Summary{}, false
	}

	full := s.datasetTable(ds, dataset)

	f, err := filterFor(dataset, r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, engine.Summary{}, false
	}

	filtered, err := engine.Apply(full, f)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, engine.Summary{}, false
	}

	cols := columnSelection(r.URL.Query(), schema.DefaultColumns(dataset, full))
	view, err = engine.Project(filtered, cols)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, engine.Summary{}, false
	}

	return view, engine.Summarize(filtered, full), true
}

func (s *Server) handleDataset(dataset string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, summary, ok := s.filteredView(w, r, dataset)
		if !ok {
			return
		}

		resp := tableResponse{
			Dataset: dataset,
			Summary: summary,
			Columns: view.Columns(),
			Rows:    renderRows(view),
		}
		switch {
		case len(view.Columns()) == 0:
			resp.Message = "select at least one column to display"
		case summary.Matched == 0:
			resp.Message = "no rows match the active filters"
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// renderRows marshals cells as typed JSON values; the empty result is an
// empty array, not null.
func renderRows(view engine.Rowset) [][]any {
	rows := make([][]any, 0, view.Len())
	cols := view.Columns()
	for i := 0; i < view.Len(); i++ {
		row := make([]any, len(cols))
		for j, col := range cols {
			row[j] = view.Value(i, col).JSON()
		}
		rows = append(rows, row)
	}
	return rows
}

// ============================================================================
// EXPORT
// ============================================================================

var exportFilenames = map[string]string{
	"people":   "people_data.csv",
	"sessions": "sessions_data.csv",
}

func (s *Server) handleExport(dataset string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, _, ok := s.filteredView(w, r, dataset)
		if !ok {
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilenames[dataset]))
		// Headers are already sent; a mid-stream failure can only be logged.
		if err := helpers.WriteCSV(w, view); err != nil {
			log.Printf("export %s: %v", dataset, err)
		}
	}
}

// ============================================================================
// METRICS & INSIGHTS — full-table aggregates, never filtered
// ============================================================================

type peopleMetrics struct {
	TotalUsers         int     `json:"totalUsers"`
	AvgSessionsPerUser float64 `json:"avgSessionsPerUser"`
	TotalSessions      float64 `json:"totalSessions"`
	BusinessUsers      int     `json:"businessUsers"`
}

type sessionMetrics struct {
	TotalSessions     int     `json:"totalSessions"`
	AvgDuration       float64 `json:"avgDuration"`
	TotalScreens      float64 `json:"totalScreens"`
	TotalAutocaptures float64 `json:"totalAutocaptures"`
}

type metricsResponse struct {
	People   peopleMetrics  `json:"people"`
	Sessions sessionMetrics `json:"sessions"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ds, err := s.source.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("error loading data: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, metricsResponse{
		People: peopleMetrics{
			TotalUsers:         ds.People.Len(),
			AvgSessionsPerUser: engine.Mean(ds.People, "total_sessions"),
			TotalSessions:      engine.Sum(ds.People, "total_sessions"),
			BusinessUsers:      engine.CountTrue(ds.People, "businessUser"),
		},
		Sessions: sessionMetrics{
			TotalSessions:     ds.Sessions.Len(),
			AvgDuration:       engine.Mean(ds.Sessions, "session_duration"),
			TotalScreens:      engine.Sum(ds.Sessions, "screen_count"),
			TotalAutocaptures: engine.Sum(ds.Sessions, "autocapture_count"),
		},
	})
}

type durationStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`
}

type businessSplit struct {
	Business int `json:"business"`
	Personal int `json:"personal"`
}

type insightsResponse struct {
	TopCountries []engine.Group `json:"topCountries"`
	Duration     durationStats  `json:"sessionDuration"`
	Users        businessSplit  `json:"userSplit"`
	EventTotals  map[string]int `json:"eventTotals"`
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	ds, err := s.source.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("error loading data: %v", err))
		return
	}

	business := engine.CountTrue(ds.People, "businessUser")

	eventTotals := make(map[string]int)
	sessionsSchema := schema.Discover("sessions", ds.Sessions)
	for _, col := range sessionsSchema.Columns {
		if col.Kind == engine.KindBool.String() {
			eventTotals[col.Key] = engine.CountTrue(ds.Sessions, col.Key)
		}
	}

	writeJSON(w, http.StatusOK, insightsResponse{
		TopCountries: engine.GroupCount(ds.People, "country", 10),
		Duration: durationStats{
			Mean:   engine.Mean(ds.Sessions, "session_duration"),
			Median: engine.Median(ds.Sessions, "session_duration"),
			Max:    engine.Max(ds.Sessions, "session_duration"),
			Min:    engine.Min(ds.Sessions, "session_duration"),
		},
		Users: businessSplit{
			Business: business,
			Personal: ds.People.Len() - business,
		},
		EventTotals: eventTotals,
	})
}

// ============================================================================
// SCHEMA & CACHE
// ============================================================================

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name != "people" && name != "sessions" {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown dataset %q", name))
		return
	}

	ds, err := s.source.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("error loading data: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, schema.Discover(name, s.datasetTable(ds, name)))
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	s.source.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}
