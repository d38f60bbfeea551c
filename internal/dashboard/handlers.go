package dashboard

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/openclimate-tools/climateview/internal/chart"
	"github.com/openclimate-tools/climateview/internal/view"
)

func (s *Server) healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// indexHandler renders the selection page: a country multi-select for
// the timeseries view and a single-select for the reconciliation view.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	names, err := s.svc.ActorNames(r.Context())
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}

	all := actorOptions(names)
	var reconcilable []actorOption
	for _, opt := range all {
		if _, ok := s.svc.SubnationalSource(opt.ID); ok {
			reconcilable = append(reconcilable, opt)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = indexTemplate.Execute(w, indexData{
		Actors:       all,
		Reconcilable: reconcilable,
	})
	if err != nil {
		s.logger.Error("render index", "error", err)
	}
}

func (s *Server) emissionsChartHandler(w http.ResponseWriter, r *http.Request) {
	actorIDs := parseActors(r)
	if len(actorIDs) == 0 {
		s.badRequest(w, "missing actors parameter")
		return
	}

	actors, err := s.builder.Timeseries(r.Context(), actorIDs)
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}

	format := s.chartFormat(r)
	w.Header().Set("Content-Type", contentType(format))
	if err := chart.RenderTimeseries(w, format, actors); err != nil {
		s.logger.Error("render timeseries chart", "error", err)
	}
}

func (s *Server) reconciliationChartHandler(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.reconciliation(w, r)
	if !ok {
		return
	}

	format := s.chartFormat(r)
	w.Header().Set("Content-Type", contentType(format))
	if err := chart.RenderReconciliation(w, format, rec.Label, rec.National, rec.SubTotal); err != nil {
		s.logger.Error("render reconciliation chart", "error", err)
	}
}

func (s *Server) differenceChartHandler(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.reconciliation(w, r)
	if !ok {
		return
	}

	format := s.chartFormat(r)
	w.Header().Set("Content-Type", contentType(format))
	if err := chart.RenderDifference(w, format, rec.Subnational, rec.Difference); err != nil {
		s.logger.Error("render difference chart", "error", err)
	}
}

func (s *Server) actorsHandler(w http.ResponseWriter, r *http.Request) {
	names, err := s.svc.ActorNames(r.Context())
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusOK, actorOptions(names))
}

func (s *Server) reconciliationHandler(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.reconciliation(w, r)
	if !ok {
		return
	}

	type yearRow struct {
		Year       int     `json:"year"`
		National   float64 `json:"national"`
		SubTotal   float64 `json:"subnational_total"`
		Difference float64 `json:"difference"`
	}

	rows := make([]yearRow, 0, len(rec.Difference))
	for _, year := range rec.Difference.Years() {
		rows = append(rows, yearRow{
			Year:       year,
			National:   rec.National[year],
			SubTotal:   rec.SubTotal[year],
			Difference: rec.Difference[year],
		})
	}

	s.sendJSON(w, http.StatusOK, map[string]any{
		"actor": rec.Actor,
		"name":  rec.Label,
		"years": rows,
	})
}

// reconciliation parses the actor parameter and builds the view model,
// writing the error response itself when it fails.
func (s *Server) reconciliation(w http.ResponseWriter, r *http.Request) (*view.Reconciliation, bool) {
	actorID := strings.TrimSpace(r.URL.Query().Get("actor"))
	if actorID == "" {
		s.badRequest(w, "missing actor parameter")
		return nil, false
	}

	result, err := s.builder.Reconcile(r.Context(), actorID)
	if err != nil {
		s.upstreamError(w, r, err)
		return nil, false
	}
	return result, true
}

func (s *Server) chartFormat(r *http.Request) string {
	if format := r.URL.Query().Get("format"); format != "" {
		return format
	}
	return s.cfg.Output.Format
}

func contentType(format string) string {
	if format == "svg" {
		return "image/svg+xml"
	}
	return "image/png"
}

// parseActors accepts both repeated actors params and comma lists
func parseActors(r *http.Request) []string {
	var out []string
	for _, raw := range r.URL.Query()["actors"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

type actorOption struct {
	ID   string `json:"actor"`
	Name string `json:"name"`
}

func actorOptions(names map[string]string) []actorOption {
	options := make([]actorOption, 0, len(names))
	for id, name := range names {
		options = append(options, actorOption{ID: id, Name: name})
	}
	sort.Slice(options, func(i, j int) bool { return options[i].Name < options[j].Name })
	return options
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, message string) {
	s.sendJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}

// upstreamError reports a failed fetch or an unknown selection. The
// data sources are external, so everything surfaces as a bad gateway.
func (s *Server) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("upstream failure", "path", r.URL.Path, "error", err)
	s.sendJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
}
