package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dawnpatrol/internal/types"
)

// healthResponse is the body for the liveness endpoint.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// conditionsResponse pairs the resolved conditions with the direction
// assessment and the window-bounded sample history they were derived from.
type conditionsResponse struct {
	Conditions types.CurrentConditions   `json:"conditions"`
	Direction  types.DirectionAssessment `json:"direction"`
	Samples    types.SampleSeries        `json:"samples"`
}

// HandleHealth reports process liveness and build identity.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, APIResponse{Data: healthResponse{
		Status:  "ok",
		Version: s.Config.Build.Version,
		Commit:  s.Config.Build.Commit,
	}})
}

// HandleListSites returns all configured sites.
func (s *Server) HandleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.Sites.List(r.Context())
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: sites})
}

// HandleGetSite returns one site's configuration.
func (s *Server) HandleGetSite(w http.ResponseWriter, r *http.Request) {
	site, err := s.Sites.Get(r.Context(), chi.URLParam(r, "siteID"))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: site})
}

// HandleConditions returns the site's current conditions with freshness
// arbitration applied, the direction assessment, and the samples inside the
// active analysis window.
func (s *Server) HandleConditions(w http.ResponseWriter, r *http.Request) {
	report, err := s.Evaluator.Report(r.Context(), chi.URLParam(r, "siteID"))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: conditionsResponse{
		Conditions: report.Conditions,
		Direction:  report.Direction,
		Samples:    report.Samples,
	}})
}

// HandleWindow returns the active analysis window in the site's local time.
func (s *Server) HandleWindow(w http.ResponseWriter, r *http.Request) {
	window, err := s.Evaluator.Window(r.Context(), chi.URLParam(r, "siteID"))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: window})
}

// HandleDecision runs a full evaluation and returns the complete report,
// including the five-factor breakdown behind the recommendation.
func (s *Server) HandleDecision(w http.ResponseWriter, r *http.Request) {
	report, err := s.Evaluator.Report(r.Context(), chi.URLParam(r, "siteID"))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: report})
}
