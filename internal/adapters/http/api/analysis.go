package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/okian/matchbot/internal/app/analysis"
	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/pkg/logger"
)

const maxAnalyzeBody = 64 << 10

// AnalysisHandler serves the candidate analysis routes.
type AnalysisHandler struct {
	analyzer Analyzer
	ready    Check
	log      logger.Logger
}

// NewAnalysisHandler creates an analysis handler.
func NewAnalysisHandler(a Analyzer, ready Check, log logger.Logger) *AnalysisHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AnalysisHandler{analyzer: a, ready: ready, log: log.Named("analysis")}
}

// HandleAnalyze handles POST /api/analyze requests.
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	var req analysis.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxAnalyzeBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.ProfileKey = strings.TrimSpace(req.ProfileKey)
	req.JobKey = strings.TrimSpace(req.JobKey)
	if req.ProfileKey == "" || req.JobKey == "" {
		writeError(w, http.StatusBadRequest, "profile_key and job_key are required")
		return
	}
	if err := h.ready.err(); err != nil {
		h.log.Error(ctx, "analysis not configured", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "API configuration error")
		return
	}

	res, err := h.analyzer.Analyze(ctx, req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, analysis.ErrNotFound):
		h.log.Warn(ctx, "analysis input missing", logger.Error(err))
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Profile or job not found", Details: err.Error()})
	case errors.Is(err, analysis.ErrEmail):
		h.log.Error(ctx, "email generation failed", logger.Error(err))
		writeError(w, http.StatusBadGateway, "Email generation failed")
	default:
		h.log.Error(ctx, "analysis failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "Analysis failed")
	}
}

// HandleProfiles handles GET /api/profiles requests.
func (h *AnalysisHandler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	if err := h.ready.err(); err != nil {
		h.log.Error(ctx, "analysis not configured", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "API configuration error")
		return
	}
	profiles, err := h.analyzer.Profiles(ctx)
	if err != nil {
		h.log.Error(ctx, "profiles failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch profiles")
		return
	}
	if profiles == nil {
		profiles = []model.ProfileSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}
