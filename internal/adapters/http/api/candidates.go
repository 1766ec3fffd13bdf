package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/matchbot/internal/app/dashboard"
	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/pkg/logger"
)

const (
	maxRejectBody = 1 << 20
	xlsxType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// CandidatesHandler serves the recruiter dashboard routes.
type CandidatesHandler struct {
	dashboard   Dashboard
	ready       Check
	rejectReady Check
	log         logger.Logger
}

// NewCandidatesHandler creates a dashboard handler. ready gates the read
// routes; rejectReady gates the workflow proxy.
func NewCandidatesHandler(d Dashboard, ready, rejectReady Check, log logger.Logger) *CandidatesHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CandidatesHandler{dashboard: d, ready: ready, rejectReady: rejectReady, log: log.Named("dashboard")}
}

// HandleCandidates handles GET /api/candidates requests.
func (h *CandidatesHandler) HandleCandidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	if err := h.ready.err(); err != nil {
		h.log.Error(ctx, "dashboard not configured", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	cands, err := h.dashboard.Candidates(ctx)
	if err != nil {
		h.log.Error(ctx, "candidates failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if cands == nil {
		cands = []model.DashboardCandidate{}
	}
	writeJSON(w, http.StatusOK, cands)
}

// HandleExport handles GET /api/candidates/export requests.
func (h *CandidatesHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	if err := h.ready.err(); err != nil {
		h.log.Error(ctx, "dashboard not configured", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	var buf bytes.Buffer
	if err := h.dashboard.Export(ctx, &buf); err != nil {
		h.log.Error(ctx, "export failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", `attachment; filename="candidates.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleJobs handles GET /api/jobs requests.
func (h *CandidatesHandler) HandleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	if err := h.ready.err(); err != nil {
		h.log.Error(ctx, "dashboard not configured", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	jobs, err := h.dashboard.Jobs(ctx)
	if err != nil {
		h.log.Error(ctx, "jobs failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if jobs == nil {
		jobs = []model.JobSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// HandleReject handles POST /api/reject requests: the body is forwarded to
// the rejection workflow and the upstream answer relayed.
func (h *CandidatesHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	if err := h.rejectReady.err(); err != nil {
		h.log.Error(ctx, "reject not configured", logger.Error(err))
		writeError(w, http.StatusInternalServerError, ErrConfig.Error())
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRejectBody))
	if err != nil || !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.dashboard.Reject(ctx, body)
	switch {
	case errors.Is(err, dashboard.ErrNoWorkflow):
		h.log.Error(ctx, "reject not configured", logger.Error(err))
		writeError(w, http.StatusInternalServerError, ErrConfig.Error())
		return
	case err != nil:
		h.log.Error(ctx, "reject call failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !resp.OK() {
		h.log.Warn(ctx, "reject refused upstream",
			logger.Int("status", resp.Status),
			logger.String("body", string(resp.Body)))
		writeJSON(w, resp.Status, errorResponse{Error: "HrFlow error", Details: string(resp.Body), Status: resp.Status})
		return
	}
	if !json.Valid(resp.Body) {
		writeError(w, http.StatusInternalServerError, "invalid upstream response")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Body)
}

type rejectBatchRequest struct {
	Threshold *int `json:"threshold"`
}

// HandleRejectBatch handles POST /api/reject/batch requests.
func (h *CandidatesHandler) HandleRejectBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	var req rejectBatchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRejectBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Threshold == nil || *req.Threshold < 0 || *req.Threshold > 100 {
		writeError(w, http.StatusBadRequest, "threshold must be between 0 and 100")
		return
	}
	if err := h.ready.err(); err != nil {
		h.log.Error(ctx, "dashboard not configured", logger.Error(err))
		writeError(w, http.StatusInternalServerError, ErrConfig.Error())
		return
	}
	if err := h.rejectReady.err(); err != nil {
		h.log.Error(ctx, "reject not configured", logger.Error(err))
		writeError(w, http.StatusInternalServerError, ErrConfig.Error())
		return
	}

	res, err := h.dashboard.RejectBatch(ctx, *req.Threshold)
	switch {
	case errors.Is(err, dashboard.ErrRejectFailed):
		writeError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		h.log.Error(ctx, "batch rejection failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
