package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	repository "github.com/okian/matchbot/internal/adapters/repository"
	"github.com/okian/matchbot/internal/domain/model"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// RunsHandler exposes the pipeline run log.
type RunsHandler struct {
	runs repository.RunLog
}

// NewRunsHandler creates a run log handler.
func NewRunsHandler(runs repository.RunLog) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// HandleList handles GET /api/runs?limit=n requests.
func (h *RunsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_runs"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRunsLimit {
			writeError(w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, errors.New("limit must be between 1 and 100")).Error())
			return
		}
		limit = n
	}
	runs, err := h.runs.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// HandleGet handles GET /api/runs/{id} requests.
func (h *RunsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	run, err := h.runs.Get(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrNotFound.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, run)
}
