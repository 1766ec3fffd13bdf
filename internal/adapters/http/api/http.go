// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/matchbot/internal/adapters/hrflow"
	repository "github.com/okian/matchbot/internal/adapters/repository"
	service "github.com/okian/matchbot/internal/app"
	"github.com/okian/matchbot/internal/app/analysis"
	"github.com/okian/matchbot/internal/app/dashboard"
	"github.com/okian/matchbot/internal/domain/format"
	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/pkg/logger"
)

// Intake admits webhook deliveries for asynchronous processing.
type Intake interface {
	Enqueue(ctx context.Context, m model.InboundMessage) (service.Admission, error)
}

// SignatureChecker verifies that a webhook request was signed by the gateway.
type SignatureChecker interface {
	Valid(r *http.Request) bool
}

// Dashboard serves the recruiter view.
type Dashboard interface {
	Candidates(ctx context.Context) ([]model.DashboardCandidate, error)
	Reject(ctx context.Context, body []byte) (hrflow.WorkflowResponse, error)
	RejectBatch(ctx context.Context, threshold int) (dashboard.BatchResult, error)
	Export(ctx context.Context, w io.Writer) error
	Jobs(ctx context.Context) ([]model.JobSummary, error)
}

// Transcriber turns an uploaded recording into text.
type Transcriber interface {
	TranscribeReader(ctx context.Context, name string, r io.Reader, language string) (string, error)
}

// Chatter streams assistant replies.
type Chatter interface {
	StreamChat(ctx context.Context, history []model.ChatMessage, chatCtx *model.ChatContext, emit func(string) error) error
}

// Analyzer compares stored profiles with jobs.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (model.Analysis, error)
	Profiles(ctx context.Context) ([]model.ProfileSummary, error)
}

// Check reports whether a group of routes is configured. A nil Check always
// passes.
type Check func() error

func (c Check) err() error {
	if c == nil {
		return nil
	}
	return c()
}

// Deps bundles what the handlers need. Nil groups leave their routes out,
// except Runs and Stats which are simply not registered.
type Deps struct {
	Intake    Intake
	Signature SignatureChecker
	Messages  format.Messages

	Dashboard      Dashboard
	DashboardReady Check
	RejectReady    Check

	Transcriber        Transcriber
	TranscribeReady    Check
	TranscribeLanguage string
	MaxAudioBytes      int64

	Chat      Chatter
	ChatReady Check

	Analysis      Analyzer
	AnalysisReady Check

	Runs  repository.RunLog
	Stats StatsProvider

	Logger logger.Logger
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	webhookHandler    *WebhookHandler
	candidatesHandler *CandidatesHandler
	transcribeHandler *TranscribeHandler
	chatHandler       *ChatHandler
	analysisHandler   *AnalysisHandler
	runsHandler       *RunsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	s := &Server{healthHandler: NewHealthHandler()}
	if deps.Stats != nil {
		s.statsHandler = NewStatsHandler(deps.Stats)
	}
	if deps.Intake != nil {
		s.webhookHandler = NewWebhookHandler(deps.Intake, deps.Signature, deps.Messages, deps.Logger)
	}
	if deps.Dashboard != nil {
		s.candidatesHandler = NewCandidatesHandler(deps.Dashboard, deps.DashboardReady, deps.RejectReady, deps.Logger)
	}
	if deps.Transcriber != nil {
		s.transcribeHandler = NewTranscribeHandler(deps.Transcriber, deps.TranscribeReady,
			deps.TranscribeLanguage, deps.MaxAudioBytes, deps.Logger)
	}
	if deps.Chat != nil {
		s.chatHandler = NewChatHandler(deps.Chat, deps.ChatReady, deps.Logger)
	}
	if deps.Analysis != nil {
		s.analysisHandler = NewAnalysisHandler(deps.Analysis, deps.AnalysisReady, deps.Logger)
	}
	if deps.Runs != nil {
		s.runsHandler = NewRunsHandler(deps.Runs)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)

	if s.statsHandler != nil {
		mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	}
	if s.webhookHandler != nil {
		mux.HandleFunc("/twilio/whatsapp", MetricsMiddleware(s.webhookHandler.HandleWhatsApp, "twilio_whatsapp"))
	}
	if h := s.candidatesHandler; h != nil {
		mux.HandleFunc("/api/candidates", MetricsMiddleware(h.HandleCandidates, "candidates"))
		mux.HandleFunc("/api/candidates/export", MetricsMiddleware(h.HandleExport, "candidates_export"))
		mux.HandleFunc("/api/reject", MetricsMiddleware(h.HandleReject, "reject"))
		mux.HandleFunc("/api/reject/batch", MetricsMiddleware(h.HandleRejectBatch, "reject_batch"))
		mux.HandleFunc("/api/jobs", MetricsMiddleware(h.HandleJobs, "jobs"))
	}
	if s.transcribeHandler != nil {
		mux.HandleFunc("/api/transcribe", MetricsMiddleware(s.transcribeHandler.HandleTranscribe, "transcribe"))
	}
	if s.chatHandler != nil {
		mux.HandleFunc("/api/chat", MetricsMiddleware(s.chatHandler.HandleChat, "chat"))
	}
	if h := s.analysisHandler; h != nil {
		mux.HandleFunc("/api/analyze", MetricsMiddleware(h.HandleAnalyze, "analyze"))
		mux.HandleFunc("/api/profiles", MetricsMiddleware(h.HandleProfiles, "profiles"))
	}
	if s.runsHandler != nil {
		mux.HandleFunc("/api/runs", MetricsMiddleware(s.runsHandler.HandleList, "runs"))
		mux.HandleFunc("/api/runs/", MetricsMiddleware(s.runsHandler.HandleGet, "run"))
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
