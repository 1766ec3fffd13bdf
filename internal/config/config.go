// Package config defines service configuration structures and loading hooks.
//
// A single *Config is built once in main and handed to every constructor that
// needs credentials or tunables; nothing else in the module reads the
// environment.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Generator backends for résumé-to-job generation.
const (
	GeneratorOpenAI = "openai"
	GeneratorVertex = "vertex"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory inbound message queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of pipeline workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the in-memory MessageSid cache.
	DedupeSize int `koanf:"dedupe_size"`

	// DedupeTTL is how long a MessageSid is remembered by the Redis deduper.
	DedupeTTL time.Duration `koanf:"dedupe_ttl"`

	// RedisURL enables the shared Redis deduper when set.
	RedisURL string `koanf:"redis_url"`

	// DatabaseURL enables the Postgres run log when set.
	DatabaseURL string `koanf:"database_url"`

	// TempDir is where inbound media is staged. Empty means os.TempDir().
	TempDir string `koanf:"temp_dir"`

	// WebhookEnabled mounts POST /twilio/whatsapp and requires its credentials.
	WebhookEnabled bool `koanf:"webhook_enabled"`

	// OutputLanguage is a BCP 47 tag; only its base (fr or en) is used.
	OutputLanguage string `koanf:"output_language"`

	// JobGenerator selects the résumé-to-job backend: openai or vertex.
	JobGenerator string `koanf:"job_generator"`

	Twilio    TwilioConfig    `koanf:"twilio"`
	OpenAI    OpenAIConfig    `koanf:"openai"`
	Vertex    VertexConfig    `koanf:"vertex"`
	HrFlow    HrFlowConfig    `koanf:"hrflow"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	Dashboard DashboardConfig `koanf:"dashboard"`
	Telegram  TelegramConfig  `koanf:"telegram"`
	Reaper    ReaperConfig    `koanf:"reaper"`
}

// TwilioConfig holds WhatsApp gateway credentials.
type TwilioConfig struct {
	AccountSID string `koanf:"account_sid"`
	AuthToken  string `koanf:"auth_token"`
	// From is the sender address, e.g. "whatsapp:+14155238886".
	From string `koanf:"from"`
	// ValidateSignature checks X-Twilio-Signature on inbound webhooks.
	ValidateSignature bool `koanf:"validate_signature"`
	// PublicURL is the externally visible webhook URL used for signature checks.
	PublicURL string `koanf:"public_url"`
}

// OpenAIConfig holds speech-to-text and chat settings.
type OpenAIConfig struct {
	APIKey             string        `koanf:"api_key"`
	BaseURL            string        `koanf:"base_url"`
	Model              string        `koanf:"model"`
	ChatModel          string        `koanf:"chat_model"`
	TranscriptionModel string        `koanf:"transcription_model"`
	Timeout            time.Duration `koanf:"timeout"`
}

// VertexConfig holds the alternative job generator settings.
type VertexConfig struct {
	Project  string `koanf:"project"`
	Location string `koanf:"location"`
	Model    string `koanf:"model"`
}

// HrFlowConfig holds HR-data API credentials and remote resource keys.
type HrFlowConfig struct {
	APIKey    string `koanf:"api_key"`
	UserEmail string `koanf:"user_email"`
	BaseURL   string `koanf:"base_url"`
	// SourceKeys lists the candidate sources scored by the webhook pipeline.
	SourceKeys          []string      `koanf:"source_keys"`
	BoardKey            string        `koanf:"board_key"`
	ScoringAlgorithmKey string        `koanf:"scoring_algorithm_key"`
	GradingAlgorithmKey string        `koanf:"grading_algorithm_key"`
	TaggingAlgorithmKey string        `koanf:"tagging_algorithm_key"`
	RequestsPerSecond   float64       `koanf:"requests_per_second"`
	Burst               int           `koanf:"burst"`
	Timeout             time.Duration `koanf:"timeout"`
}

// PipelineConfig holds webhook pipeline tunables.
type PipelineConfig struct {
	ProfilesToScore int     `koanf:"profiles_to_score"`
	ProfilesToGrade int     `koanf:"profiles_to_grade"`
	LocationRadius  int     `koanf:"location_radius"`
	ScoreFloor      float64 `koanf:"score_floor"`
	MaxResults      int     `koanf:"max_results"`
	// SummaryLanguage is the language named in the profile summary question.
	SummaryLanguage string `koanf:"summary_language"`
	// FallbackAttachmentURL is linked when a profile has no attachment. Empty omits the link.
	FallbackAttachmentURL string        `koanf:"fallback_attachment_url"`
	RunTimeout            time.Duration `koanf:"run_timeout"`
}

// DashboardConfig holds recruiter dashboard keys.
type DashboardConfig struct {
	SourceKey    string `koanf:"source_key"`
	BoardKey     string `koanf:"board_key"`
	JobKey       string `koanf:"job_key"`
	AlgorithmKey string `koanf:"algorithm_key"`
	PageSize     int    `koanf:"page_size"`
	JobsLimit    int    `koanf:"jobs_limit"`
	// WorkflowURL receives rejection payloads.
	WorkflowURL string `koanf:"workflow_url"`
	// TranscribeLanguage is passed to Whisper by POST /api/transcribe.
	TranscribeLanguage string `koanf:"transcribe_language"`
	// MaxAudioBytes caps POST /api/transcribe uploads.
	MaxAudioBytes int64 `koanf:"max_audio_bytes"`
	// MatchThreshold is the score from which POST /api/analyze reports a match.
	MatchThreshold float64 `koanf:"match_threshold"`
	// ProfilesLimit caps GET /api/profiles.
	ProfilesLimit int `koanf:"profiles_limit"`
}

// TelegramConfig enables operator alerts for failed runs.
type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   int64  `koanf:"chat_id"`
}

// ReaperConfig controls the orphaned media cleanup job.
type ReaperConfig struct {
	Schedule string        `koanf:"schedule"`
	MaxAge   time.Duration `koanf:"max_age"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":3000",
		QueueSize:      1_000,
		WorkerCount:    runtime.NumCPU() * 2,
		DedupeSize:     10_000,
		DedupeTTL:      24 * time.Hour,
		WebhookEnabled: true,
		OutputLanguage: "fr",
		JobGenerator:   GeneratorOpenAI,
		OpenAI: OpenAIConfig{
			Model:              "gpt-4",
			ChatModel:          "gpt-4o-mini",
			TranscriptionModel: "whisper-1",
			Timeout:            60 * time.Second,
		},
		Vertex: VertexConfig{
			Location: "europe-west1",
			Model:    "gemini-1.5-flash",
		},
		HrFlow: HrFlowConfig{
			BaseURL:             "https://api.hrflow.ai/v1",
			GradingAlgorithmKey: "grader-hrflow-profiles-titan",
			TaggingAlgorithmKey: "tagger-hrflow-dynamic",
			RequestsPerSecond:   10,
			Burst:               10,
			Timeout:             30 * time.Second,
		},
		Pipeline: PipelineConfig{
			ProfilesToScore: 32,
			ProfilesToGrade: 32,
			LocationRadius:  30,
			ScoreFloor:      0.2,
			MaxResults:      3,
			SummaryLanguage: "french",
			RunTimeout:      5 * time.Minute,
		},
		Dashboard: DashboardConfig{
			PageSize:           10,
			JobsLimit:          20,
			TranscribeLanguage: "fr",
			MaxAudioBytes:      25 << 20,
			MatchThreshold:     0.8,
			ProfilesLimit:      20,
		},
		Reaper: ReaperConfig{
			Schedule: "@every 10m",
			MaxAge:   time.Hour,
		},
	}
}

// Language returns the base language ("fr" or "en") of OutputLanguage.
// Anything that does not resolve to English is treated as French.
func (c *Config) Language() string {
	tag, err := language.Parse(c.OutputLanguage)
	if err != nil {
		return "fr"
	}
	base, _ := tag.Base()
	if base.String() == "en" {
		return "en"
	}
	return "fr"
}

// Validate checks settings every deployment needs.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 || c.WorkerCount <= 0 {
		return fmt.Errorf("%w: queue_size and worker_count must be positive", ErrInvalidConfig)
	}
	if c.Pipeline.MaxResults <= 0 {
		return fmt.Errorf("%w: pipeline.max_results must be positive", ErrInvalidConfig)
	}
	switch c.JobGenerator {
	case GeneratorOpenAI, GeneratorVertex:
	default:
		return fmt.Errorf("%w: unknown job_generator %q", ErrInvalidConfig, c.JobGenerator)
	}
	if c.WebhookEnabled {
		return c.ValidateWebhook()
	}
	return nil
}

// ValidateWebhook reports every credential the WhatsApp pipeline is missing.
func (c *Config) ValidateWebhook() error {
	var missing []string
	add := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	add("TWILIO_ACCOUNT_SID", c.Twilio.AccountSID)
	add("TWILIO_AUTH_TOKEN", c.Twilio.AuthToken)
	add("TWILIO_WHATSAPP_FROM", c.Twilio.From)
	add("OPENAI_API_KEY", c.OpenAI.APIKey)
	add("HRFLOW_API_KEY", c.HrFlow.APIKey)
	add("HRFLOW_USER_EMAIL", c.HrFlow.UserEmail)
	add("HRFLOW_BOARD_KEY", c.HrFlow.BoardKey)
	if len(c.HrFlow.SourceKeys) == 0 {
		missing = append(missing, "HRFLOW_SOURCE_KEYS")
	}
	if c.JobGenerator == GeneratorVertex {
		add("VERTEX_PROJECT", c.Vertex.Project)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// HrFlowCredentials reports whether dashboard routes can reach HrFlow.
func (c *Config) HrFlowCredentials() error {
	if c.HrFlow.APIKey == "" || c.HrFlow.UserEmail == "" {
		return fmt.Errorf("%w: HRFLOW_API_KEY and HRFLOW_USER_EMAIL are required", ErrMissingCredentials)
	}
	return nil
}

// DashboardKeys reports whether the candidates view is fully configured.
func (c *Config) DashboardKeys() error {
	if err := c.HrFlowCredentials(); err != nil {
		return err
	}
	d := c.Dashboard
	if d.SourceKey == "" || d.BoardKey == "" || d.JobKey == "" || d.AlgorithmKey == "" {
		return fmt.Errorf("%w: dashboard source, board, job and algorithm keys are required", ErrMissingCredentials)
	}
	return nil
}

// AnalysisKeys reports whether candidate analysis is fully configured.
func (c *Config) AnalysisKeys() error {
	if err := c.HrFlowCredentials(); err != nil {
		return err
	}
	d := c.Dashboard
	if d.SourceKey == "" || d.BoardKey == "" || d.AlgorithmKey == "" {
		return fmt.Errorf("%w: dashboard source, board and algorithm keys are required", ErrMissingCredentials)
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY is required", ErrMissingCredentials)
	}
	return nil
}
