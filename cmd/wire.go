package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/okian/matchbot/internal/adapters/cache"
	"github.com/okian/matchbot/internal/adapters/hrflow"
	"github.com/okian/matchbot/internal/adapters/http/api"
	"github.com/okian/matchbot/internal/adapters/http/site"
	"github.com/okian/matchbot/internal/adapters/http/swagger"
	"github.com/okian/matchbot/internal/adapters/media"
	"github.com/okian/matchbot/internal/adapters/notify"
	"github.com/okian/matchbot/internal/adapters/openai"
	"github.com/okian/matchbot/internal/adapters/reaper"
	repository "github.com/okian/matchbot/internal/adapters/repository"
	"github.com/okian/matchbot/internal/adapters/twilio"
	"github.com/okian/matchbot/internal/adapters/vertex"
	app "github.com/okian/matchbot/internal/app"
	"github.com/okian/matchbot/internal/app/analysis"
	"github.com/okian/matchbot/internal/app/dashboard"
	"github.com/okian/matchbot/internal/app/pipeline"
	"github.com/okian/matchbot/internal/config"
	"github.com/okian/matchbot/internal/domain/format"
	"github.com/okian/matchbot/pkg/logger"
)

// application holds the wired components main starts and stops.
type application struct {
	svc     *app.Service
	reaper  *reaper.Reaper
	handler http.Handler
	closers []func()
}

// close releases external clients in reverse order of creation.
func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// build wires every adapter named by cfg. Optional backends (Redis, Postgres,
// Telegram, Vertex) are only dialled when configured.
func build(ctx context.Context, cfg *config.Config, log logger.Logger) (*application, error) {
	a := &application{}
	lang := cfg.Language()
	formatter := format.New(lang, format.WithFallbackURL(cfg.Pipeline.FallbackAttachmentURL))

	hr := hrflow.New(cfg.HrFlow.APIKey, cfg.HrFlow.UserEmail,
		hrflow.WithBaseURL(cfg.HrFlow.BaseURL),
		hrflow.WithHTTPClient(&http.Client{Timeout: cfg.HrFlow.Timeout}),
		hrflow.WithRateLimit(cfg.HrFlow.RequestsPerSecond, cfg.HrFlow.Burst),
		hrflow.WithLogger(log.Named("hrflow")),
	)
	oa := openai.New(cfg.OpenAI.APIKey,
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
		openai.WithTimeout(cfg.OpenAI.Timeout),
		openai.WithModel(cfg.OpenAI.Model),
		openai.WithChatModel(cfg.OpenAI.ChatModel),
		openai.WithTranscriptionModel(cfg.OpenAI.TranscriptionModel),
		openai.WithLogger(log.Named("openai")),
	)

	var runs repository.RunLog = repository.NewMemoryLog()
	if cfg.DatabaseURL != "" {
		pool, err := repository.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		pg, err := repository.NewPostgresLog(ctx, pool)
		if err != nil {
			a.close()
			return nil, err
		}
		runs = pg
		log.Info(ctx, "run log backed by postgres")
	}

	svcOpts := []app.Option{
		app.WithLogger(log.Named("intake")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithProcessTimeout(cfg.Pipeline.RunTimeout),
		app.WithRunLog(runs),
	}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		svcOpts = append(svcOpts, app.WithDeduper(cache.NewDeduper(rdb, cache.WithTTL(cfg.DedupeTTL))))
		log.Info(ctx, "message dedupe backed by redis")
	}

	deps := api.Deps{
		Messages:           formatter.Messages(),
		Dashboard:          newDashboard(cfg, hr, log),
		DashboardReady:     cfg.DashboardKeys,
		RejectReady:        cfg.HrFlowCredentials,
		Transcriber:        oa,
		TranscribeReady:    openAIReady(cfg),
		TranscribeLanguage: cfg.Dashboard.TranscribeLanguage,
		MaxAudioBytes:      cfg.Dashboard.MaxAudioBytes,
		Chat:               oa,
		ChatReady:          openAIReady(cfg),
		Analysis:           newAnalysis(cfg, hr, oa, log),
		AnalysisReady:      cfg.AnalysisKeys,
		Runs:               runs,
		Logger:             log,
	}

	if cfg.WebhookEnabled {
		proc, err := newPipeline(ctx, a, cfg, hr, oa, runs, formatter, log)
		if err != nil {
			a.close()
			return nil, err
		}
		a.svc = app.New(proc, svcOpts...)
		deps.Intake = a.svc
		deps.Stats = a.svc
		if cfg.Twilio.ValidateSignature {
			deps.Signature = twilio.NewSignatureValidator(cfg.Twilio.AuthToken, cfg.Twilio.PublicURL)
		}
		a.reaper = reaper.New(mediaDir(cfg),
			reaper.WithSchedule(cfg.Reaper.Schedule),
			reaper.WithMaxAge(cfg.Reaper.MaxAge),
			reaper.WithLogger(log.Named("reaper")),
		)
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(deps).Register(ctx, mux)
	site.Register(ctx, mux)
	a.handler = mux
	return a, nil
}

func newPipeline(
	ctx context.Context,
	a *application,
	cfg *config.Config,
	hr *hrflow.Client,
	oa *openai.Client,
	runs repository.RunLog,
	formatter *format.Formatter,
	log logger.Logger,
) (*pipeline.Pipeline, error) {
	var generator pipeline.Generator = oa
	if cfg.JobGenerator == config.GeneratorVertex {
		g, err := vertex.New(ctx, cfg.Vertex.Project, cfg.Vertex.Location, cfg.Vertex.Model)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = g.Close() })
		generator = g
		log.Info(ctx, "job generation backed by vertex", logger.String("model", cfg.Vertex.Model))
	}

	var alerter pipeline.Alerter = notify.Nop{}
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		alerter = tg
	}

	downloader := media.NewDownloader(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken,
		media.WithDir(mediaDir(cfg)),
		media.WithLogger(log.Named("media")),
	)
	messenger := twilio.NewMessenger(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From,
		twilio.WithLogger(log.Named("twilio")),
	)

	return pipeline.New(
		pipeline.Deps{
			Messenger:   messenger,
			Downloader:  downloader,
			Transcriber: oa,
			Generator:   generator,
			HrFlow:      hr,
			Remove:      media.Remove,
		},
		pipeline.Settings{
			SourceKeys:          cfg.HrFlow.SourceKeys,
			BoardKey:            cfg.HrFlow.BoardKey,
			ScoringAlgorithmKey: cfg.HrFlow.ScoringAlgorithmKey,
			GradingAlgorithmKey: cfg.HrFlow.GradingAlgorithmKey,
			TaggingAlgorithmKey: cfg.HrFlow.TaggingAlgorithmKey,
			ProfilesToScore:     cfg.Pipeline.ProfilesToScore,
			ProfilesToGrade:     cfg.Pipeline.ProfilesToGrade,
			DefaultRadius:       cfg.Pipeline.LocationRadius,
			ScoreFloor:          cfg.Pipeline.ScoreFloor,
			MaxResults:          cfg.Pipeline.MaxResults,
			Language:            cfg.Language(),
			SummaryLanguage:     cfg.Pipeline.SummaryLanguage,
		},
		formatter,
		pipeline.WithRunLog(runs),
		pipeline.WithAlerter(alerter),
		pipeline.WithLogger(log.Named("pipeline")),
	)
}

func newDashboard(cfg *config.Config, hr *hrflow.Client, log logger.Logger) *dashboard.Service {
	return dashboard.New(hr, dashboard.Settings{
		SourceKey:    cfg.Dashboard.SourceKey,
		BoardKey:     cfg.Dashboard.BoardKey,
		JobKey:       cfg.Dashboard.JobKey,
		AlgorithmKey: cfg.Dashboard.AlgorithmKey,
		PageSize:     cfg.Dashboard.PageSize,
		JobsLimit:    cfg.Dashboard.JobsLimit,
		WorkflowURL:  cfg.Dashboard.WorkflowURL,
	}, dashboard.WithLogger(log.Named("dashboard")))
}

func newAnalysis(cfg *config.Config, hr *hrflow.Client, oa *openai.Client, log logger.Logger) *analysis.Service {
	return analysis.New(hr, oa, analysis.Settings{
		SourceKey:     cfg.Dashboard.SourceKey,
		BoardKey:      cfg.Dashboard.BoardKey,
		AlgorithmKey:  cfg.Dashboard.AlgorithmKey,
		Threshold:     cfg.Dashboard.MatchThreshold,
		ProfilesLimit: cfg.Dashboard.ProfilesLimit,
	}, analysis.WithLogger(log.Named("analysis")))
}

func openAIReady(cfg *config.Config) api.Check {
	return func() error {
		if cfg.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required", config.ErrMissingCredentials)
		}
		return nil
	}
}

func mediaDir(cfg *config.Config) string {
	if cfg.TempDir != "" {
		return cfg.TempDir
	}
	return os.TempDir()
}
