// Package pipeline turns one inbound chat message into a ranked shortlist of
// candidates delivered as follow-up chat messages.
//
// The webhook has already acknowledged the message when Process runs. Every
// failure after that point ends in exactly one reply to the sender; nothing
// is retried.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchbot/internal/domain/format"
	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/internal/domain/ranking"
	"github.com/okian/matchbot/pkg/logger"
	"github.com/okian/matchbot/pkg/metrics"
)

// Settings are the remote resource keys and tunables of a run.
type Settings struct {
	SourceKeys          []string
	BoardKey            string
	ScoringAlgorithmKey string
	GradingAlgorithmKey string
	TaggingAlgorithmKey string

	ProfilesToScore int
	ProfilesToGrade int
	DefaultRadius   int
	ScoreFloor      float64
	MaxResults      int

	// Language is the output language ("fr" or "en") for tags and explanations.
	Language string
	// SummaryLanguage is spelled out in the summary question, e.g. "french".
	SummaryLanguage string
	// TranscribeLanguage hints the speech model; empty means auto-detect.
	TranscribeLanguage string
}

// Pipeline runs the inbound message flow.
type Pipeline struct {
	deps     Deps
	settings Settings
	fmt      *format.Formatter

	runLog  RunLog
	alerter Alerter
	now     func() time.Time
	newID   func() string
	log     logger.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunLog records every run.
func WithRunLog(l RunLog) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.runLog = l
		}
	}
}

// WithAlerter reports failed runs to an operator.
func WithAlerter(a Alerter) Option {
	return func(p *Pipeline) {
		if a != nil {
			p.alerter = a
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator replaces the run id source.
func WithIDGenerator(f func() string) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.newID = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// New builds a Pipeline. Zero tunables take the documented defaults.
func New(deps Deps, settings Settings, f *format.Formatter, opts ...Option) (*Pipeline, error) {
	if deps.Messenger == nil || deps.Downloader == nil || deps.Transcriber == nil ||
		deps.Generator == nil || deps.HrFlow == nil || deps.Remove == nil || f == nil {
		return nil, ErrMissingDeps
	}
	if settings.ScoreFloor == 0 {
		settings.ScoreFloor = ranking.DefaultFloor
	}
	if settings.MaxResults <= 0 {
		settings.MaxResults = ranking.DefaultMaxResults
	}
	if settings.Language == "" {
		settings.Language = "fr"
	}

	p := &Pipeline{
		deps:     deps,
		settings: settings,
		fmt:      f,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Process runs one message end to end. The returned error is informational:
// the sender has already been told about it.
func (p *Pipeline) Process(ctx context.Context, m model.InboundMessage) error { //nolint:gocritic // hugeParam
	run := model.Run{
		ID:         p.newID(),
		MessageSID: m.MessageSID,
		From:       m.From,
		InputKind:  model.MediaNone,
		StartedAt:  p.now(),
	}
	log := p.log.With(logger.String("run_id", run.ID), logger.String("message_sid", m.MessageSID))
	log.Info(ctx, "pipeline run started", logger.Int("num_media", m.NumMedia))

	err := p.run(ctx, log, m, &run)
	run.FinishedAt = p.now()

	var rej *rejection
	switch {
	case err == nil:
	case errors.As(err, &rej):
		run.Outcome = model.OutcomeRejected
		run.Error = err.Error()
		p.reply(ctx, log, m.From, rej.reply)
	default:
		run.Outcome = model.OutcomeFailed
		run.Error = err.Error()
		log.Error(ctx, "pipeline run failed", logger.Error(err))
		p.reply(ctx, log, m.From, p.fmt.Error(err))
	}

	metrics.RecordPipelineRun(run.Outcome)
	p.finish(ctx, log, run)
	log.Info(ctx, "pipeline run finished",
		logger.String("outcome", run.Outcome),
		logger.Int("candidates", run.Candidates),
		logger.Duration("took", run.Duration()))
	return err
}

// run is steps 2 to 12. It fills run as it goes.
func (p *Pipeline) run(ctx context.Context, log logger.Logger, m model.InboundMessage, run *model.Run) error { //nolint:gocritic // hugeParam
	text, kind, err := p.resolveText(ctx, log, m)
	run.InputKind = kind
	if err != nil {
		return err
	}
	run.Text = text

	if err := p.deps.Messenger.Send(ctx, m.From, p.fmt.Searching(text)); err != nil {
		return fmt.Errorf("send search notice: %w", err)
	}

	jobKey, candidates, err := p.search(ctx, log, text)
	run.JobKey = jobKey
	if err != nil {
		return err
	}

	enriched := p.enrich(ctx, log, jobKey, candidates)
	run.Candidates = len(enriched)
	metrics.RecordCandidatesReturned(len(enriched))

	if err := p.deliver(ctx, log, m.From, text, enriched); err != nil {
		return err
	}
	if len(enriched) == 0 {
		run.Outcome = model.OutcomeNoMatch
	} else {
		run.Outcome = model.OutcomeMatched
	}
	return nil
}

// deliver sends the lead message then one card per candidate, in rank order.
func (p *Pipeline) deliver(ctx context.Context, log logger.Logger, to, text string, cands []model.Candidate) error {
	defer p.step(ctx, log, "deliver")()

	if err := p.deps.Messenger.Send(ctx, to, p.fmt.Lead(text, len(cands))); err != nil {
		return fmt.Errorf("send lead: %w", err)
	}
	for i, c := range cands {
		if err := p.deps.Messenger.Send(ctx, to, p.fmt.Candidate(c, i+1)); err != nil {
			return fmt.Errorf("send candidate %d: %w", i+1, err)
		}
	}
	return nil
}

// reply sends a best-effort message; a failure here has nowhere else to go.
func (p *Pipeline) reply(ctx context.Context, log logger.Logger, to, body string) {
	if err := p.deps.Messenger.Send(ctx, to, body); err != nil {
		log.Error(ctx, "failed to send reply", logger.Error(err))
	}
}

// finish records the run and alerts on failure. It outlives a cancelled
// run context so the audit trail is kept.
func (p *Pipeline) finish(ctx context.Context, log logger.Logger, run model.Run) { //nolint:gocritic // hugeParam
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if p.runLog != nil {
		if err := p.runLog.Record(ctx, run); err != nil {
			log.Warn(ctx, "failed to record run", logger.Error(err))
		}
	}
	if p.alerter != nil && run.Outcome == model.OutcomeFailed {
		if err := p.alerter.RunFailed(ctx, run); err != nil {
			log.Warn(ctx, "failed to send alert", logger.Error(err))
		}
	}
}

// step times a named stage: defer p.step(ctx, log, "name")().
func (p *Pipeline) step(ctx context.Context, log logger.Logger, name string) func() {
	start := p.now()
	log.Debug(ctx, "pipeline step started", logger.String("step", name))
	return func() {
		d := p.now().Sub(start)
		metrics.RecordPipelineStep(name, d)
		log.Debug(ctx, "pipeline step finished", logger.String("step", name), logger.Duration("took", d))
	}
}
