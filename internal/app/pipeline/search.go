package pipeline

import (
	"context"
	"fmt"

	"github.com/okian/matchbot/internal/adapters/hrflow"
	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/internal/domain/ranking"
	"github.com/okian/matchbot/pkg/logger"
	"github.com/okian/matchbot/pkg/metrics"
)

// search stores the job described by text and returns its key with the
// graded shortlist, best first. Steps run strictly in order.
func (p *Pipeline) search(ctx context.Context, log logger.Logger, text string) (string, []model.Profile, error) {
	job, err := p.parseJob(ctx, log, text)
	if err != nil {
		return "", nil, err
	}

	jobKey, err := p.storeJob(ctx, log, job)
	if err != nil {
		return "", nil, err
	}

	filters, err := p.filters(ctx, log, jobKey, job)
	if err != nil {
		return jobKey, nil, err
	}

	scored, err := p.score(ctx, log, jobKey, filters)
	if err != nil {
		return jobKey, nil, err
	}

	graded := p.grade(ctx, log, jobKey, scored)
	top := ranking.SelectTop(graded, p.settings.ScoreFloor, p.settings.MaxResults)
	log.Info(ctx, "shortlist selected",
		logger.Int("scored", len(scored)), logger.Int("graded", len(graded)), logger.Int("kept", len(top)))
	return jobKey, top, nil
}

func (p *Pipeline) parseJob(ctx context.Context, log logger.Logger, text string) (model.Job, error) {
	defer p.step(ctx, log, "parse_job")()

	job, err := p.deps.HrFlow.ParseJob(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parse job: %w", err)
	}
	job.StripIdentifiers()
	job.SetDescription(text)

	job, err = p.deps.HrFlow.EnrichLocation(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("geocode job: %w", err)
	}
	log.Info(ctx, "job parsed", logger.String("name", job.Name()), logger.String("location", job.LocationText()))
	return job, nil
}

func (p *Pipeline) storeJob(ctx context.Context, log logger.Logger, job model.Job) (string, error) {
	defer p.step(ctx, log, "index_job")()

	key, err := p.deps.HrFlow.IndexJob(ctx, p.settings.BoardKey, job)
	if err != nil {
		return "", fmt.Errorf("store job: %w", err)
	}
	log.Info(ctx, "job stored", logger.String("job_key", key))
	return key, nil
}

func (p *Pipeline) filters(ctx context.Context, log logger.Logger, jobKey string, job model.Job) (model.Filters, error) {
	defer p.step(ctx, log, "ask_job")()

	answers, err := p.deps.HrFlow.AskJob(ctx, p.settings.BoardKey, jobKey, Questions)
	if err != nil {
		return model.Filters{}, fmt.Errorf("ask job: %w", err)
	}
	f := FiltersFromAnswers(answers, job, p.settings.DefaultRadius, p.now())
	log.Info(ctx, "filters derived",
		logger.String("job_title", f.JobTitle),
		logger.Int("radius", f.Radius),
		logger.Int("seniority", f.Seniority),
		logger.Bool("has_location", f.Location != nil),
		logger.Bool("has_created_at_min", f.CreatedAtMin != nil))
	return f, nil
}

func (p *Pipeline) score(ctx context.Context, log logger.Logger, jobKey string, f model.Filters) ([]model.Profile, error) {
	defer p.step(ctx, log, "score")()

	profiles, err := p.deps.HrFlow.ScoreProfiles(ctx, hrflow.ScoreRequest{
		SourceKeys:   p.settings.SourceKeys,
		BoardKey:     p.settings.BoardKey,
		JobKey:       jobKey,
		AlgorithmKey: p.settings.ScoringAlgorithmKey,
		Limit:        p.settings.ProfilesToScore,
		Filters:      f,
	})
	if err != nil {
		return nil, fmt.Errorf("score profiles: %w", err)
	}
	return profiles, nil
}

// grade re-scores the first ProfilesToGrade profiles. Any failure yields an
// empty list so the run ends with the no-match message.
func (p *Pipeline) grade(ctx context.Context, log logger.Logger, jobKey string, scored []model.Profile) []model.Profile {
	defer p.step(ctx, log, "grade")()

	top := scored
	if n := p.settings.ProfilesToGrade; n > 0 && len(top) > n {
		top = top[:n]
	}
	if len(top) == 0 {
		return nil
	}

	scores, err := p.deps.HrFlow.GradeProfiles(ctx, hrflow.GradeRequest{
		AlgorithmKey: p.settings.GradingAlgorithmKey,
		BoardKey:     p.settings.BoardKey,
		JobKey:       jobKey,
		Profiles:     top,
	})
	if err != nil || len(scores) < len(top) {
		metrics.RecordEnrichmentFallback("grading")
		log.Warn(ctx, "grading failed, continuing without candidates", logger.Error(err))
		return nil
	}

	graded := make([]model.Profile, len(top))
	for i, prof := range top {
		prof.Score = scores[i]
		graded[i] = prof
	}
	return graded
}
