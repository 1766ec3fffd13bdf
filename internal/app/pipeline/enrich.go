package pipeline

import (
	"context"
	"sync"

	"github.com/okian/matchbot/internal/adapters/hrflow"
	"github.com/okian/matchbot/internal/domain/labels"
	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/pkg/logger"
	"github.com/okian/matchbot/pkg/metrics"
)

// explanationItems is how many strengths and weaknesses a card shows.
const explanationItems = 2

// enrichment collects the independent lookups of one candidate.
type enrichment struct {
	summary     Result[string]
	explanation Result[model.Explanation]
	seniority   Result[model.Tag]
	degree      Result[model.Tag]
}

// enrich decorates every profile concurrently. Each lookup falls back on its
// own; the output keeps the input order.
func (p *Pipeline) enrich(ctx context.Context, log logger.Logger, jobKey string, profiles []model.Profile) []model.Candidate {
	defer p.step(ctx, log, "enrich")()

	out := make([]model.Candidate, len(profiles))
	var wg sync.WaitGroup
	for i := range profiles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prof := profiles[i]
			e := p.enrichOne(ctx, jobKey, prof)
			p.logFallbacks(ctx, log, prof.Key, e)
			out[i] = model.Candidate{
				Profile:     prof,
				Score:       prof.Score,
				Summary:     e.summary.Value,
				Explanation: e.explanation.Value,
				Seniority:   e.seniority.Value,
				Degree:      e.degree.Value,
			}
		}(i)
	}
	wg.Wait()
	return out
}

func (p *Pipeline) enrichOne(ctx context.Context, jobKey string, prof model.Profile) enrichment {
	var (
		e         enrichment
		wg        sync.WaitGroup
		sourceKey = prof.SourceKeyOrRef()
		lang      = p.settings.Language
		text      = prof.TaggingText()
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		s, err := p.deps.HrFlow.SummarizeProfile(ctx, sourceKey, prof.Key, p.settings.SummaryLanguage)
		e.summary = resultOf(s, err, "")
	}()
	go func() {
		defer wg.Done()
		x, err := p.deps.HrFlow.Upskilling(ctx, hrflow.UpskillingRequest{
			SourceKey:  sourceKey,
			ProfileKey: prof.Key,
			BoardKey:   p.settings.BoardKey,
			JobKey:     jobKey,
			OutputLang: lang,
			Score:      prof.Score,
		})
		e.explanation = resultOf(x.Truncate(explanationItems), err, model.Explanation{})
	}()
	go func() {
		defer wg.Done()
		e.seniority = p.tag(ctx, labels.Seniority, text)
	}()
	go func() {
		defer wg.Done()
		e.degree = p.tag(ctx, labels.Degree, text)
	}()
	wg.Wait()
	return e
}

// tag classifies text against set. No tag counts as a fallback with a nil error.
func (p *Pipeline) tag(ctx context.Context, set labels.Set, text string) Result[model.Tag] {
	lang := p.settings.Language
	other := set.Other(lang)

	res, err := p.deps.HrFlow.Tag(ctx, hrflow.TagRequest{
		Texts:        []string{text},
		AlgorithmKey: p.settings.TaggingAlgorithmKey,
		Context:      set.Context(lang),
		Labels:       set.Names(lang),
		OutputLang:   lang,
	})
	if err != nil {
		return Result[model.Tag]{Value: other, Err: err}
	}
	if !res.Found {
		return Result[model.Tag]{Value: other}
	}
	return Result[model.Tag]{Value: model.Tag{Label: res.Label, Value: res.ID}}
}

func (p *Pipeline) logFallbacks(ctx context.Context, log logger.Logger, profileKey string, e enrichment) {
	degraded := map[string]error{
		"summary":     e.summary.Err,
		"explanation": e.explanation.Err,
		"seniority":   e.seniority.Err,
		"degree":      e.degree.Err,
	}
	for kind, err := range degraded {
		if err == nil {
			continue
		}
		metrics.RecordEnrichmentFallback(kind)
		log.Warn(ctx, "enrichment fell back",
			logger.String("profile_key", profileKey), logger.String("kind", kind), logger.Error(err))
	}
}
