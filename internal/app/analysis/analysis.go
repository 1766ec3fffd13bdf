// Package analysis compares one stored candidate profile with one job: it
// scores the match, lists skill gaps and strengths, asks an LLM for learning
// recommendations and a rejection email, and builds the context the career
// assistant chats from.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/internal/domain/prompts"
	"github.com/okian/matchbot/pkg/logger"
	"github.com/okian/matchbot/pkg/metrics"
)

// Defaults applied by New.
const (
	DefaultThreshold     = 0.8
	DefaultScore         = 0.5
	DefaultProfilesLimit = 20
	DefaultLanguage      = "en"
	DefaultName          = "Candidate"
	DefaultJobTitle      = "Position"

	recommendationTokens = 1000
	emailTokens          = 500
	summaryNameRunes     = 50
)

// HrFlow is the subset of the HR data client the analysis reads.
type HrFlow interface {
	GetProfile(ctx context.Context, sourceKey, key string) (model.Profile, error)
	GetJob(ctx context.Context, boardKey, key string) (model.Job, error)
	GradeOne(ctx context.Context, algorithmKey, boardKey, jobKey, sourceKey, profileKey string) (float64, bool, error)
	ListProfilesWithInfo(ctx context.Context, sourceKey string, limit int) ([]model.Profile, error)
}

// Writer completes a single prompt.
type Writer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Settings are the keys and limits the analysis reads with.
type Settings struct {
	SourceKey     string
	BoardKey      string
	AlgorithmKey  string
	Threshold     float64
	ProfilesLimit int
}

// Request selects the profile and job to compare.
type Request struct {
	ProfileKey string `json:"profile_key"`
	JobKey     string `json:"job_key"`
	RoastMode  bool   `json:"roast_mode"`
}

// Service implements candidate analysis.
type Service struct {
	hr       HrFlow
	writer   Writer
	settings Settings
	log      logger.Logger
}

// New returns an analysis service.
func New(hr HrFlow, writer Writer, settings Settings, opts ...Option) *Service {
	if settings.Threshold <= 0 {
		settings.Threshold = DefaultThreshold
	}
	if settings.ProfilesLimit <= 0 {
		settings.ProfilesLimit = DefaultProfilesLimit
	}
	s := &Service{hr: hr, writer: writer, settings: settings, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze compares the requested profile with the requested job. Profile,
// job and score are fetched concurrently; a grading failure scores
// DefaultScore. Recommendations fall back to a fixed item when the LLM
// fails; a failed email fails the analysis.
func (s *Service) Analyze(ctx context.Context, req Request) (model.Analysis, error) {
	start := time.Now()
	defer func() { metrics.RecordPipelineStep("analysis", time.Since(start)) }()
	log := s.log.With(logger.String("profile_key", req.ProfileKey), logger.String("job_key", req.JobKey))

	var (
		profile model.Profile
		job     model.Job
		score   = DefaultScore
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.hr.GetProfile(gctx, s.settings.SourceKey, req.ProfileKey)
		if err != nil {
			return fmt.Errorf("%w: profile %s: %w", ErrNotFound, req.ProfileKey, err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		j, err := s.hr.GetJob(gctx, s.settings.BoardKey, req.JobKey)
		if err != nil {
			return fmt.Errorf("%w: job %s: %w", ErrNotFound, req.JobKey, err)
		}
		job = j
		return nil
	})
	g.Go(func() error {
		raw, ok, err := s.hr.GradeOne(gctx, s.settings.AlgorithmKey, s.settings.BoardKey,
			req.JobKey, s.settings.SourceKey, req.ProfileKey)
		switch {
		case err != nil:
			log.Warn(gctx, "grading failed; using default score", logger.Error(err))
		case ok:
			score = math.Round(raw*100) / 100
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.Analysis{}, err
	}

	skills := make([]string, 0, len(profile.Skills))
	for _, sk := range profile.Skills {
		if l := sk.Label(); l != "" {
			skills = append(skills, l)
		}
	}
	gaps, strengths := CompareSkills(skills, job.SkillNames())

	first := profile.Info.FirstName
	if first == "" {
		first = DefaultName
	}
	name := strings.TrimSpace(first + " " + profile.Info.LastName)
	title := job.Name()
	if title == "" {
		title = DefaultJobTitle
	}
	lang := profile.TextLanguage
	if lang == "" {
		lang = DefaultLanguage
	}

	var (
		recs  []model.Recommendation
		email string
	)
	w, wctx := errgroup.WithContext(ctx)
	w.Go(func() error {
		recs = s.recommend(wctx, log, title, gaps, strengths)
		return nil
	})
	w.Go(func() error {
		text, err := s.writer.Complete(wctx, prompts.RejectionEmail(name, title, lang, gaps, strengths, req.RoastMode), emailTokens)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEmail, err)
		}
		email = text
		return nil
	})
	if err := w.Wait(); err != nil {
		return model.Analysis{}, err
	}

	return model.Analysis{
		Score:            score,
		Threshold:        s.settings.Threshold,
		Matched:          score >= s.settings.Threshold,
		DetectedLanguage: lang,
		Candidate:        model.CandidateContact{Name: name, Email: profile.Info.Email},
		SkillGaps:        gaps,
		Strengths:        strengths,
		Recommendations:  recs,
		Email:            email,
		ChatContext: model.ChatContext{
			CandidateName:   first,
			JobTitle:        title,
			SkillGaps:       gaps,
			Strengths:       strengths,
			Recommendations: recs,
		},
	}, nil
}

// recommend asks the writer for learning recommendations. Without gaps a
// single general item is returned; a failed or unreadable answer yields one
// item about the largest gap.
func (s *Service) recommend(ctx context.Context, log logger.Logger, title string, gaps, strengths []model.SkillLevel) []model.Recommendation {
	if len(gaps) == 0 {
		return []model.Recommendation{{
			Type:        "general",
			Title:       "Continue Building Your Portfolio",
			Description: "Keep developing projects relevant to this role to strengthen your application.",
			Courses:     []model.Course{},
		}}
	}

	fallback := []model.Recommendation{{
		Type:        "hardskill",
		Skill:       gaps[0].Name,
		Title:       "Build foundational knowledge in " + gaps[0].Name,
		Description: "Focus on developing core competencies required for this role.",
		Courses:     []model.Course{},
	}}

	text, err := s.writer.Complete(ctx, prompts.Recommendations(title, gaps, strengths), recommendationTokens)
	if err != nil {
		log.Warn(ctx, "recommendations failed; using fallback", logger.Error(err))
		metrics.RecordEnrichmentFallback("recommendations")
		return fallback
	}
	recs, err := ParseRecommendations(text)
	if err != nil || len(recs) == 0 {
		log.Warn(ctx, "unreadable recommendations; using fallback", logger.Error(err))
		metrics.RecordEnrichmentFallback("recommendations")
		return fallback
	}
	return recs
}

// ParseRecommendations reads the JSON array an LLM answered with, tolerating
// a surrounding markdown code fence.
func ParseRecommendations(text string) ([]model.Recommendation, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	var recs []model.Recommendation
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &recs); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	for i := range recs {
		if recs[i].Type == "" {
			recs[i].Type = "hardskill"
		}
		if recs[i].Courses == nil {
			recs[i].Courses = []model.Course{}
		}
	}
	return recs, nil
}

// Profiles lists the newest profiles of the source for the picker.
func (s *Service) Profiles(ctx context.Context) ([]model.ProfileSummary, error) {
	profiles, err := s.hr.ListProfilesWithInfo(ctx, s.settings.SourceKey, s.settings.ProfilesLimit)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	out := make([]model.ProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, model.ProfileSummary{Key: p.Key, Name: pickerName(p.Info), Email: p.Info.Email})
	}
	return out, nil
}

// pickerName is "first last", else the start of the summary, else
// DefaultName.
func pickerName(info model.ProfileInfo) string {
	if name := strings.TrimSpace(info.FirstName + " " + info.LastName); name != "" {
		return name
	}
	if info.Summary == "" {
		return DefaultName
	}
	if utf8.RuneCountInString(info.Summary) <= summaryNameRunes {
		return info.Summary
	}
	return string([]rune(info.Summary)[:summaryNameRunes])
}
