// Package dashboard serves the recruiter view: the latest candidates of a
// source graded against one job, threshold based rejection through an
// automation workflow, spreadsheet export and job listing.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/matchbot/internal/adapters/hrflow"
	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/internal/domain/ranking"
	"github.com/okian/matchbot/pkg/logger"
	"github.com/okian/matchbot/pkg/metrics"
)

// DefaultScore is shown when grading answers with an error status or no
// score tuple.
const DefaultScore = 50

// Display fallbacks for incomplete profiles.
const (
	UnknownName      = "Unknown candidate"
	DefaultRole      = "Open to work"
	DefaultLocation  = "Remote"
	DefaultStrength  = "Soft skills"
	DefaultWeakness  = "To be confirmed"
	avatarURL        = "https://i.pravatar.cc/150?u="
	seniorYearsFloor = 5
)

// HrFlow is the subset of the HR data client the dashboard reads.
type HrFlow interface {
	ListProfiles(ctx context.Context, sourceKey string, limit int) ([]model.Profile, error)
	GetProfile(ctx context.Context, sourceKey, key string) (model.Profile, error)
	GradeOne(ctx context.Context, algorithmKey, boardKey, jobKey, sourceKey, profileKey string) (float64, bool, error)
	ListJobs(ctx context.Context, boardKey string, limit int) ([]model.JobSummary, error)
	RunWorkflow(ctx context.Context, workflowURL string, body []byte) (hrflow.WorkflowResponse, error)
}

// Settings are the keys the dashboard reads from.
type Settings struct {
	SourceKey    string
	BoardKey     string
	JobKey       string
	AlgorithmKey string
	PageSize     int
	JobsLimit    int
	WorkflowURL  string
}

// Service implements the dashboard operations.
type Service struct {
	hr          HrFlow
	settings    Settings
	log         logger.Logger
	concurrency int
}

// New returns a dashboard service.
func New(hr HrFlow, settings Settings, opts ...Option) *Service {
	if settings.PageSize <= 0 {
		settings.PageSize = 10
	}
	if settings.JobsLimit <= 0 {
		settings.JobsLimit = 20
	}
	s := &Service{
		hr:       hr,
		settings: settings,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Candidates lists the newest profiles of the source, each fetched and
// graded concurrently. Profiles whose detail cannot be fetched, or whose
// grading call fails in transport, are dropped; an error status or an empty
// grading shows DefaultScore.
func (s *Service) Candidates(ctx context.Context) ([]model.DashboardCandidate, error) {
	start := time.Now()
	stubs, err := s.hr.ListProfiles(ctx, s.settings.SourceKey, s.settings.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	slots := make([]*model.DashboardCandidate, len(stubs))
	var g errgroup.Group
	s.limit(&g)
	for i, stub := range stubs {
		g.Go(func() error {
			c, err := s.candidate(ctx, stub.Key)
			if err != nil {
				s.log.Warn(ctx, "dropping candidate",
					logger.String("profile_key", stub.Key),
					logger.Error(err))
				return nil
			}
			slots[i] = &c
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.DashboardCandidate, 0, len(slots))
	for _, c := range slots {
		if c != nil {
			out = append(out, *c)
		}
	}
	metrics.RecordPipelineStep("dashboard_candidates", time.Since(start))
	s.log.Info(ctx, "dashboard candidates ready",
		logger.Int("listed", len(stubs)),
		logger.Int("returned", len(out)))
	return out, nil
}

// candidate fetches detail and grade of one profile concurrently.
func (s *Service) candidate(ctx context.Context, key string) (model.DashboardCandidate, error) {
	var (
		profile model.Profile
		score   = DefaultScore
		mu      sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.hr.GetProfile(gctx, s.settings.SourceKey, key)
		if err != nil {
			return err
		}
		mu.Lock()
		profile = p
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		raw, ok, err := s.hr.GradeOne(gctx, s.settings.AlgorithmKey, s.settings.BoardKey,
			s.settings.JobKey, s.settings.SourceKey, key)
		var apiErr *hrflow.APIError
		switch {
		case errors.As(err, &apiErr):
			s.log.Debug(ctx, "grading unavailable",
				logger.String("profile_key", key),
				logger.Int("status", apiErr.Status))
			return nil
		case err != nil:
			return fmt.Errorf("grade: %w", err)
		}
		if ok {
			mu.Lock()
			score = ranking.ScorePercent(raw)
			mu.Unlock()
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.DashboardCandidate{}, err
	}
	return Display(key, profile, score), nil
}

// limit applies the WithConcurrency cap; without it every call runs at once.
func (s *Service) limit(g *errgroup.Group) {
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
}

// Display maps a stored profile to the flat record the dashboard renders.
func Display(key string, p model.Profile, score int) model.DashboardCandidate {
	name := p.Info.FullName
	if name == "" {
		name = strings.TrimSpace(p.Info.FirstName + " " + p.Info.LastName)
	}
	if name == "" {
		name = UnknownName
	}

	role := p.LatestTitle()
	if role == "" {
		role = DefaultRole
	}

	location := p.Info.Location.Text
	if location == "" {
		location = DefaultLocation
	}

	strengths := make([]string, 0, 3)
	for _, sk := range p.Skills {
		if len(strengths) == 3 {
			break
		}
		strengths = append(strengths, sk.Label())
	}
	if len(p.Skills) == 0 {
		strengths = []string{DefaultStrength}
	}

	avatar := p.Info.Picture
	if avatar == "" {
		avatar = avatarURL + key
	}

	return model.DashboardCandidate{
		ID:         key,
		Name:       name,
		Role:       role,
		Location:   location,
		Score:      score,
		Experience: ExperienceLabel(p.ExperiencesDuration),
		Strengths:  strengths,
		Weaknesses: []string{DefaultWeakness},
		Avatar:     avatar,
	}
}

// ExperienceLabel renders whole years of experience with a seniority prefix.
func ExperienceLabel(years float64) string {
	n := int(math.Floor(years))
	if n > seniorYearsFloor {
		return "Senior (" + strconv.Itoa(n) + " yrs)"
	}
	return "Junior (" + strconv.Itoa(n) + " yrs)"
}

// Reject forwards body to the rejection workflow and returns the upstream
// answer as is.
func (s *Service) Reject(ctx context.Context, body []byte) (hrflow.WorkflowResponse, error) {
	if s.settings.WorkflowURL == "" {
		return hrflow.WorkflowResponse{}, ErrNoWorkflow
	}
	resp, err := s.hr.RunWorkflow(ctx, s.settings.WorkflowURL, body)
	if err != nil {
		return hrflow.WorkflowResponse{}, err
	}
	s.log.Info(ctx, "rejection workflow answered", logger.Int("status", resp.Status))
	return resp, nil
}

// BatchResult is the outcome of a threshold rejection.
type BatchResult struct {
	Kept     []model.DashboardCandidate `json:"kept"`
	Rejected []model.DashboardCandidate `json:"rejected"`
}

// RejectBatch fetches the current candidates and rejects every one scoring
// below threshold, one workflow call each, concurrently. Any failed call
// fails the batch; calls already sent are not undone.
func (s *Service) RejectBatch(ctx context.Context, threshold int) (BatchResult, error) {
	cands, err := s.Candidates(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	kept, rejected := ranking.Partition(cands, threshold)
	if len(rejected) == 0 {
		return BatchResult{Kept: kept, Rejected: rejected}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	s.limit(g)
	for _, c := range rejected {
		g.Go(func() error {
			body, err := json.Marshal(model.RejectPayload{
				ProfileKey: c.ID,
				Strengths:  c.Strengths,
				Weaknesses: c.Weaknesses,
			})
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrRejectFailed, c.ID, err)
			}
			resp, err := s.Reject(gctx, body)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrRejectFailed, c.ID, err)
			}
			if !resp.OK() {
				return fmt.Errorf("%w: %s: upstream status %d", ErrRejectFailed, c.ID, resp.Status)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error(ctx, "batch rejection failed",
			logger.Int("threshold", threshold),
			logger.Int("rejected", len(rejected)),
			logger.Error(err))
		return BatchResult{}, err
	}
	s.log.Info(ctx, "batch rejection done",
		logger.Int("threshold", threshold),
		logger.Int("kept", len(kept)),
		logger.Int("rejected", len(rejected)))
	return BatchResult{Kept: kept, Rejected: rejected}, nil
}

// Jobs lists the jobs of the dashboard board.
func (s *Service) Jobs(ctx context.Context) ([]model.JobSummary, error) {
	jobs, err := s.hr.ListJobs(ctx, s.settings.BoardKey, s.settings.JobsLimit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}
