package hrflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/matchbot/internal/domain/model"
)

// isoMillis matches the timestamps the scoring endpoint expects.
const isoMillis = "2006-01-02T15:04:05.000Z"

// ScoreRequest parameterises ScoreProfiles.
type ScoreRequest struct {
	SourceKeys   []string
	BoardKey     string
	JobKey       string
	AlgorithmKey string
	Limit        int
	Filters      model.Filters
}

// ScoreProfiles ranks profiles of the given sources against a stored job.
func (c *Client) ScoreProfiles(ctx context.Context, r ScoreRequest) ([]model.Profile, error) {
	const op = "profiles.scoring"
	q := url.Values{}
	q.Set("source_keys", jsonParam(r.SourceKeys))
	q.Set("board_key", r.BoardKey)
	q.Set("job_key", r.JobKey)
	q.Set("algorithm_key", r.AlgorithmKey)
	q.Set("use_algorithm", "1")
	q.Set("limit", strconv.Itoa(r.Limit))
	q.Set("page", "1")
	q.Set("sort_by", "scoring")
	q.Set("order_by", "desc")
	if r.Filters.CreatedAtMin != nil {
		q.Set("created_at_min", FormatTime(*r.Filters.CreatedAtMin))
	}
	q.Set("created_at_max", FormatTime(r.Filters.CreatedAtMax))
	q.Set("experiences_duration_min", strconv.Itoa(r.Filters.Seniority))
	if r.Filters.Location != nil {
		q.Set("location_distance", strconv.Itoa(r.Filters.Radius))
		q.Set("location_geopoint", jsonParam(r.Filters.Location))
	}

	var data struct {
		Profiles []model.Profile `json:"profiles"`
	}
	if err := c.get(ctx, op, "/profiles/scoring", q, &data); err != nil {
		return nil, err
	}
	return data.Profiles, nil
}

// GradeRequest parameterises GradeProfiles.
type GradeRequest struct {
	AlgorithmKey string
	BoardKey     string
	JobKey       string
	Profiles     []model.Profile
}

// GradeProfiles grades a batch of profiles against a job. The returned slice
// is aligned with r.Profiles; a response shorter than the batch is an error.
func (c *Client) GradeProfiles(ctx context.Context, r GradeRequest) ([]float64, error) {
	const op = "profile.grading"
	if len(r.Profiles) == 0 {
		return nil, nil
	}
	q := url.Values{}
	q.Set("algorithm_key", r.AlgorithmKey)
	q.Set("job_key", r.JobKey)
	q.Set("board_key", r.BoardKey)
	for i, p := range r.Profiles {
		idx := strconv.Itoa(i)
		q.Set("profile_ids["+idx+"][source_key]", p.SourceKeyOrRef())
		q.Set("profile_ids["+idx+"][profile_key]", p.Key)
	}

	scores, err := c.gradingScores(ctx, op, q)
	if err != nil {
		return nil, err
	}
	if len(scores) < len(r.Profiles) {
		return nil, fmt.Errorf("%w: %s: %d scores for %d profiles", ErrDecode, op, len(scores), len(r.Profiles))
	}
	return scores[:len(r.Profiles)], nil
}

// GradeOne grades a single profile. ok is false when the response carried no
// score tuple.
func (c *Client) GradeOne(ctx context.Context, algorithmKey, boardKey, jobKey, sourceKey, profileKey string) (float64, bool, error) {
	const op = "profile.grading"
	q := url.Values{}
	q.Set("algorithm_key", algorithmKey)
	q.Set("board_key", boardKey)
	q.Set("job_key", jobKey)
	q.Set("profile_ids[0][profile_key]", profileKey)
	q.Set("profile_ids[0][source_key]", sourceKey)

	scores, err := c.gradingScores(ctx, op, q)
	if err != nil {
		return 0, false, err
	}
	if len(scores) == 0 {
		return 0, false, nil
	}
	return scores[0], true, nil
}

// gradingScores extracts element 1 of every data.scores tuple.
func (c *Client) gradingScores(ctx context.Context, op string, q url.Values) ([]float64, error) {
	var data struct {
		Scores [][]json.RawMessage `json:"scores"`
	}
	if err := c.get(ctx, op, "/profile/grading", q, &data); err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(data.Scores))
	for i, tuple := range data.Scores {
		if len(tuple) < 2 {
			return nil, fmt.Errorf("%w: %s: tuple %d too short", ErrDecode, op, i)
		}
		var score float64
		if err := json.Unmarshal(tuple[1], &score); err != nil {
			return nil, fmt.Errorf("%w: %s: tuple %d: %w", ErrDecode, op, i, err)
		}
		out = append(out, score)
	}
	return out, nil
}

// AskProfile answers natural-language questions against a stored profile.
func (c *Client) AskProfile(ctx context.Context, sourceKey, profileKey string, questions []string) ([]string, error) {
	const op = "profile.asking"
	q := url.Values{}
	q.Set("key", profileKey)
	q.Set("source_key", sourceKey)
	q.Set("questions", jsonParam(questions))
	var answers []string
	if err := c.get(ctx, op, "/profile/asking", q, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// SummarizeProfile asks for a 20 word summary written in language.
func (c *Client) SummarizeProfile(ctx context.Context, sourceKey, profileKey, language string) (string, error) {
	question := fmt.Sprintf("Write a 20 words summary in %s about this profile", language)
	answers, err := c.AskProfile(ctx, sourceKey, profileKey, []string{question})
	if err != nil {
		return "", err
	}
	if len(answers) == 0 {
		return "", fmt.Errorf("%w: profile.asking", ErrEmptyResult)
	}
	return answers[0], nil
}

// UpskillingRequest parameterises Upskilling.
type UpskillingRequest struct {
	SourceKey  string
	ProfileKey string
	BoardKey   string
	JobKey     string
	OutputLang string
	Score      float64
}

// Upskilling returns the strengths/weaknesses of a profile against a job.
func (c *Client) Upskilling(ctx context.Context, r UpskillingRequest) (model.Explanation, error) {
	const op = "profile.upskilling"
	q := url.Values{}
	q.Set("source_key", r.SourceKey)
	q.Set("profile_key", r.ProfileKey)
	q.Set("board_key", r.BoardKey)
	q.Set("job_key", r.JobKey)
	q.Set("output_lang", r.OutputLang)
	q.Set("score", strconv.FormatFloat(r.Score, 'f', -1, 64))
	var e model.Explanation
	if err := c.get(ctx, op, "/profile/upskilling", q, &e); err != nil {
		return model.Explanation{}, err
	}
	return e, nil
}

// ListProfiles returns the newest profile stubs (key only) of a source.
func (c *Client) ListProfiles(ctx context.Context, sourceKey string, limit int) ([]model.Profile, error) {
	return c.listProfiles(ctx, sourceKey, limit, false)
}

// ListProfilesWithInfo returns the newest profiles of a source with their
// identity block.
func (c *Client) ListProfilesWithInfo(ctx context.Context, sourceKey string, limit int) ([]model.Profile, error) {
	return c.listProfiles(ctx, sourceKey, limit, true)
}

func (c *Client) listProfiles(ctx context.Context, sourceKey string, limit int, full bool) ([]model.Profile, error) {
	const op = "storing.profiles"
	q := url.Values{}
	q.Set("source_keys", jsonParam([]string{sourceKey}))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("order_by", "desc")
	q.Set("sort_by", "created_at")
	q.Set("return_profile", strconv.FormatBool(full))
	var data []model.Profile
	if err := c.get(ctx, op, "/storing/profiles", q, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetProfile fetches one stored profile.
func (c *Client) GetProfile(ctx context.Context, sourceKey, key string) (model.Profile, error) {
	const op = "profile.indexing"
	q := url.Values{}
	q.Set("source_key", sourceKey)
	q.Set("key", key)
	var p model.Profile
	if err := c.get(ctx, op, "/profile/indexing", q, &p); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// FormatTime renders t the way the scoring endpoint expects.
func FormatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
