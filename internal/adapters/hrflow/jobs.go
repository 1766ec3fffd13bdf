package hrflow

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/okian/matchbot/internal/domain/model"
)

const parsingModel = "atlas"

// ParseJob turns free text into a job object. Identifiers the parser may have
// invented are stripped and the text is attached as the description section.
func (c *Client) ParseJob(ctx context.Context, text string) (model.Job, error) {
	const op = "text.parsing"
	body := map[string]any{
		"texts":         []string{text},
		"parsing_model": parsingModel,
		"output_object": "job",
	}
	var data []struct {
		Job model.Job `json:"job"`
	}
	if err := c.postJSON(ctx, op, "/text/parsing", body, &data); err != nil {
		return nil, err
	}
	if len(data) == 0 || data[0].Job == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResult, op)
	}
	job := data[0].Job
	job.StripIdentifiers()
	job.SetDescription(text)
	return job, nil
}

// Geocode resolves a free-text location to a structured location object.
func (c *Client) Geocode(ctx context.Context, location string) (map[string]any, error) {
	const op = "text.geocoding"
	var data []map[string]any
	if err := c.postJSON(ctx, op, "/text/geocoding", map[string]any{"texts": []string{location}}, &data); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResult, op)
	}
	return data[0], nil
}

// EnrichLocation geocodes job.location.text in place. Jobs without a
// location text are returned untouched.
func (c *Client) EnrichLocation(ctx context.Context, job model.Job) (model.Job, error) {
	text := job.LocationText()
	if text == "" {
		return job, nil
	}
	loc, err := c.Geocode(ctx, text)
	if err != nil {
		return nil, err
	}
	job.SetLocation(loc)
	return job, nil
}

// IndexJob stores job in boardKey and returns its assigned key.
func (c *Client) IndexJob(ctx context.Context, boardKey string, job model.Job) (string, error) {
	const op = "job.indexing"
	var data struct {
		Key string `json:"key"`
	}
	body := map[string]any{"job": job, "board_key": boardKey}
	if err := c.postJSON(ctx, op, "/job/indexing", body, &data); err != nil {
		return "", err
	}
	if data.Key == "" {
		return "", fmt.Errorf("%w: %s: no key", ErrEmptyResult, op)
	}
	return data.Key, nil
}

// AskJob answers natural-language questions against a stored job. Answers
// come back in question order.
func (c *Client) AskJob(ctx context.Context, boardKey, jobKey string, questions []string) ([]string, error) {
	const op = "job.asking"
	q := url.Values{}
	q.Set("board_key", boardKey)
	q.Set("key", jobKey)
	for i, question := range questions {
		q.Set("questions["+strconv.Itoa(i)+"]", question)
	}
	var answers []string
	if err := c.get(ctx, op, "/job/asking", q, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// GetJob fetches one indexed job.
func (c *Client) GetJob(ctx context.Context, boardKey, key string) (model.Job, error) {
	const op = "job.indexing.get"
	q := url.Values{}
	q.Set("board_key", boardKey)
	q.Set("key", key)
	var job model.Job
	if err := c.get(ctx, op, "/job/indexing", q, &job); err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResult, op)
	}
	return job, nil
}

// ListJobs returns up to limit jobs stored in boardKey.
func (c *Client) ListJobs(ctx context.Context, boardKey string, limit int) ([]model.JobSummary, error) {
	const op = "storing.jobs"
	q := url.Values{}
	q.Set("board_keys", jsonParam([]string{boardKey}))
	q.Set("limit", strconv.Itoa(limit))
	var data []struct {
		Key  string `json:"key"`
		Name string `json:"name"`
		Tags []struct {
			Value string `json:"value"`
		} `json:"tags"`
		Location struct {
			Text string `json:"text"`
		} `json:"location"`
	}
	if err := c.get(ctx, op, "/storing/jobs", q, &data); err != nil {
		return nil, err
	}
	out := make([]model.JobSummary, 0, len(data))
	for _, j := range data {
		s := model.JobSummary{Key: j.Key, Title: j.Name, Location: j.Location.Text}
		if s.Title == "" {
			s.Title = "Untitled"
		}
		if s.Location == "" {
			s.Location = "Remote"
		}
		if len(j.Tags) > 0 {
			s.Company = j.Tags[0].Value
		}
		out = append(out, s)
	}
	return out, nil
}
