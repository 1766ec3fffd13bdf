package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/okian/matchbot/internal/adapters/hrflow"
	"github.com/okian/matchbot/internal/domain/model"
)

var errUpstream = errors.New("upstream 500")

type sent struct {
	to   string
	body string
}

type fakeMessenger struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (f *fakeMessenger) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, sent{to: to, body: body})
	return f.err
}

func (f *fakeMessenger) bodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = m.body
	}
	return out
}

type fakeDownloader struct {
	dir   string
	paths []string
	err   error
}

func (f *fakeDownloader) Download(_ context.Context, _, _ string, kind model.MediaKind) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	p := filepath.Join(f.dir, "wa-"+string(kind)+"-test")
	if err := os.WriteFile(p, []byte("media"), 0o600); err != nil {
		return "", err
	}
	f.paths = append(f.paths, p)
	return p, nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(context.Context, string, string) (string, error) {
	return f.text, f.err
}

type fakeGenerator struct {
	calls  int
	job    string
	err    error
	resume string
}

func (f *fakeGenerator) GenerateJob(_ context.Context, resume string) (string, error) {
	f.calls++
	f.resume = resume
	return f.job, f.err
}

// fakeHrFlow answers every call from its fields and counts calls by name.
type fakeHrFlow struct {
	mu    sync.Mutex
	calls map[string]int

	ocrText    string
	ocrErr     error
	parseErr   error
	parsedText string
	job        model.Job
	jobKey     string
	answers    []string
	profiles   []model.Profile
	scoreReq   hrflow.ScoreRequest
	grades     []float64
	gradeErr   error
	gradeReq   hrflow.GradeRequest
	summaries  map[string]string
	summaryErr map[string]error
	explain    model.Explanation
	explainErr error
	tagErr     error
	tags       map[string]hrflow.TagResult // by first label
}

func newFakeHrFlow() *fakeHrFlow {
	return &fakeHrFlow{
		calls:      map[string]int{},
		job:        model.Job{"name": "Go Developer", "location": map[string]any{"text": "Paris", "lat": 48.85, "lng": 2.35}},
		jobKey:     "job-1",
		answers:    []string{"Go Developer", "0", "0", "Senior", "5"},
		summaries:  map[string]string{},
		summaryErr: map[string]error{},
		tags:       map[string]hrflow.TagResult{},
	}
}

func (f *fakeHrFlow) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeHrFlow) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeHrFlow) OCR(context.Context, string) (string, error) {
	f.hit("ocr")
	return f.ocrText, f.ocrErr
}

func (f *fakeHrFlow) ParseJob(_ context.Context, text string) (model.Job, error) {
	f.hit("parse")
	f.parsedText = text
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	job := model.Job{"key": "invented"}
	for k, v := range f.job {
		job[k] = v
	}
	return job, nil
}

func (f *fakeHrFlow) EnrichLocation(_ context.Context, job model.Job) (model.Job, error) {
	f.hit("geocode")
	return job, nil
}

func (f *fakeHrFlow) IndexJob(_ context.Context, _ string, job model.Job) (string, error) {
	f.hit("index")
	if _, ok := job["key"]; ok {
		return "", errors.New("identifier leaked to board")
	}
	return f.jobKey, nil
}

func (f *fakeHrFlow) AskJob(context.Context, string, string, []string) ([]string, error) {
	f.hit("ask")
	return f.answers, nil
}

func (f *fakeHrFlow) ScoreProfiles(_ context.Context, r hrflow.ScoreRequest) ([]model.Profile, error) {
	f.hit("score")
	f.scoreReq = r
	return f.profiles, nil
}

func (f *fakeHrFlow) GradeProfiles(_ context.Context, r hrflow.GradeRequest) ([]float64, error) {
	f.hit("grade")
	f.gradeReq = r
	return f.grades, f.gradeErr
}

func (f *fakeHrFlow) SummarizeProfile(_ context.Context, _, profileKey, _ string) (string, error) {
	f.hit("summary")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaries[profileKey], f.summaryErr[profileKey]
}

func (f *fakeHrFlow) Upskilling(context.Context, hrflow.UpskillingRequest) (model.Explanation, error) {
	f.hit("upskilling")
	return f.explain, f.explainErr
}

func (f *fakeHrFlow) Tag(_ context.Context, r hrflow.TagRequest) (hrflow.TagResult, error) {
	f.hit("tag")
	if f.tagErr != nil {
		return hrflow.TagResult{}, f.tagErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tags[r.Labels[0]], nil
}

type fakeRunLog struct {
	mu   sync.Mutex
	runs []model.Run
}

func (f *fakeRunLog) Record(_ context.Context, r model.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, r)
	return nil
}

type fakeAlerter struct {
	runs []model.Run
}

func (f *fakeAlerter) RunFailed(_ context.Context, r model.Run) error {
	f.runs = append(f.runs, r)
	return nil
}

func profile(key string, score float64) model.Profile {
	return model.Profile{
		Key:       key,
		SourceKey: "src",
		Info:      model.ProfileInfo{FullName: "Cand " + key},
		Score:     score,
	}
}
