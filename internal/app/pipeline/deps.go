package pipeline

import (
	"context"

	"github.com/okian/matchbot/internal/adapters/hrflow"
	"github.com/okian/matchbot/internal/domain/model"
)

// Messenger delivers one chat message.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
}

// Downloader stages an attachment on disk and returns its path.
type Downloader interface {
	Download(ctx context.Context, url, contentType string, kind model.MediaKind) (string, error)
}

// Transcriber converts an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path, language string) (string, error)
}

// Generator writes a job posting for which a résumé is an ideal fit.
type Generator interface {
	GenerateJob(ctx context.Context, resume string) (string, error)
}

// HrFlow is the subset of the HR data API the pipeline drives.
type HrFlow interface {
	OCR(ctx context.Context, path string) (string, error)
	ParseJob(ctx context.Context, text string) (model.Job, error)
	EnrichLocation(ctx context.Context, job model.Job) (model.Job, error)
	IndexJob(ctx context.Context, boardKey string, job model.Job) (string, error)
	AskJob(ctx context.Context, boardKey, jobKey string, questions []string) ([]string, error)
	ScoreProfiles(ctx context.Context, r hrflow.ScoreRequest) ([]model.Profile, error)
	GradeProfiles(ctx context.Context, r hrflow.GradeRequest) ([]float64, error)
	SummarizeProfile(ctx context.Context, sourceKey, profileKey, language string) (string, error)
	Upskilling(ctx context.Context, r hrflow.UpskillingRequest) (model.Explanation, error)
	Tag(ctx context.Context, r hrflow.TagRequest) (hrflow.TagResult, error)
}

// RunLog records the outcome of every run.
type RunLog interface {
	Record(ctx context.Context, run model.Run) error
}

// Alerter is told about failed runs.
type Alerter interface {
	RunFailed(ctx context.Context, run model.Run) error
}

// Deps are the collaborators a Pipeline needs. All fields are required.
type Deps struct {
	Messenger   Messenger
	Downloader  Downloader
	Transcriber Transcriber
	Generator   Generator
	HrFlow      HrFlow
	// Remove deletes a staged attachment; a missing file is not an error.
	Remove func(path string) error
}
