package pipeline

import "errors"

// Sentinel kinds for inputs the pipeline refuses. Each one is answered with
// its own chat reply instead of the generic error message.
var (
	ErrMissingMediaURL  = errors.New("attachment without media url")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrEmptyResume      = errors.New("no text extracted from resume")
	ErrEmptyGeneration  = errors.New("no job generated from resume")
	ErrEmptyText        = errors.New("no input text")
	ErrMissingDeps      = errors.New("pipeline dependencies missing")
)

// rejection is an input the pipeline stops on after replying.
type rejection struct {
	kind  error
	reply string
}

func (r *rejection) Error() string { return r.kind.Error() }
func (r *rejection) Unwrap() error { return r.kind }

func reject(kind error, reply string) error {
	return &rejection{kind: kind, reply: reply}
}
