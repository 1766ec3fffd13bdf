package openai

import "errors"

// Sentinel error kinds for this package.
var (
	ErrTranscribe = errors.New("transcription failed")
	ErrGenerate   = errors.New("generation failed")
	ErrChat       = errors.New("chat failed")
)
