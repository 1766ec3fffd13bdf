// Package media stages inbound chat attachments on local disk.
package media

import (
	"strings"

	"github.com/okian/matchbot/internal/domain/model"
)

// File name prefixes of staged media. The reaper only touches these.
const (
	PrefixAudio  = "wa-audio"
	PrefixResume = "wa-resume"
	// PrefixAny matches every staged file.
	PrefixAny = "wa-"
)

// Classify maps an attachment content type to the pipeline branch handling it.
func Classify(contentType string) model.MediaKind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case ct == "":
		return model.MediaUnsupported
	case strings.HasPrefix(ct, "audio/"):
		return model.MediaAudio
	case strings.Contains(ct, "pdf"),
		strings.Contains(ct, "msword"),
		strings.Contains(ct, "wordprocessingml"),
		strings.Contains(ct, "doc"),
		strings.Contains(ct, "text/plain"):
		return model.MediaResume
	default:
		return model.MediaUnsupported
	}
}

// Extension picks a file extension from the content type.
func Extension(kind model.MediaKind, contentType string) string {
	ct := strings.ToLower(contentType)
	has := func(s string) bool { return strings.Contains(ct, s) }
	switch kind {
	case model.MediaAudio:
		switch {
		case has("ogg"):
			return ".ogg"
		case has("wav"):
			return ".wav"
		case has("mp3"), has("mpeg"):
			return ".mp3"
		case has("m4a"), has("mp4"):
			return ".m4a"
		}
	case model.MediaResume:
		switch {
		case has("pdf"):
			return ".pdf"
		case has("msword"), has("wordprocessingml"):
			return ".docx"
		case has("doc"):
			return ".doc"
		case has("text"):
			return ".txt"
		}
	}
	return ".bin"
}

func prefix(kind model.MediaKind) string {
	if kind == model.MediaResume {
		return PrefixResume
	}
	return PrefixAudio
}
