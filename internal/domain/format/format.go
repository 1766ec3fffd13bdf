package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/internal/domain/ranking"
)

// Truncation limits for echoed input text.
const (
	SearchEchoLimit = 800
	LeadEchoLimit   = 400
	ellipsis        = "..."
)

// Formatter renders replies in one language.
type Formatter struct {
	msgs        Messages
	fallbackURL string
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithFallbackURL links url for profiles that have no attachment.
func WithFallbackURL(url string) Option {
	return func(f *Formatter) {
		f.fallbackURL = url
	}
}

// New returns a Formatter for lang ("fr" or "en").
func New(lang string, opts ...Option) *Formatter {
	f := &Formatter{msgs: Catalog(lang)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Messages exposes the fixed texts.
func (f *Formatter) Messages() Messages {
	return f.msgs
}

// Unsupported explains that contentType cannot be processed.
func (f *Formatter) Unsupported(contentType string) string {
	return fmt.Sprintf(f.msgs.Unsupported, contentType)
}

// Searching echoes the resolved input text before the search starts.
func (f *Formatter) Searching(text string) string {
	return fmt.Sprintf(f.msgs.Searching, Truncate(text, SearchEchoLimit))
}

// Lead announces the result count, or quotes the text when nothing matched.
func (f *Formatter) Lead(text string, n int) string {
	text = Truncate(text, LeadEchoLimit)
	if n == 0 {
		return fmt.Sprintf(f.msgs.NoMatch, text)
	}
	return fmt.Sprintf(f.msgs.Lead, n, text)
}

// Error renders the catch-all failure reply.
func (f *Formatter) Error(err error) string {
	return fmt.Sprintf(f.msgs.Error, err.Error())
}

// Candidate renders one ranked candidate card. rank starts at 1.
func (f *Formatter) Candidate(c model.Candidate, rank int) string {
	lines := make([]string, 0, 8)
	lines = append(lines, fmt.Sprintf("%d %s %s %.2f ⭐",
		rank, medal(rank), c.Profile.DisplayName(f.msgs.UnnamedProfile), ranking.Stars(c.Score)))

	if title := c.Profile.LatestTitle(); title != "" {
		lines = append(lines, title)
	}

	var tags []string
	if c.Seniority.Label != "" {
		tags = append(tags, "💼 "+c.Seniority.Label)
	}
	if c.Degree.Label != "" {
		tags = append(tags, "🎓 "+c.Degree.Label)
	}
	if len(tags) > 0 {
		lines = append(lines, strings.Join(tags, " "))
	}

	if c.Summary != "" {
		lines = append(lines, c.Summary)
	}

	lines = append(lines,
		bullets(f.msgs.Strengths, c.Explanation.Strengths),
		bullets(f.msgs.Weaknesses, c.Explanation.Weaknesses),
	)

	url := c.Profile.AttachmentURL()
	if url == "" {
		url = f.fallbackURL
	}
	if url != "" {
		lines = append(lines, f.msgs.OpenProfile+"\n"+url)
	}

	return strings.Join(lines, "\n")
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	default:
		return "🥉"
	}
}

func bullets(header string, items []model.Insight) string {
	if len(items) == 0 {
		return header + ": -"
	}
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(":")
	for _, it := range items {
		b.WriteString("\n• ")
		if it.Name == "" {
			b.WriteString("-")
			continue
		}
		b.WriteString(it.Name)
	}
	return b.String()
}

// Truncate keeps the first n characters of s and appends "..." when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + ellipsis
}

// Clean NFC-normalises s and trims surrounding whitespace, so composed and
// decomposed accents compare and render the same downstream.
func Clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
