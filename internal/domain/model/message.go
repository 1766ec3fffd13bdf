package model

import "time"

// MediaKind classifies an inbound attachment.
type MediaKind string

// Attachment kinds.
const (
	MediaNone        MediaKind = "none"
	MediaAudio       MediaKind = "audio"
	MediaResume      MediaKind = "resume"
	MediaUnsupported MediaKind = "unsupported"
)

// InboundMessage is one WhatsApp webhook delivery, detached from the request.
type InboundMessage struct {
	MessageSID       string
	From             string
	Body             string
	NumMedia         int
	MediaURL         string
	MediaContentType string
	ReceivedAt       time.Time
	// Acked, when set, is closed once the webhook answer has been flushed.
	// Processing does not start before that.
	Acked <-chan struct{}
}

// HasMedia reports whether the sender attached something.
func (m InboundMessage) HasMedia() bool {
	return m.NumMedia > 0
}

// Run outcomes recorded in the run log.
const (
	OutcomeMatched  = "matched"
	OutcomeNoMatch  = "no_match"
	OutcomeRejected = "rejected_input"
	OutcomeFailed   = "failed"
)

// Run is the audit record of one pipeline execution.
type Run struct {
	ID         string    `json:"id"`
	MessageSID string    `json:"message_sid"`
	From       string    `json:"from"`
	InputKind  MediaKind `json:"input_kind"`
	Text       string    `json:"text"`
	JobKey     string    `json:"job_key"`
	Candidates int       `json:"candidates"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration is how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// ChatMessage is one turn of the dashboard assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SkillLevel compares a candidate's level with the required one.
type SkillLevel struct {
	Name           string  `json:"name"`
	CandidateLevel float64 `json:"candidateLevel"`
	RequiredLevel  float64 `json:"requiredLevel"`
}

// Recommendation is a suggested learning action for a candidate. Type is
// "hardskill", "softskill" or "general".
type Recommendation struct {
	Type        string   `json:"type"`
	Skill       string   `json:"skill,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Courses     []Course `json:"courses"`
}

// Course is an online course backing a recommendation.
type Course struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// ChatContext grounds the assistant in one candidate/job analysis.
type ChatContext struct {
	CandidateName   string           `json:"candidateName"`
	JobTitle        string           `json:"jobTitle"`
	SkillGaps       []SkillLevel     `json:"skillGaps"`
	Strengths       []SkillLevel     `json:"strengths"`
	Recommendations []Recommendation `json:"recommendations"`
}
