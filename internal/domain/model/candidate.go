package model

import (
	"encoding/json"
	"time"
)

// Tag is a label chosen by zero-shot classification.
type Tag struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Insight is one strength or weakness item; the remote side sends either a
// string or an object with a name.
type Insight struct {
	Name string `json:"name"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Insight) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		i.Name = str
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		// Unknown shapes render as a dash rather than failing the batch.
		i.Name = ""
		return nil //nolint:nilerr // tolerated shape
	}
	i.Name = obj.Name
	return nil
}

// Explanation is the strengths/weaknesses breakdown of a profile against a job.
type Explanation struct {
	Strengths  []Insight `json:"strengths"`
	Weaknesses []Insight `json:"weaknesses"`
}

// Truncate keeps at most n items of each list.
func (e Explanation) Truncate(n int) Explanation {
	if len(e.Strengths) > n {
		e.Strengths = e.Strengths[:n]
	}
	if len(e.Weaknesses) > n {
		e.Weaknesses = e.Weaknesses[:n]
	}
	return e
}

// Candidate is a graded profile after enrichment, ready to be formatted.
type Candidate struct {
	Profile     Profile
	Score       float64
	Summary     string
	Explanation Explanation
	Seniority   Tag
	Degree      Tag
}

// Filters parameterise the scoring call; derived from the asking answers.
type Filters struct {
	JobTitle     string
	Location     *GeoPoint
	Radius       int
	Seniority    int
	CreatedAtMin *time.Time
	CreatedAtMax time.Time
}

// DashboardCandidate is the flat display record served by GET /api/candidates.
type DashboardCandidate struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Location   string   `json:"location"`
	Score      int      `json:"score"`
	Experience string   `json:"experience"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Avatar     string   `json:"avatar"`
}

// RejectPayload is the body posted to the rejection workflow.
type RejectPayload struct {
	ProfileKey string   `json:"profile_key"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}
