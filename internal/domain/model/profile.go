package model

import (
	"encoding/json"
	"strings"
)

// Profile is the subset of a remote candidate profile the service reads.
type Profile struct {
	Key                 string       `json:"key"`
	SourceKey           string       `json:"source_key,omitempty"`
	Source              *SourceRef   `json:"source,omitempty"`
	Info                ProfileInfo  `json:"info"`
	Experiences         []Experience `json:"experiences"`
	ExperiencesDuration float64      `json:"experiences_duration"`
	Skills              []Skill      `json:"skills"`
	Attachments         []Attachment `json:"attachments"`
	Score               float64      `json:"score,omitempty"`
	TextLanguage        string       `json:"text_language,omitempty"`
}

// SourceRef points at the source a profile is stored in.
type SourceRef struct {
	Key string `json:"key"`
}

// ProfileInfo holds the identity block of a profile.
type ProfileInfo struct {
	FullName  string   `json:"full_name"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Summary   string   `json:"summary"`
	Picture   string   `json:"picture"`
	Location  Location `json:"location"`
}

// Location is a free-text location with optional coordinates.
type Location struct {
	Text string   `json:"text"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

// Experience is one professional experience entry.
type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

// Attachment is a stored document linked to a profile.
type Attachment struct {
	Type      string `json:"type"`
	PublicURL string `json:"public_url"`
}

// Skill accepts either a bare string or an object with name/value.
type Skill struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
	Type  string `json:"type,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Skill) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = Skill{Name: str}
		return nil
	}
	type plain Skill
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = Skill(p)
	return nil
}

// Label returns the skill name, falling back to its value.
func (s Skill) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Value
}

// SourceKeyOrRef returns source_key, falling back to source.key.
func (p Profile) SourceKeyOrRef() string {
	if p.SourceKey != "" {
		return p.SourceKey
	}
	if p.Source != nil {
		return p.Source.Key
	}
	return ""
}

// DisplayName picks full_name, then name, then the profile key.
func (p Profile) DisplayName(fallback string) string {
	switch {
	case p.Info.FullName != "":
		return p.Info.FullName
	case p.Info.Name != "":
		return p.Info.Name
	case p.Key != "":
		return p.Key
	default:
		return fallback
	}
}

// LatestTitle returns the title of the first listed experience.
func (p Profile) LatestTitle() string {
	if len(p.Experiences) == 0 {
		return ""
	}
	return p.Experiences[0].Title
}

// AttachmentURL returns the first attachment's public URL.
func (p Profile) AttachmentURL() string {
	if len(p.Attachments) == 0 {
		return ""
	}
	return p.Attachments[0].PublicURL
}

// TaggingText concatenates summary, experiences and skills for classification.
func (p Profile) TaggingText() string {
	exps := make([]string, 0, len(p.Experiences))
	for _, e := range p.Experiences {
		exps = append(exps, e.Title+" "+e.Description)
	}
	skills := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		skills = append(skills, s.Label())
	}
	text := p.Info.Summary + " " + strings.Join(exps, " ") + " " + strings.Join(skills, " ")
	return strings.TrimSpace(text)
}
