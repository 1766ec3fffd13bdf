package model

// CandidateContact identifies the analysed candidate.
type CandidateContact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Analysis compares one stored profile with one job: the match score,
// skill gaps and strengths, learning recommendations and a drafted
// rejection email, plus the context the career assistant chats from.
type Analysis struct {
	Score            float64          `json:"score"`
	Threshold        float64          `json:"threshold"`
	Matched          bool             `json:"matched"`
	DetectedLanguage string           `json:"detectedLanguage"`
	Candidate        CandidateContact `json:"candidate"`
	SkillGaps        []SkillLevel     `json:"skillGaps"`
	Strengths        []SkillLevel     `json:"strengths"`
	Recommendations  []Recommendation `json:"recommendations"`
	Email            string           `json:"email"`
	ChatContext      ChatContext      `json:"chatContext"`
}

// ProfileSummary is one entry of the profile picker.
type ProfileSummary struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
