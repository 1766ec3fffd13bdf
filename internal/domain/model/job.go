// Package model contains domain models passed between layers.
package model

// Job is a job object as produced by the remote parser. It stays a loose map
// so that fields we never read survive the round trip to the board.
type Job map[string]any

// jobSectionName is the section carrying the text a job was parsed from.
const jobSectionName = "Job Description"

// StripIdentifiers removes keys the parser may have invented.
func (j Job) StripIdentifiers() {
	delete(j, "key")
	delete(j, "board")
	delete(j, "board_key")
}

// SetDescription attaches the source text as the job's only section.
func (j Job) SetDescription(text string) {
	j["sections"] = []any{
		map[string]any{
			"name":        jobSectionName,
			"title":       jobSectionName,
			"description": text,
		},
	}
}

// Name returns the parsed job title, if any.
func (j Job) Name() string {
	s, _ := j["name"].(string)
	return s
}

// LocationText returns location.text, or "" when the job has no location.
func (j Job) LocationText() string {
	loc, ok := j["location"].(map[string]any)
	if !ok {
		return ""
	}
	s, _ := loc["text"].(string)
	return s
}

// SetLocation replaces the location object, typically with a geocoded one.
func (j Job) SetLocation(loc map[string]any) {
	j["location"] = loc
}

// Geopoint returns the job coordinates when both are present and non-zero.
func (j Job) Geopoint() *GeoPoint {
	loc, ok := j["location"].(map[string]any)
	if !ok {
		return nil
	}
	lat, okLat := loc["lat"].(float64)
	lng, okLng := loc["lng"].(float64)
	if !okLat || !okLng || lat == 0 || lng == 0 {
		return nil
	}
	return &GeoPoint{Lat: lat, Lng: lng}
}

// SkillNames lists the names of the job's skills, in order. Skills may be
// objects with a name or bare strings.
func (j Job) SkillNames() []string {
	raw, _ := j["skills"].([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			if v != "" {
				out = append(out, v)
			}
		case map[string]any:
			if name, _ := v["name"].(string); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// JobSummary is the flat job record listed by the dashboard.
type JobSummary struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
}
