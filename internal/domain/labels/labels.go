// Package labels defines the fixed label sets used for zero-shot tagging of
// candidate profiles, with per-language label text and classifier context.
package labels

import "github.com/okian/matchbot/internal/domain/model"

// Label is one classification target.
type Label struct {
	EN    string
	FR    string
	Value int
}

// Set is an ordered label set. The last label is the "other" sentinel.
type Set struct {
	Name    string
	Labels  []Label
	context map[string]string
}

// Seniority classifies career level.
var Seniority = Set{ //nolint:gochecknoglobals // static label set
	Name: "seniority",
	Labels: []Label{
		{EN: "Junior", FR: "Junior", Value: 0},
		{EN: "Mid-level", FR: "Intermédiaire", Value: 1},
		{EN: "Senior", FR: "Senior", Value: 2},
		{EN: "Lead", FR: "Lead", Value: 3},
		{EN: "Principal", FR: "Principal", Value: 4},
		{EN: "Other", FR: "Autre", Value: 5},
	},
	context: map[string]string{
		"en": "Determine the seniority level of a professional profile based on their experience, responsibilities, and career progression.",
		"fr": "Déterminez le niveau de séniorité d'un profil professionnel en fonction de son expérience, de ses responsabilités et de sa progression de carrière.",
	},
}

// Degree classifies the highest education degree.
var Degree = Set{ //nolint:gochecknoglobals // static label set
	Name: "degree",
	Labels: []Label{
		{EN: "No degree", FR: "Sans diplôme", Value: 0},
		{EN: "High school", FR: "Baccalauréat", Value: 1},
		{EN: "Bachelor", FR: "Licence", Value: 2},
		{EN: "Master", FR: "Master", Value: 3},
		{EN: "PhD", FR: "Doctorat", Value: 4},
		{EN: "Other", FR: "Autre", Value: 5},
	},
	context: map[string]string{
		"en": "Determine the highest educational degree obtained by a professional profile.",
		"fr": "Déterminez le plus haut diplôme obtenu par un profil professionnel.",
	},
}

// Text returns the label in lang; anything but "fr" is English.
func (l Label) Text(lang string) string {
	if lang == "fr" {
		return l.FR
	}
	return l.EN
}

// Names lists the label texts in lang, in order.
func (s Set) Names(lang string) []string {
	out := make([]string, len(s.Labels))
	for i, l := range s.Labels {
		out[i] = l.Text(lang)
	}
	return out
}

// Context returns the classifier instruction in lang.
func (s Set) Context(lang string) string {
	if lang == "fr" {
		return s.context["fr"]
	}
	return s.context["en"]
}

// Other is the sentinel tag used when no label applies or tagging failed.
func (s Set) Other(lang string) model.Tag {
	other := Label{EN: "Other", FR: "Autre"}
	return model.Tag{Label: other.Text(lang), Value: len(s.Labels) - 1}
}
