// Package format renders chat replies: fixed status texts and ranked
// candidate cards.
package format

// Messages is the catalog of fixed chat texts for one language.
type Messages struct {
	Ack             string
	Busy            string
	MissingMediaURL string
	Unsupported     string // %s: content type
	ResumeDetected  string
	ResumeEmpty     string
	Generating      string
	GenerationEmpty string
	NoText          string
	Searching       string // %s: truncated input text
	Lead            string // %d: count, %s: truncated input text
	NoMatch         string // %s: truncated input text
	Error           string // %s: error description
	Strengths       string
	Weaknesses      string
	OpenProfile     string
	UnnamedProfile  string
}

var catalogs = map[string]Messages{ //nolint:gochecknoglobals // static catalog
	"fr": {
		Ack:             "✅ Reçu. Je traite ta demande et je reviens vers toi sur WhatsApp.",
		Busy:            "⏳ Trop de demandes en cours. Renvoie ton message dans quelques minutes.",
		MissingMediaURL: "❌ J'ai détecté un média mais je n'ai pas reçu MediaUrl0.",
		Unsupported:     "❌ Type de média non supporté (%s). Je traite uniquement l'audio et les CV (PDF, DOC, DOCX, TXT).",
		ResumeDetected:  "📄 CV détecté. Extraction du texte en cours...",
		ResumeEmpty:     "❌ Impossible d'extraire le texte du CV.",
		Generating:      "🤖 Génération du job à partir du CV...",
		GenerationEmpty: "❌ Impossible de générer un job à partir du CV.",
		NoText:          "❌ Je n'ai pas réussi à extraire du texte (audio vide ?).",
		Searching:       "🔍 Je lance une recherche pour: \"%s\"",
		Lead:            "🎯 Top %d profils pour: \"%s\"",
		NoMatch:         "Je n'ai trouvé aucun profil pertinent.\n\nTexte compris:\n\"%s\"",
		Error:           "❌ Erreur: %s",
		Strengths:       "💪 Strengths",
		Weaknesses:      "⚠️ Weaknesses",
		OpenProfile:     "📂 [Open Profile]",
		UnnamedProfile:  "Profil",
	},
	"en": {
		Ack:             "✅ Received. I'm working on your request and will get back to you on WhatsApp.",
		Busy:            "⏳ Too many requests right now. Please resend your message in a few minutes.",
		MissingMediaURL: "❌ I detected an attachment but did not receive MediaUrl0.",
		Unsupported:     "❌ Unsupported media type (%s). I only handle audio and resumes (PDF, DOC, DOCX, TXT).",
		ResumeDetected:  "📄 Resume detected. Extracting text...",
		ResumeEmpty:     "❌ Could not extract text from the resume.",
		Generating:      "🤖 Generating a job from the resume...",
		GenerationEmpty: "❌ Could not generate a job from the resume.",
		NoText:          "❌ I could not extract any text (empty audio?).",
		Searching:       "🔍 Searching for: \"%s\"",
		Lead:            "🎯 Top %d profiles for: \"%s\"",
		NoMatch:         "I could not find any relevant profile.\n\nUnderstood text:\n\"%s\"",
		Error:           "❌ Error: %s",
		Strengths:       "💪 Strengths",
		Weaknesses:      "⚠️ Weaknesses",
		OpenProfile:     "📂 [Open Profile]",
		UnnamedProfile:  "Profile",
	},
}

// Catalog returns the messages for lang, defaulting to French.
func Catalog(lang string) Messages {
	if m, ok := catalogs[lang]; ok {
		return m
	}
	return catalogs["fr"]
}
