package prompts

import (
	"fmt"
	"strings"

	"github.com/okian/matchbot/internal/domain/model"
)

const recommendationsTemplate = `Based on these skill gaps for a %s position, provide 3-4 specific learning recommendations.

SKILL GAPS: %s
EXISTING STRENGTHS: %s

For each recommendation, provide:
1. Whether it's a "hardskill" or "softskill"
2. The specific skill to develop
3. A brief actionable title (max 10 words)
4. A description (1-2 sentences)
5. 1-2 specific online courses with platform and URL

Respond in this exact JSON format:
[
  {
    "type": "hardskill" or "softskill",
    "skill": "skill name",
    "title": "Short actionable title",
    "description": "Brief description of what to learn and why",
    "courses": [
      {"name": "Course Name", "platform": "Coursera/Udemy/LinkedIn Learning/etc", "url": "https://..."}
    ]
  }
]

Focus on reputable platforms: Coursera, Udemy, LinkedIn Learning, Pluralsight, edX, freeCodeCamp.
Only return the JSON array, no other text.`

// Recommendations asks for learning recommendations as a JSON array. At most
// five gaps and three strengths are quoted.
func Recommendations(jobTitle string, gaps, strengths []model.SkillLevel) string {
	strengthText := names(strengths, 3)
	if strengthText == "" {
		strengthText = "None identified"
	}
	return fmt.Sprintf(recommendationsTemplate, jobTitle, names(gaps, 5), strengthText)
}

const rejectionTemplate = `Generate a warm, constructive rejection email.

CANDIDATE: %s
JOB: %s
LANGUAGE: Write in %s

STRENGTHS TO PRAISE:
%s

SKILL GAPS (be constructive):
%s

Requirements:
- Warm, human tone
- Praise their strengths genuinely
- Frame gaps as growth opportunities
- Mention they'll receive personalized recommendations via chat
- Keep it concise (150 words max)
- Include a line inviting them to chat for feedback and career advice`

const roastTemplate = `Generate a brutally honest, savage roast email about why this candidate didn't get the job.
Be funny but not mean-spirited - think comedy roast, not bullying. Use humor and wit.

CANDIDATE: %s
JOB: %s
LANGUAGE: Write in %s

THEIR SO-CALLED "STRENGTHS":
%s

SKILL GAPS (the real tea):
%s

Requirements:
- Roast their skill gaps hilariously
- Be sarcastic about what they're missing
- Include some self-deprecating humor about the hiring process
- End with a backhanded compliment
- Keep it to 150-200 words
- Make it clear this is a joke/roast format
- Add some fire emojis for effect`

// RejectionEmail asks for a rejection email in language. roast switches to
// the humorous variant.
func RejectionEmail(candidate, jobTitle, language string, gaps, strengths []model.SkillLevel, roast bool) string {
	tmpl := rejectionTemplate
	if roast {
		tmpl = roastTemplate
	}
	return fmt.Sprintf(tmpl, candidate, jobTitle, language, levelLines(strengths), levelLines(gaps))
}

func names(levels []model.SkillLevel, n int) string {
	out := make([]string, 0, n)
	for i, l := range levels {
		if i == n {
			break
		}
		out = append(out, l.Name)
	}
	return strings.Join(out, ", ")
}

func levelLines(levels []model.SkillLevel) string {
	if len(levels) == 0 {
		return "-"
	}
	var b strings.Builder
	for _, l := range levels {
		fmt.Fprintf(&b, "- %s (candidate %.0f / required %.0f)\n", l.Name, l.CandidateLevel, l.RequiredLevel)
	}
	return strings.TrimRight(b.String(), "\n")
}
