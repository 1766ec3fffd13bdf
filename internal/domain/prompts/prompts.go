// Package prompts holds the LLM instructions shared by every generator backend.
package prompts

import (
	"fmt"
	"strings"

	"github.com/okian/matchbot/internal/domain/model"
)

// JobPersona is the system message for job generation.
const JobPersona = "You are an expert Talent Acquisition Manager and HR Specialist with 20 years of experience in writing and evaluating job postings."

const jobTemplate = `# PRIMARY INSTRUCTION
You are provided with raw text in <input_text> describing a resume. Your task is to write a job posting for which the resume in <input_text> is an ideal candidate.

---

# Job writing criteria

The job description should include the following information:

- Job title.

- Tasks.

- Skills.

- Education level.

- Seniority.

---

# INPUT DATA

<input_text>

%s

</input_text>

---`

// JobFromResume is the user message asking for a posting the résumé fits.
func JobFromResume(resume string) string {
	return fmt.Sprintf(jobTemplate, resume)
}

// ChatSystem grounds the career assistant in one candidate analysis.
// A nil context yields a generic coaching prompt.
func ChatSystem(c *model.ChatContext) string {
	var b strings.Builder
	b.WriteString("You are a supportive career coach helping a candidate understand the feedback on their application. ")
	b.WriteString("Be concise, concrete and encouraging. Answer in the language the candidate writes in.")
	if c == nil {
		return b.String()
	}

	b.WriteString("\n\n# CONTEXT\n")
	if c.CandidateName != "" {
		fmt.Fprintf(&b, "Candidate: %s\n", c.CandidateName)
	}
	if c.JobTitle != "" {
		fmt.Fprintf(&b, "Target job: %s\n", c.JobTitle)
	}
	writeLevels(&b, "Strengths", c.Strengths)
	writeLevels(&b, "Skill gaps", c.SkillGaps)
	if len(c.Recommendations) > 0 {
		b.WriteString("Recommendations:\n")
		for _, r := range c.Recommendations {
			fmt.Fprintf(&b, "- %s: %s\n", r.Title, r.Description)
		}
	}
	return b.String()
}

func writeLevels(b *strings.Builder, title string, levels []model.SkillLevel) {
	if len(levels) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, s := range levels {
		fmt.Fprintf(b, "- %s (candidate %.0f / required %.0f)\n", s.Name, s.CandidateLevel, s.RequiredLevel)
	}
}
