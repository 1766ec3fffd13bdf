package analysis

import (
	"sort"
	"strings"

	"github.com/okian/matchbot/internal/domain/model"
)

// Fixed levels used while profiles carry no per-skill proficiency.
const (
	requiredLevel = 70
	matchedLevel  = 65
	extraLevel    = 75
	maxSkillItems = 5
)

// CompareSkills matches candidate skills against job skills by
// case-insensitive name. Job skills the candidate lacks or holds below the
// required level are gaps; candidate skills the job does not ask for are
// strengths. Gaps are ordered by shortfall, strengths by level, both capped
// at five.
func CompareSkills(candidate, job []string) (gaps, strengths []model.SkillLevel) {
	have := make(map[string]bool, len(candidate))
	for _, s := range candidate {
		have[strings.ToLower(s)] = true
	}
	wanted := make(map[string]bool, len(job))

	gaps = make([]model.SkillLevel, 0, len(job))
	strengths = make([]model.SkillLevel, 0, len(candidate))
	for _, name := range job {
		key := strings.ToLower(name)
		if wanted[key] {
			continue
		}
		wanted[key] = true

		level := 0
		if have[key] {
			level = matchedLevel
		}
		item := model.SkillLevel{Name: name, CandidateLevel: float64(level), RequiredLevel: requiredLevel}
		if level >= requiredLevel {
			strengths = append(strengths, item)
			continue
		}
		gaps = append(gaps, item)
	}

	seen := make(map[string]bool, len(candidate))
	for _, name := range candidate {
		key := strings.ToLower(name)
		if wanted[key] || seen[key] {
			continue
		}
		seen[key] = true
		strengths = append(strengths, model.SkillLevel{Name: name, CandidateLevel: extraLevel})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].RequiredLevel-gaps[i].CandidateLevel > gaps[j].RequiredLevel-gaps[j].CandidateLevel
	})
	sort.SliceStable(strengths, func(i, j int) bool {
		return strengths[i].CandidateLevel > strengths[j].CandidateLevel
	})
	return head(gaps, maxSkillItems), head(strengths, maxSkillItems)
}

func head(levels []model.SkillLevel, n int) []model.SkillLevel {
	if len(levels) > n {
		return levels[:n]
	}
	return levels
}
