package pipeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/okian/matchbot/internal/domain/model"
)

// Questions asked against the stored job, in answer order.
var Questions = []string{ //nolint:gochecknoglobals // fixed battery
	"What is the job title?",
	"Is there a date from which profiles are desired in the job description section? If yes, respond only with an integer representing the number of months. If no, respond with 0.",
	"Is there a radius from which profiles are desired in the job description section? If yes, respond only with an integer representing the radius in kilometers. If no, respond with 0.",
	"What is the minimum seniority required for this job?",
	"If there is a seniority for the job, respond only with an integer representing the number of years else 0.",
}

const (
	answerTitle     = 0
	answerMonths    = 1
	answerRadius    = 2
	answerSeniority = 4

	daysPerMonth = 30
	// maxMonths caps the lookback at a thousand years.
	maxMonths = 12000
)

// FiltersFromAnswers turns the asking answers into scoring filters.
// A zero or unreadable months answer leaves CreatedAtMin nil; a zero or
// unreadable radius falls back to defaultRadius.
func FiltersFromAnswers(answers []string, job model.Job, defaultRadius int, now time.Time) model.Filters {
	f := model.Filters{
		JobTitle:     answer(answers, answerTitle),
		Location:     job.Geopoint(),
		Radius:       leadingInt(answer(answers, answerRadius)),
		Seniority:    leadingInt(answer(answers, answerSeniority)),
		CreatedAtMax: now,
	}
	if f.Radius == 0 {
		f.Radius = defaultRadius
	}
	if months := leadingInt(answer(answers, answerMonths)); months > 0 {
		months = min(months, maxMonths)
		from := now.AddDate(0, 0, -months*daysPerMonth)
		f.CreatedAtMin = &from
	}
	return f
}

func answer(answers []string, i int) string {
	if i < len(answers) {
		return answers[i]
	}
	return ""
}

// leadingInt reads the integer prefix of s ("6 months" is 6). Anything else,
// including a negative number, is 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
