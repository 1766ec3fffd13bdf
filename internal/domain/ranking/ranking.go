// Package ranking holds the local ordering rules applied to remotely scored
// candidates: the pipeline's floor/sort/top-N cut and the dashboard's
// percentage score and threshold split.
package ranking

import (
	"math"
	"sort"

	"github.com/okian/matchbot/internal/domain/model"
)

// Defaults used by the webhook pipeline.
const (
	DefaultFloor      = 0.2
	DefaultMaxResults = 3
)

// SelectTop drops profiles scoring at or below floor, orders the rest by
// descending score and keeps at most n. Equal scores keep their input order.
func SelectTop(profiles []model.Profile, floor float64, n int) []model.Profile {
	out := make([]model.Profile, 0, len(profiles))
	for _, p := range profiles {
		if p.Score > floor {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ScorePercent converts a raw 0..1 grading value to an integer percentage,
// truncating toward negative infinity.
func ScorePercent(raw float64) int {
	return int(math.Floor(raw * 100))
}

// Stars rescales a 0..1 score to the 0..5 display scale.
func Stars(raw float64) float64 {
	return raw * 5
}

// ClampThreshold bounds a user supplied threshold to 0..100.
func ClampThreshold(t int) int {
	switch {
	case t < 0:
		return 0
	case t > 100:
		return 100
	default:
		return t
	}
}

// Partition splits candidates into those kept (score >= threshold) and
// those to reject (score < threshold). Input order is preserved.
func Partition(cands []model.DashboardCandidate, threshold int) (keep, reject []model.DashboardCandidate) {
	threshold = ClampThreshold(threshold)
	keep = make([]model.DashboardCandidate, 0, len(cands))
	reject = make([]model.DashboardCandidate, 0)
	for _, c := range cands {
		if c.Score < threshold {
			reject = append(reject, c)
			continue
		}
		keep = append(keep, c)
	}
	return keep, reject
}
