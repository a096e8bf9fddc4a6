package review

import "math"

// Interval bounds, in days.
const (
	MinIntervalDays = 1
	MaxIntervalDays = 180
)

// First-review intervals, indexed by difficulty.
var firstIntervals = map[Difficulty]int{
	Easy:   4,
	Medium: 1,
	Hard:   1,
}

// Growth factors applied to the current interval after the first review.
var growthFactors = map[Difficulty]float64{
	Easy:   2.0,
	Medium: 1.5,
	Hard:   0.8,
}

// AdaptInterval returns the next interval in days.
//
// timesReviewed counts the review being recorded, so 1 means the first
// review. The first review ignores current. Later reviews scale current by
// the difficulty's factor, rounding half away from zero. The result is
// always within MinIntervalDays..MaxIntervalDays.
func AdaptInterval(current int, difficulty Difficulty, timesReviewed int) int {
	var next int
	if timesReviewed == 1 {
		next = firstIntervals[difficulty]
	} else {
		factor, ok := growthFactors[difficulty]
		if !ok {
			factor = 1
		}
		next = int(math.Round(float64(current) * factor))
	}
	return min(max(next, MinIntervalDays), MaxIntervalDays)
}
