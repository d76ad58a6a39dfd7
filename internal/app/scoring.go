package app

import "math"

// defaultBasePoints applies when content carries no point value for a question.
const defaultBasePoints = 10

// price converts a single answer event into awarded points. Incorrect answers
// (including timeouts) are worth zero unconditionally. Correct answers earn
// the base value scaled by a time bonus and the current combo multiplier:
//
//	timeBonus = max(1.0, timeFraction * 1.5)
//	awarded   = floor(basePoints * timeBonus * combo)
//
// The bonus floors at 1.0, so a correct answer with no time left still earns
// the un-bonused base at the current multiplier.
func price(correct bool, basePoints int, timeFraction, combo float64) int {
	if !correct {
		return 0
	}
	if basePoints == 0 {
		basePoints = defaultBasePoints
	}
	if timeFraction < 0 {
		timeFraction = 0
	} else if timeFraction > 1 {
		timeFraction = 1
	}
	bonus := timeFraction * 1.5
	if bonus < 1.0 {
		bonus = 1.0
	}
	return int(math.Floor(float64(basePoints) * bonus * combo))
}
