/* readiness.go
 * Contains the logic for converting personal bests into bounded readiness percentages and combining them
 * into overall and team scores. Values stay unrounded until display so averaging does not compound
 * rounding error
 */

package logic

import "math"

// ExerciseReadiness converts a best amount and a target into a percentage in [0, 100]. A non-positive
// target is a malformed catalog entry and scores 0 rather than dividing by zero or going negative.
// Preconditions: Receives the best and target amounts for one exercise
// Postconditions: Returns an unrounded percentage clamped to [0, 100]
func ExerciseReadiness(best float64, target float64) float64 {
	if target <= 0 {
		return 0
	}
	readiness := best / target * 100
	if readiness < 0 {
		return 0
	}
	if readiness > 100 {
		return 100
	}
	return readiness
}

// OverallReadiness combines per-exercise readiness scores into one percentage via arithmetic mean
// Preconditions: Receives a slice of percentages, possibly empty
// Postconditions: Returns the mean, or 0 for an empty slice (never NaN)
func OverallReadiness(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// TeamReadiness combines each member's overall readiness into one team percentage. Same mean as
// OverallReadiness; kept as its own name so call sites read as what they compute.
func TeamReadiness(overalls []float64) float64 {
	return OverallReadiness(overalls)
}

// RoundPercent rounds an unrounded readiness value to a whole percentage point for display
// Preconditions: Receives a percentage
// Postconditions: Returns the nearest integer percentage
func RoundPercent(readiness float64) int {
	return int(math.Round(readiness))
}
