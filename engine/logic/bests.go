/* bests.go
 * Contains the logic for reducing a user's raw training logs into one personal best per catalog exercise
 */

package logic

import "hyrox-tracker/engine/store"

// PersonalBest is the best logged amount for one catalog exercise. It is derived on demand from the log
// history and never persisted.
type PersonalBest struct {
	ExerciseID   string
	ExerciseName string
	BestAmount   float64
	TargetAmount float64
	Unit         string
}

// ComputeBests reduces training logs into one PersonalBest per catalog exercise. Every exercise in the
// catalog gets exactly one entry; exercises with no matching logs get BestAmount 0 so they still drag the
// overall average down rather than being excluded.
// Preconditions: Receives the exercise catalog and a user's training logs in any order
// Postconditions: Returns slice of PersonalBest with one entry per catalog exercise, in catalog order
func ComputeBests(catalog []store.Exercise, logs []store.TrainingLog) []PersonalBest {
	// Index max amounts by exercise id in one pass over the logs
	maxByExercise := make(map[string]float64)
	for _, log := range logs {
		key := log.ExerciseID.Hex()
		if log.Amount > maxByExercise[key] {
			maxByExercise[key] = log.Amount
		}
	}

	bests := make([]PersonalBest, 0, len(catalog))
	for _, exercise := range catalog {
		bests = append(bests, PersonalBest{
			ExerciseID:   exercise.ID.Hex(),
			ExerciseName: exercise.Name,
			BestAmount:   maxByExercise[exercise.ID.Hex()],
			TargetAmount: exercise.TargetAmount,
			Unit:         exercise.Unit,
		})
	}
	return bests
}
