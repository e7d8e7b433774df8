/* exercise_names.go
 * Contains the logic for resolving user-typed exercise names against the catalog
 */

package logic

import (
	"fmt"
	"strings"

	"hyrox-tracker/engine/shared"
	"hyrox-tracker/engine/store"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ResolveExerciseName matches a user-typed exercise name against the catalog. Matching is case insensitive
// and fuzzy so "sled push" and "Sled Psh" both find "Sled Push"; an exact (case-folded) match always wins
// over fuzzy candidates.
// Preconditions: Receives the typed name and the exercise catalog
// Postconditions: Returns the matched Exercise, or ErrNotFound if nothing in the catalog matches
func ResolveExerciseName(input string, catalog []store.Exercise) (store.Exercise, error) {
	lowerInput := strings.ToLower(strings.TrimSpace(input))
	if lowerInput == "" {
		return store.Exercise{}, fmt.Errorf("%w: empty exercise name", shared.ErrInvalidInput)
	}

	// Convert catalog names to lowercase for better matching
	lookup := make(map[string]store.Exercise)
	var namesLower []string
	for _, exercise := range catalog {
		lower := strings.ToLower(exercise.Name)
		lookup[lower] = exercise
		namesLower = append(namesLower, lower)
	}

	fuzzyResults := fuzzy.RankFind(lowerInput, namesLower)
	if len(fuzzyResults) == 0 {
		return store.Exercise{}, fmt.Errorf("%w: no exercise matching %q", shared.ErrNotFound, input)
	}

	// If there are multiple matches, check to see if theres an exact match with the input
	if len(fuzzyResults) > 1 {
		for i := range fuzzyResults {
			if fuzzyResults[i].Target == lowerInput {
				return lookup[fuzzyResults[i].Target], nil
			}
		}
	}

	// If no exact match was found, take the best ranked match
	return lookup[fuzzyResults[0].Target], nil
}
