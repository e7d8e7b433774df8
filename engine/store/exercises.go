/* exercises.go
 * Contains the methods for interacting with the exercises collection
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListExercises returns the full exercise catalog ordered by name
// Preconditions: Receives receiver pointer for Store
// Postconditions: Returns slice of Exercise, or an error if it occurs
func (s *Store) ListExercises() ([]Exercise, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := s.Collections.Exercises.Find(context.TODO(), bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching exercises from db: %w", err)
	}

	var results []Exercise
	if err = cursor.All(context.TODO(), &results); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of exercises: %w", err)
	}

	return results, nil
}

// GetExercise does DB lookup for a single catalog entry by id
// Preconditions: Receives receiver pointer for Store and the exercise id string
// Postconditions: Returns the Exercise if it exists, or an error if it occurs
func (s *Store) GetExercise(id string) (Exercise, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return Exercise{}, err
	}

	var result Exercise
	err = s.Collections.Exercises.FindOne(context.TODO(), bson.M{"_id": objID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Exercise{}, err
		}
		return Exercise{}, fmt.Errorf("error fetching exercise from db: %w", err)
	}

	return result, nil
}

// UpsertExercise stores a catalog entry keyed by name. Used by catalog seeding; the target and unit of an
// existing entry are refreshed in place so re-running the seed is safe.
func (s *Store) UpsertExercise(exercise Exercise) error {
	filter := bson.M{"name": exercise.Name}
	update := bson.M{
		"$set": bson.M{
			"name":          exercise.Name,
			"target_amount": exercise.TargetAmount,
			"unit":          exercise.Unit,
		},
		"$setOnInsert": bson.M{
			"created_at": time.Now().UTC(),
		},
	}

	_, err := s.Collections.Exercises.UpdateOne(context.TODO(), filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert exercise %q: %w", exercise.Name, err)
	}
	return nil
}
