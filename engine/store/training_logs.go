/* training_logs.go
 * Contains the methods for interacting with the training_logs collection
 */

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// InsertTrainingLog appends one training fact to the db. Logs are never updated or deleted here; personal
// bests are recomputed from the full history so past rows must survive.
// Preconditions: Receives receiver pointer for Store and the TrainingLog to append
// Postconditions: Inserts the log and returns nil, or an error if it occurs
func (s *Store) InsertTrainingLog(log TrainingLog) error {
	if log.LoggedAt.IsZero() {
		log.LoggedAt = time.Now().UTC()
	}

	_, err := s.Collections.TrainingLogs.InsertOne(context.TODO(), log)
	if err != nil {
		return fmt.Errorf("failed to insert training log: %w", err)
	}
	return nil
}

// GetLogsForUser does DB lookup and gets all training logs for a user. Used in personal best calculations,
// so no ordering is applied.
// Preconditions: Receives receiver pointer for Store and the userID string
// Postconditions: Returns slice of TrainingLog (possibly empty), or an error if it occurs
func (s *Store) GetLogsForUser(userID string) ([]TrainingLog, error) {
	filter := bson.D{{Key: "user_id", Value: userID}}

	cursor, err := s.Collections.TrainingLogs.Find(context.TODO(), filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching training logs from db: %w", err)
	}

	var results []TrainingLog
	if err = cursor.All(context.TODO(), &results); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of training logs: %w", err)
	}

	return results, nil
}
