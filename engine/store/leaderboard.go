/* leaderboard.go
 * Contains the methods for interacting with the leaderboards collection. One snapshot document is kept per
 * team; it is derived state and can be recomputed from logs and memberships at any time
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// FetchLeaderboard returns the stored leaderboard snapshot for a team
// Preconditions: Receives receiver pointer for Store and the teamID string
// Postconditions: Returns the Leaderboard, mongo.ErrNoDocuments if no snapshot exists yet, or an error if
// it occurs
func (s *Store) FetchLeaderboard(teamID string) (Leaderboard, error) {
	objID, err := parseObjectID(teamID)
	if err != nil {
		return Leaderboard{}, err
	}

	var res Leaderboard
	err = s.Collections.Leaderboards.FindOne(context.TODO(), bson.D{{Key: "team_id", Value: objID}}).Decode(&res)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Leaderboard{}, err
		}
		return Leaderboard{}, fmt.Errorf("failed to fetch leaderboard from database: %w", err)
	}

	return res, nil
}

// StoreLeaderboard updates the leaderboard snapshot stored in the DB
// Preconditions: Receives receiver pointer for Store and the Leaderboard value to be stored
// Postconditions: Inserts or replaces the team's snapshot and returns nil, or an error if it occurs
func (s *Store) StoreLeaderboard(leaderboard Leaderboard) error {
	if leaderboard.TeamID.IsZero() {
		return fmt.Errorf("leaderboard has no team id")
	}

	// Attempt to find an existing snapshot
	var res Leaderboard
	err := s.Collections.Leaderboards.FindOne(context.TODO(), bson.D{{Key: "team_id", Value: leaderboard.TeamID}}).Decode(&res)
	notFound := err == mongo.ErrNoDocuments

	if err != nil && !notFound {
		return fmt.Errorf("lookup for existing snapshot failed: %w", err)
	}

	// Perform insert or update
	if notFound {
		_, err := s.Collections.Leaderboards.InsertOne(context.TODO(), leaderboard)
		if err != nil {
			return fmt.Errorf("leaderboard insert failed: %w", err)
		}
		return nil
	}

	filter := bson.M{"team_id": leaderboard.TeamID}
	update := bson.D{{Key: "$set", Value: leaderboard}}

	_, err = s.Collections.Leaderboards.UpdateOne(context.TODO(), filter, update)
	if err != nil {
		return fmt.Errorf("leaderboard update failed: %w", err)
	}
	return nil
}
