/* store.go
 * Contains the store struct and NewStore function. The methods for this package were split into files per
 * collection: exercises, training_logs, teams, invites, profiles and leaderboard. Each of these files contain
 * methods for interacting with that part of the database
 */

package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections struct {
		Exercises    *mongo.Collection
		TrainingLogs *mongo.Collection
		Teams        *mongo.Collection
		TeamMembers  *mongo.Collection
		TeamInvites  *mongo.Collection
		Profiles     *mongo.Collection
		Leaderboards *mongo.Collection
	}
}

// Function for initialising Store. Connects to Mongo, binds the collections and ensures indexes exist
// Preconditions: Receives strings containing dbName and mongoURI
// Postconditions: Returns pointer to the Store object, or error if it occurs
func NewStore(dbName string, mongoURI string) (*Store, error) {
	client, err := mongo.Connect(context.TODO(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, err
	}
	db := client.Database(dbName)

	if dbName == "" {
		return nil, fmt.Errorf("dbName cannot be empty")
	}

	s := &Store{
		Client:   client,
		Database: db,
	}
	s.Collections.Exercises = db.Collection("exercises")
	s.Collections.TrainingLogs = db.Collection("training_logs")
	s.Collections.Teams = db.Collection("teams")
	s.Collections.TeamMembers = db.Collection("team_members")
	s.Collections.TeamInvites = db.Collection("team_invites")
	s.Collections.Profiles = db.Collection("profiles")
	s.Collections.Leaderboards = db.Collection("leaderboards")

	if err := s.EnsureIndexes(); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	return s, nil
}

// EnsureIndexes creates the indexes the store relies on. The unique index on team_members.user_id is what
// backs the one-team-per-user invariant, so this must run before any membership writes are accepted.
func (s *Store) EnsureIndexes() error {
	unique := options.Index().SetUnique(true)

	_, err := s.Collections.TeamMembers.Indexes().CreateOne(context.TODO(), mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("team_members index: %w", err)
	}

	_, err = s.Collections.Exercises.Indexes().CreateOne(context.TODO(), mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("exercises index: %w", err)
	}

	_, err = s.Collections.TeamInvites.Indexes().CreateOne(context.TODO(), mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}, {Key: "status", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("team_invites index: %w", err)
	}

	return nil
}
