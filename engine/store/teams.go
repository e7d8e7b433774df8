/* teams.go
 * Contains the methods for interacting with the teams and team_members collections
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateTeam inserts a new team and makes the creator its first member
// Preconditions: Receives receiver pointer for Store, the Team to create and the creator's userID
// Postconditions: Returns the created Team with its id set, or an error if it occurs. If the membership
// insert fails the team document is removed again so no empty team is left behind
func (s *Store) CreateTeam(team Team, creatorID string) (Team, error) {
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now().UTC()
	}

	res, err := s.Collections.Teams.InsertOne(context.TODO(), team)
	if err != nil {
		return Team{}, fmt.Errorf("failed to insert team: %w", err)
	}
	team.ID = res.InsertedID.(primitive.ObjectID)

	err = s.AddTeamMember(team.ID.Hex(), creatorID)
	if err != nil {
		// Compensate so a failed create doesn't leave a memberless team
		_, delErr := s.Collections.Teams.DeleteOne(context.TODO(), bson.M{"_id": team.ID})
		if delErr != nil {
			return Team{}, fmt.Errorf("failed to add creator and failed to remove team %s: %v: %w", team.ID.Hex(), delErr, err)
		}
		return Team{}, err
	}

	return team, nil
}

// GetTeam does DB lookup and gets a team by id
// Preconditions: Receives receiver pointer for Store and the teamID string
// Postconditions: Returns the Team if it exists, or an error if it occurs
func (s *Store) GetTeam(teamID string) (Team, error) {
	objID, err := parseObjectID(teamID)
	if err != nil {
		return Team{}, err
	}

	var result Team
	err = s.Collections.Teams.FindOne(context.TODO(), bson.M{"_id": objID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Team{}, err
		}
		return Team{}, fmt.Errorf("error fetching team from db: %w", err)
	}

	return result, nil
}

// AddTeamMember inserts a membership row for a user. The unique index on user_id makes a second membership
// for the same user fail at write time rather than silently duplicating.
func (s *Store) AddTeamMember(teamID string, userID string) error {
	objID, err := parseObjectID(teamID)
	if err != nil {
		return err
	}

	member := TeamMember{
		TeamID:   objID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}

	_, err = s.Collections.TeamMembers.InsertOne(context.TODO(), member)
	if err != nil {
		return fmt.Errorf("failed to insert team member: %w", err)
	}
	return nil
}

// RemoveTeamMember deletes the membership row for a user on a team
// Preconditions: Receives receiver pointer for Store, teamID and userID strings
// Postconditions: Returns nil on success, mongo.ErrNoDocuments if no row matched, or an error if it occurs
func (s *Store) RemoveTeamMember(teamID string, userID string) error {
	objID, err := parseObjectID(teamID)
	if err != nil {
		return err
	}

	res, err := s.Collections.TeamMembers.DeleteOne(context.TODO(), bson.M{"team_id": objID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// GetMembershipForUser does DB lookup for the team a user belongs to, if any
// Preconditions: Receives receiver pointer for Store and the userID string
// Postconditions: Returns the TeamMember row if one exists, mongo.ErrNoDocuments if the user has no team,
// or an error if it occurs
func (s *Store) GetMembershipForUser(userID string) (TeamMember, error) {
	var result TeamMember
	err := s.Collections.TeamMembers.FindOne(context.TODO(), bson.M{"user_id": userID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return TeamMember{}, err
		}
		return TeamMember{}, fmt.Errorf("error fetching membership from db: %w", err)
	}

	return result, nil
}

// GetTeamMembers does DB lookup and gets all membership rows for a team. Used in team readiness and
// leaderboard calculations.
// Preconditions: Receives receiver pointer for Store and the teamID string
// Postconditions: Returns slice of TeamMember (possibly empty), or an error if it occurs
func (s *Store) GetTeamMembers(teamID string) ([]TeamMember, error) {
	objID, err := parseObjectID(teamID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.Collections.TeamMembers.Find(context.TODO(), bson.D{{Key: "team_id", Value: objID}})
	if err != nil {
		return nil, fmt.Errorf("error fetching team members from db: %w", err)
	}

	var results []TeamMember
	if err = cursor.All(context.TODO(), &results); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of team members: %w", err)
	}

	return results, nil
}
