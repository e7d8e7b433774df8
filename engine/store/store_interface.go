/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 */

package store

import "context"

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	// Catalog
	ListExercises() ([]Exercise, error)
	GetExercise(id string) (Exercise, error)
	UpsertExercise(exercise Exercise) error

	// Training logs
	InsertTrainingLog(log TrainingLog) error
	GetLogsForUser(userID string) ([]TrainingLog, error)

	// Teams and memberships
	CreateTeam(team Team, creatorID string) (Team, error)
	GetTeam(teamID string) (Team, error)
	AddTeamMember(teamID string, userID string) error
	RemoveTeamMember(teamID string, userID string) error
	GetMembershipForUser(userID string) (TeamMember, error)
	GetTeamMembers(teamID string) ([]TeamMember, error)

	// Invites
	CreateInvite(teamID string, inviterID string, email string) (TeamInvite, error)
	GetInvite(inviteID string) (TeamInvite, error)
	FindPendingInvite(teamID string, email string) (TeamInvite, error)
	PendingInvitesByEmail(email string) ([]TeamInvite, error)
	InvitesForTeam(teamID string) ([]TeamInvite, error)
	MarkInviteAccepted(inviteID string) (bool, error)
	MarkInviteDeclined(inviteID string) (bool, error)
	ReopenInvite(inviteID string) error
	DeleteInvite(inviteID string) error

	// Profiles
	GetProfiles(userIDs []string) (map[string]Profile, error)
	UpsertProfile(profile Profile) error

	// Leaderboard snapshots
	FetchLeaderboard(teamID string) (Leaderboard, error)
	StoreLeaderboard(leaderboard Leaderboard) error

	// Getter methods for accessing fields
	GetDatabase() interface{ Name() string }
	GetClient() interface{ Disconnect(context.Context) error }
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)

// GetDatabase returns the database instance
func (s *Store) GetDatabase() interface{ Name() string } {
	return s.Database
}

// GetClient returns the MongoDB client
func (s *Store) GetClient() interface{ Disconnect(context.Context) error } {
	return s.Client
}
