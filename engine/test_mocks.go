/* test_mocks.go
 * Contains mock structures and interfaces for testing the engine package
 */

package engine

import (
	"context"
	"sort"
	"strings"
	"time"

	"hyrox-tracker/engine/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MockStore implements the Store interface for testing
type MockStore struct {
	// Storage for mock data
	Exercises    []store.Exercise
	Logs         map[string][]store.TrainingLog
	Teams        map[string]store.Team
	Memberships  map[string]store.TeamMember // keyed by userID: one team per user
	Invites      map[string]store.TeamInvite // keyed by invite id hex
	Profiles     map[string]store.Profile
	Leaderboards map[string]store.Leaderboard // keyed by team id hex

	// ForceCASMiss makes MarkInviteAccepted report that the conditional write did not apply, simulating
	// a concurrent accept landing between the read and the status write
	ForceCASMiss bool

	// Error injection for testing error paths
	ListExercisesError      error
	InsertTrainingLogError  error
	GetLogsForUserError     error
	CreateTeamError         error
	AddTeamMemberError      error
	RemoveTeamMemberError   error
	CreateInviteError       error
	MarkInviteAcceptedError error
	ReopenInviteError       error
	DeleteInviteError       error
	StoreLeaderboardError   error
	FetchLeaderboardError   error

	// Database name for compatibility
	DatabaseName string
}

// mockDatabase implements the minimal Database interface needed for tests
type mockDatabase struct {
	name string
}

func (m *mockDatabase) Name() string {
	return m.name
}

// mockClient implements the minimal Client interface needed for tests
type mockClient struct{}

func (m *mockClient) Disconnect(context.Context) error {
	return nil
}

// NewMockStore creates a new MockStore with default values
func NewMockStore() *MockStore {
	return &MockStore{
		Logs:         make(map[string][]store.TrainingLog),
		Teams:        make(map[string]store.Team),
		Memberships:  make(map[string]store.TeamMember),
		Invites:      make(map[string]store.TeamInvite),
		Profiles:     make(map[string]store.Profile),
		Leaderboards: make(map[string]store.Leaderboard),
		DatabaseName: "test_db",
	}
}

// AddExercise is a test helper that appends a catalog entry and returns it
func (m *MockStore) AddExercise(name string, target float64, unit string) store.Exercise {
	exercise := store.Exercise{ID: primitive.NewObjectID(), Name: name, TargetAmount: target, Unit: unit}
	m.Exercises = append(m.Exercises, exercise)
	return exercise
}

// AddTeam is a test helper that inserts a team row and returns it
func (m *MockStore) AddTeam(name string) store.Team {
	team := store.Team{ID: primitive.NewObjectID(), Name: name, CreatedAt: time.Now()}
	m.Teams[team.ID.Hex()] = team
	return team
}

// AddPendingInvite is a test helper that inserts a pending invite and returns it
func (m *MockStore) AddPendingInvite(teamID primitive.ObjectID, inviterID string, email string) store.TeamInvite {
	invite := store.TeamInvite{
		ID:        primitive.NewObjectID(),
		TeamID:    teamID,
		InviterID: inviterID,
		Email:     strings.ToLower(email),
		Status:    store.InviteStatusPending,
		CreatedAt: time.Now(),
	}
	m.Invites[invite.ID.Hex()] = invite
	return invite
}

// ListExercises mock implementation
func (m *MockStore) ListExercises() ([]store.Exercise, error) {
	if m.ListExercisesError != nil {
		return nil, m.ListExercisesError
	}
	return m.Exercises, nil
}

// GetExercise mock implementation
func (m *MockStore) GetExercise(id string) (store.Exercise, error) {
	for _, e := range m.Exercises {
		if e.ID.Hex() == id {
			return e, nil
		}
	}
	return store.Exercise{}, mongo.ErrNoDocuments
}

// UpsertExercise mock implementation
func (m *MockStore) UpsertExercise(exercise store.Exercise) error {
	for i, e := range m.Exercises {
		if e.Name == exercise.Name {
			exercise.ID = e.ID
			m.Exercises[i] = exercise
			return nil
		}
	}
	if exercise.ID.IsZero() {
		exercise.ID = primitive.NewObjectID()
	}
	m.Exercises = append(m.Exercises, exercise)
	return nil
}

// InsertTrainingLog mock implementation
func (m *MockStore) InsertTrainingLog(log store.TrainingLog) error {
	if m.InsertTrainingLogError != nil {
		return m.InsertTrainingLogError
	}
	m.Logs[log.UserID] = append(m.Logs[log.UserID], log)
	return nil
}

// GetLogsForUser mock implementation
func (m *MockStore) GetLogsForUser(userID string) ([]store.TrainingLog, error) {
	if m.GetLogsForUserError != nil {
		return nil, m.GetLogsForUserError
	}
	return m.Logs[userID], nil
}

// CreateTeam mock implementation
func (m *MockStore) CreateTeam(team store.Team, creatorID string) (store.Team, error) {
	if m.CreateTeamError != nil {
		return store.Team{}, m.CreateTeamError
	}
	team.ID = primitive.NewObjectID()
	m.Teams[team.ID.Hex()] = team
	if err := m.AddTeamMember(team.ID.Hex(), creatorID); err != nil {
		delete(m.Teams, team.ID.Hex())
		return store.Team{}, err
	}
	return team, nil
}

// GetTeam mock implementation
func (m *MockStore) GetTeam(teamID string) (store.Team, error) {
	team, ok := m.Teams[teamID]
	if !ok {
		return store.Team{}, mongo.ErrNoDocuments
	}
	return team, nil
}

// AddTeamMember mock implementation. Mirrors the unique index on user_id: a second membership for the
// same user fails.
func (m *MockStore) AddTeamMember(teamID string, userID string) error {
	if m.AddTeamMemberError != nil {
		return m.AddTeamMemberError
	}
	if _, exists := m.Memberships[userID]; exists {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	objID, err := primitive.ObjectIDFromHex(teamID)
	if err != nil {
		return err
	}
	m.Memberships[userID] = store.TeamMember{TeamID: objID, UserID: userID, JoinedAt: time.Now()}
	return nil
}

// RemoveTeamMember mock implementation
func (m *MockStore) RemoveTeamMember(teamID string, userID string) error {
	if m.RemoveTeamMemberError != nil {
		return m.RemoveTeamMemberError
	}
	member, ok := m.Memberships[userID]
	if !ok || member.TeamID.Hex() != teamID {
		return mongo.ErrNoDocuments
	}
	delete(m.Memberships, userID)
	return nil
}

// GetMembershipForUser mock implementation
func (m *MockStore) GetMembershipForUser(userID string) (store.TeamMember, error) {
	member, ok := m.Memberships[userID]
	if !ok {
		return store.TeamMember{}, mongo.ErrNoDocuments
	}
	return member, nil
}

// GetTeamMembers mock implementation
func (m *MockStore) GetTeamMembers(teamID string) ([]store.TeamMember, error) {
	var members []store.TeamMember
	for _, member := range m.Memberships {
		if member.TeamID.Hex() == teamID {
			members = append(members, member)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
	return members, nil
}

// CreateInvite mock implementation
func (m *MockStore) CreateInvite(teamID string, inviterID string, email string) (store.TeamInvite, error) {
	if m.CreateInviteError != nil {
		return store.TeamInvite{}, m.CreateInviteError
	}
	objID, err := primitive.ObjectIDFromHex(teamID)
	if err != nil {
		return store.TeamInvite{}, err
	}
	invite := m.AddPendingInvite(objID, inviterID, email)
	return invite, nil
}

// GetInvite mock implementation
func (m *MockStore) GetInvite(inviteID string) (store.TeamInvite, error) {
	invite, ok := m.Invites[inviteID]
	if !ok {
		return store.TeamInvite{}, mongo.ErrNoDocuments
	}
	return invite, nil
}

// FindPendingInvite mock implementation
func (m *MockStore) FindPendingInvite(teamID string, email string) (store.TeamInvite, error) {
	email = strings.ToLower(email)
	for _, invite := range m.Invites {
		if invite.TeamID.Hex() == teamID && invite.Email == email && invite.Status == store.InviteStatusPending {
			return invite, nil
		}
	}
	return store.TeamInvite{}, mongo.ErrNoDocuments
}

// PendingInvitesByEmail mock implementation
func (m *MockStore) PendingInvitesByEmail(email string) ([]store.TeamInvite, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var invites []store.TeamInvite
	for _, invite := range m.Invites {
		if invite.Email == email && invite.Status == store.InviteStatusPending {
			invites = append(invites, invite)
		}
	}
	return invites, nil
}

// InvitesForTeam mock implementation
func (m *MockStore) InvitesForTeam(teamID string) ([]store.TeamInvite, error) {
	var invites []store.TeamInvite
	for _, invite := range m.Invites {
		if invite.TeamID.Hex() == teamID {
			invites = append(invites, invite)
		}
	}
	sort.Slice(invites, func(i, j int) bool { return invites[i].CreatedAt.After(invites[j].CreatedAt) })
	return invites, nil
}

// MarkInviteAccepted mock implementation
func (m *MockStore) MarkInviteAccepted(inviteID string) (bool, error) {
	if m.MarkInviteAcceptedError != nil {
		return false, m.MarkInviteAcceptedError
	}
	if m.ForceCASMiss {
		return false, nil
	}
	return m.transition(inviteID, store.InviteStatusPending, store.InviteStatusAccepted), nil
}

// MarkInviteDeclined mock implementation
func (m *MockStore) MarkInviteDeclined(inviteID string) (bool, error) {
	return m.transition(inviteID, store.InviteStatusPending, store.InviteStatusDeclined), nil
}

// ReopenInvite mock implementation
func (m *MockStore) ReopenInvite(inviteID string) error {
	if m.ReopenInviteError != nil {
		return m.ReopenInviteError
	}
	m.transition(inviteID, store.InviteStatusAccepted, store.InviteStatusPending)
	return nil
}

func (m *MockStore) transition(inviteID string, from string, to string) bool {
	invite, ok := m.Invites[inviteID]
	if !ok || invite.Status != from {
		return false
	}
	invite.Status = to
	m.Invites[inviteID] = invite
	return true
}

// DeleteInvite mock implementation
func (m *MockStore) DeleteInvite(inviteID string) error {
	if m.DeleteInviteError != nil {
		return m.DeleteInviteError
	}
	if _, ok := m.Invites[inviteID]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.Invites, inviteID)
	return nil
}

// GetProfiles mock implementation
func (m *MockStore) GetProfiles(userIDs []string) (map[string]store.Profile, error) {
	profiles := make(map[string]store.Profile)
	for _, id := range userIDs {
		if p, ok := m.Profiles[id]; ok {
			profiles[id] = p
		}
	}
	return profiles, nil
}

// UpsertProfile mock implementation
func (m *MockStore) UpsertProfile(profile store.Profile) error {
	m.Profiles[profile.UserID] = profile
	return nil
}

// FetchLeaderboard mock implementation
func (m *MockStore) FetchLeaderboard(teamID string) (store.Leaderboard, error) {
	if m.FetchLeaderboardError != nil {
		return store.Leaderboard{}, m.FetchLeaderboardError
	}
	board, ok := m.Leaderboards[teamID]
	if !ok {
		return store.Leaderboard{}, mongo.ErrNoDocuments
	}
	return board, nil
}

// StoreLeaderboard mock implementation
func (m *MockStore) StoreLeaderboard(leaderboard store.Leaderboard) error {
	if m.StoreLeaderboardError != nil {
		return m.StoreLeaderboardError
	}
	m.Leaderboards[leaderboard.TeamID.Hex()] = leaderboard
	return nil
}

// GetDatabase mock implementation
func (m *MockStore) GetDatabase() interface{ Name() string } {
	return &mockDatabase{name: m.DatabaseName}
}

// GetClient mock implementation
func (m *MockStore) GetClient() interface{ Disconnect(context.Context) error } {
	return &mockClient{}
}
