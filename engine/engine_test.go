/* engine_test.go
 * Contains unit tests for engine.go - testing the readiness views and the invite lifecycle
 */

package engine

import (
	"errors"
	"fmt"
	"testing"

	"hyrox-tracker/engine/shared"
	"hyrox-tracker/engine/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// region NewEngine tests

func TestNewEngine_MissingDBName(t *testing.T) {
	_, err := NewEngine("", "mongodb://localhost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dbName is required")
}

// endregion

// region RecordTraining tests

func TestRecordTraining_Success(t *testing.T) {
	mockStore := NewMockStore()
	mockStore.AddExercise("Sled Push", 50, "m")

	eng := &Engine{Store: mockStore}
	user := shared.User{UserID: "u1", FullName: "Test User"}

	err := eng.RecordTraining(user, "sled push", 40, nil)
	require.NoError(t, err)

	logs := mockStore.Logs["u1"]
	require.Len(t, logs, 1)
	assert.Equal(t, 40.0, logs[0].Amount)
	assert.Equal(t, "u1", logs[0].UserID)
	assert.False(t, logs[0].LoggedAt.IsZero())
}

func TestRecordTraining_RejectsNonPositiveAmount(t *testing.T) {
	mockStore := NewMockStore()
	mockStore.AddExercise("Sled Push", 50, "m")
	eng := &Engine{Store: mockStore}

	err := eng.RecordTraining(shared.User{UserID: "u1"}, "Sled Push", 0, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	err = eng.RecordTraining(shared.User{UserID: "u1"}, "Sled Push", -5, nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	assert.Empty(t, mockStore.Logs["u1"])
}

func TestRecordTraining_RejectsNegativeWeight(t *testing.T) {
	mockStore := NewMockStore()
	mockStore.AddExercise("Sled Push", 50, "m")
	eng := &Engine{Store: mockStore}

	weight := -1.0
	err := eng.RecordTraining(shared.User{UserID: "u1"}, "Sled Push", 40, &weight)

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestRecordTraining_UnknownExercise(t *testing.T) {
	mockStore := NewMockStore()
	mockStore.AddExercise("Sled Push", 50, "m")
	eng := &Engine{Store: mockStore}

	err := eng.RecordTraining(shared.User{UserID: "u1"}, "zzzzz", 40, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

// endregion

// region Readiness tests

func TestReadiness_EndToEnd(t *testing.T) {
	// catalog = run/1000m, logs 600 and 900 -> best 900 -> 90%
	mockStore := NewMockStore()
	run := mockStore.AddExercise("Run", 1000, "m")
	mockStore.Logs["u1"] = []store.TrainingLog{
		{UserID: "u1", ExerciseID: run.ID, Amount: 600},
		{UserID: "u1", ExerciseID: run.ID, Amount: 900},
	}

	eng := &Engine{Store: mockStore}
	report, err := eng.Readiness("u1")

	require.NoError(t, err)
	require.Len(t, report.Scores, 1)
	assert.Equal(t, 90.0, report.Scores[0].Readiness)
	assert.Equal(t, 90, report.Scores[0].Percent)
	assert.Equal(t, 90.0, report.Overall)
	assert.Equal(t, 90, report.OverallPercent)
}

func TestReadiness_UnloggedExerciseCountsAsZero(t *testing.T) {
	mockStore := NewMockStore()
	run := mockStore.AddExercise("Run", 1000, "m")
	mockStore.AddExercise("Sled Push", 50, "m")
	mockStore.Logs["u1"] = []store.TrainingLog{{UserID: "u1", ExerciseID: run.ID, Amount: 1000}}

	eng := &Engine{Store: mockStore}
	report, err := eng.Readiness("u1")

	require.NoError(t, err)
	require.Len(t, report.Scores, 2)
	// 100% on run, 0% on the never-logged sled push -> 50% overall, not 100%
	assert.Equal(t, 50.0, report.Overall)
}

func TestReadiness_EmptyCatalog(t *testing.T) {
	mockStore := NewMockStore()
	eng := &Engine{Store: mockStore}

	report, err := eng.Readiness("u1")

	require.NoError(t, err)
	assert.Empty(t, report.Scores)
	assert.Equal(t, 0.0, report.Overall)
	assert.Equal(t, 0, report.OverallPercent)
}

func TestReadiness_MalformedTargetScoresZero(t *testing.T) {
	mockStore := NewMockStore()
	bad := mockStore.AddExercise("Broken", 0, "m")
	mockStore.Logs["u1"] = []store.TrainingLog{{UserID: "u1", ExerciseID: bad.ID, Amount: 999}}

	eng := &Engine{Store: mockStore}
	report, err := eng.Readiness("u1")

	require.NoError(t, err)
	require.Len(t, report.Scores, 1)
	assert.Equal(t, 0.0, report.Scores[0].Readiness)
}

// endregion

// region CreateTeam tests

func TestCreateTeam_CreatorBecomesFirstMember(t *testing.T) {
	mockStore := NewMockStore()
	eng := &Engine{Store: mockStore}
	user := shared.User{UserID: "u1", FullName: "Creator", Email: "creator@x.com"}

	team, err := eng.CreateTeam(user, "Team Crawford", "HYROX Competition", nil)

	require.NoError(t, err)
	assert.Equal(t, "Team Crawford", team.Name)
	member, err := mockStore.GetMembershipForUser("u1")
	require.NoError(t, err)
	assert.Equal(t, team.ID, member.TeamID)
}

func TestCreateTeam_ConflictWhenAlreadyOnTeam(t *testing.T) {
	mockStore := NewMockStore()
	eng := &Engine{Store: mockStore}
	user := shared.User{UserID: "u1"}

	_, err := eng.CreateTeam(user, "First", "", nil)
	require.NoError(t, err)

	_, err = eng.CreateTeam(user, "Second", "", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

func TestCreateTeam_RejectsEmptyName(t *testing.T) {
	eng := &Engine{Store: NewMockStore()}

	_, err := eng.CreateTeam(shared.User{UserID: "u1"}, "   ", "", nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

// endregion

// region InviteMember tests

func TestInviteMember_Success(t *testing.T) {
	mockStore := NewMockStore()
	eng := &Engine{Store: mockStore}
	inviter := shared.User{UserID: "u1"}

	team, err := eng.CreateTeam(inviter, "Team", "", nil)
	require.NoError(t, err)

	invite, err := eng.InviteMember(team.ID.Hex(), inviter, "Mate@Example.COM")

	require.NoError(t, err)
	assert.Equal(t, "mate@example.com", invite.Email)
	assert.Equal(t, store.InviteStatusPending, invite.Status)
}

func TestInviteMember_DuplicatePendingConflict(t *testing.T) {
	mockStore := NewMockStore()
	eng := &Engine{Store: mockStore}
	inviter := shared.User{UserID: "u1"}

	team, err := eng.CreateTeam(inviter, "Team", "", nil)
	require.NoError(t, err)

	_, err = eng.InviteMember(team.ID.Hex(), inviter, "mate@example.com")
	require.NoError(t, err)

	// Same address with a pending invite open, any casing
	_, err = eng.InviteMember(team.ID.Hex(), inviter, "MATE@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

func TestInviteMember_InviterNotAMember(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Team")
	eng := &Engine{Store: mockStore}

	_, err := eng.InviteMember(team.ID.Hex(), shared.User{UserID: "outsider"}, "mate@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

func TestInviteMember_RejectsBadEmail(t *testing.T) {
	eng := &Engine{Store: NewMockStore()}

	_, err := eng.InviteMember("ffffffffffffffffffffffff", shared.User{UserID: "u1"}, "not-an-email")

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

// endregion

// region AcceptInvite tests

func TestAcceptInvite_Success(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Team")
	invite := mockStore.AddPendingInvite(team.ID, "u1", "mate@example.com")

	eng := &Engine{Store: mockStore}
	err := eng.AcceptInvite(invite.ID.Hex(), shared.User{UserID: "u2", Email: "mate@example.com"})

	require.NoError(t, err)
	// Status transitioned and exactly one membership exists
	stored := mockStore.Invites[invite.ID.Hex()]
	assert.Equal(t, store.InviteStatusAccepted, stored.Status)
	member, err := mockStore.GetMembershipForUser("u2")
	require.NoError(t, err)
	assert.Equal(t, team.ID, member.TeamID)
}

func TestAcceptInvite_SecondAcceptConflicts(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Team")
	invite := mockStore.AddPendingInvite(team.ID, "u1", "mate@example.com")

	eng := &Engine{Store: mockStore}
	require.NoError(t, eng.AcceptInvite(invite.ID.Hex(), shared.User{UserID: "u2"}))

	err := eng.AcceptInvite(invite.ID.Hex(), shared.User{UserID: "u3"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))

	// No additional membership was created
	_, err = mockStore.GetMembershipForUser("u3")
	assert.Error(t, err)
	members, _ := mockStore.GetTeamMembers(team.ID.Hex())
	assert.Len(t, members, 1)
}

func TestAcceptInvite_UserAlreadyOnATeam(t *testing.T) {
	mockStore := NewMockStore()
	teamA := mockStore.AddTeam("Team A")
	teamB := mockStore.AddTeam("Team B")
	require.NoError(t, mockStore.AddTeamMember(teamA.ID.Hex(), "u2"))
	invite := mockStore.AddPendingInvite(teamB.ID, "u1", "mate@example.com")

	eng := &Engine{Store: mockStore}
	err := eng.AcceptInvite(invite.ID.Hex(), shared.User{UserID: "u2"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
	// Invite untouched: still pending
	assert.Equal(t, store.InviteStatusPending, mockStore.Invites[invite.ID.Hex()].Status)
}

func TestAcceptInvite_MembershipFailureReopensInvite(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Team")
	invite := mockStore.AddPendingInvite(team.ID, "u1", "mate@example.com")
	mockStore.AddTeamMemberError = fmt.Errorf("write failed")

	eng := &Engine{Store: mockStore}
	err := eng.AcceptInvite(invite.ID.Hex(), shared.User{UserID: "u2"})

	require.Error(t, err)
	// The accept must not half apply: the invite goes back to pending and no membership exists
	assert.Equal(t, store.InviteStatusPending, mockStore.Invites[invite.ID.Hex()].Status)
	_, err = mockStore.GetMembershipForUser("u2")
	assert.Error(t, err)
}

func TestAcceptInvite_RacedCASLoss(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Team")
	invite := mockStore.AddPendingInvite(team.ID, "u1", "mate@example.com")

	// Simulate a concurrent accept landing between the read and the conditional write: the invite still
	// reads as pending but the compare-and-set does not apply
	mockStore.ForceCASMiss = true

	eng := &Engine{Store: mockStore}
	err := eng.AcceptInvite(invite.ID.Hex(), shared.User{UserID: "u2"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
	// The loser must not have created a membership
	_, err = mockStore.GetMembershipForUser("u2")
	assert.Error(t, err)
}

func TestAcceptInvite_NotFound(t *testing.T) {
	eng := &Engine{Store: NewMockStore()}

	err := eng.AcceptInvite("ffffffffffffffffffffffff", shared.User{UserID: "u2"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

// endregion

// region DeclineInvite tests

func TestDeclineInvite_Success(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Team")
	invite := mockStore.AddPendingInvite(team.ID, "u1", "mate@example.com")

	eng := &Engine{Store: mockStore}
	err := eng.DeclineInvite(invite.ID.Hex(), "Mate@Example.com")

	require.NoError(t, err)
	assert.Equal(t, store.InviteStatusDeclined, mockStore.Invites[invite.ID.Hex()].Status)
	// Declining never creates a membership
	assert.Empty(t, mockStore.Memberships)
}

func TestDeclineInvite_WrongEmail(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Team")
	invite := mockStore.AddPendingInvite(team.ID, "u1", "mate@example.com")

	eng := &Engine{Store: mockStore}
	err := eng.DeclineInvite(invite.ID.Hex(), "other@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
	assert.Equal(t, store.InviteStatusPending, mockStore.Invites[invite.ID.Hex()].Status)
}

func TestDeclineInvite_AlreadyResolved(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Team")
	invite := mockStore.AddPendingInvite(team.ID, "u1", "mate@example.com")
	mockStore.transition(invite.ID.Hex(), store.InviteStatusPending, store.InviteStatusDeclined)

	eng := &Engine{Store: mockStore}
	err := eng.DeclineInvite(invite.ID.Hex(), "mate@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

// endregion

// region WithdrawInvite tests

func TestWithdrawInvite_DeletesRegardlessOfStatus(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Team")
	pending := mockStore.AddPendingInvite(team.ID, "u1", "a@x.com")
	resolved := mockStore.AddPendingInvite(team.ID, "u1", "b@x.com")
	mockStore.transition(resolved.ID.Hex(), store.InviteStatusPending, store.InviteStatusDeclined)

	eng := &Engine{Store: mockStore}

	require.NoError(t, eng.WithdrawInvite(pending.ID.Hex()))
	require.NoError(t, eng.WithdrawInvite(resolved.ID.Hex()))
	assert.Empty(t, mockStore.Invites)
}

func TestWithdrawInvite_NotFound(t *testing.T) {
	eng := &Engine{Store: NewMockStore()}

	err := eng.WithdrawInvite("ffffffffffffffffffffffff")

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

// endregion

// region Invite query tests

func TestPendingInvitesFor_CaseInsensitive(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Team T")
	mockStore.AddPendingInvite(team.ID, "u1", "a@x.com")

	eng := &Engine{Store: mockStore}
	invites, err := eng.PendingInvitesFor("A@X.com")

	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.Equal(t, "a@x.com", invites[0].Email)
}

func TestTeamInvites_AllStatuses(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Team")
	mockStore.AddPendingInvite(team.ID, "u1", "a@x.com")
	declined := mockStore.AddPendingInvite(team.ID, "u1", "b@x.com")
	mockStore.transition(declined.ID.Hex(), store.InviteStatusPending, store.InviteStatusDeclined)

	eng := &Engine{Store: mockStore}
	invites, err := eng.TeamInvites(team.ID.Hex())

	require.NoError(t, err)
	assert.Len(t, invites, 2)
}

// endregion

// region Team readiness and leaderboard tests

// seedTwoMemberTeam builds a team where u1 is at 90% overall and u2 at 40%
func seedTwoMemberTeam(t *testing.T, mockStore *MockStore) store.Team {
	t.Helper()
	run := mockStore.AddExercise("Run", 1000, "m")
	team := mockStore.AddTeam("Team")
	require.NoError(t, mockStore.AddTeamMember(team.ID.Hex(), "u1"))
	require.NoError(t, mockStore.AddTeamMember(team.ID.Hex(), "u2"))
	mockStore.Logs["u1"] = []store.TrainingLog{{UserID: "u1", ExerciseID: run.ID, Amount: 900}}
	mockStore.Logs["u2"] = []store.TrainingLog{{UserID: "u2", ExerciseID: run.ID, Amount: 400}}
	mockStore.Profiles["u1"] = store.Profile{UserID: "u1", FullName: "Member A"}
	mockStore.Profiles["u2"] = store.Profile{UserID: "u2", FullName: "Member B"}
	return team
}

func TestTeamReadiness_MeanOfMembers(t *testing.T) {
	mockStore := NewMockStore()
	team := seedTwoMemberTeam(t, mockStore)

	eng := &Engine{Store: mockStore}
	readiness, err := eng.TeamReadiness(team.ID.Hex())

	require.NoError(t, err)
	assert.InDelta(t, 65.0, readiness, 1e-9)
}

func TestTeamReadiness_EmptyTeam(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Empty")

	eng := &Engine{Store: mockStore}
	readiness, err := eng.TeamReadiness(team.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, 0.0, readiness)
}

func TestLeaderboard_RanksAndMedals(t *testing.T) {
	mockStore := NewMockStore()
	team := seedTwoMemberTeam(t, mockStore)

	eng := &Engine{Store: mockStore}
	board, err := eng.Leaderboard(team.ID.Hex())

	require.NoError(t, err)
	assert.InDelta(t, 65.0, board.TeamReadiness, 1e-9)
	require.Len(t, board.Entries, 2)

	assert.Equal(t, "u1", board.Entries[0].UserID)
	assert.Equal(t, "Member A", board.Entries[0].FullName)
	assert.Equal(t, 90, board.Entries[0].Percent)
	assert.Equal(t, 0, board.Entries[0].Rank)
	assert.Equal(t, "gold", board.Entries[0].Medal)

	assert.Equal(t, "u2", board.Entries[1].UserID)
	assert.Equal(t, 40, board.Entries[1].Percent)
	assert.Equal(t, "silver", board.Entries[1].Medal)
}

func TestLeaderboard_EmptyTeam(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Empty")

	eng := &Engine{Store: mockStore}
	board, err := eng.Leaderboard(team.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, 0.0, board.TeamReadiness)
	assert.Empty(t, board.Entries)
}

func TestLeaderboard_ServedFromSnapshotWhenThrottled(t *testing.T) {
	mockStore := NewMockStore()
	team := seedTwoMemberTeam(t, mockStore)

	eng := &Engine{Store: mockStore}
	_, err := eng.Leaderboard(team.ID.Hex())
	require.NoError(t, err)

	// New logs arrive, but the second read within the refresh interval serves the stored snapshot
	run := mockStore.Exercises[0]
	mockStore.Logs["u2"] = append(mockStore.Logs["u2"], store.TrainingLog{UserID: "u2", ExerciseID: run.ID, Amount: 1000})

	board, err := eng.Leaderboard(team.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 40, board.Entries[1].Percent)

	// A forced refresh picks up the new best
	require.NoError(t, eng.RefreshLeaderboard(team.ID.Hex()))
	board, err = eng.Leaderboard(team.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 100, board.Entries[0].Percent)
}

func TestRefreshLeaderboard_TeamNotFound(t *testing.T) {
	eng := &Engine{Store: NewMockStore()}

	err := eng.RefreshLeaderboard("ffffffffffffffffffffffff")

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

// endregion

// region RemoveMember and SeedCatalog tests

func TestRemoveMember_Success(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Team")
	require.NoError(t, mockStore.AddTeamMember(team.ID.Hex(), "u1"))

	eng := &Engine{Store: mockStore}
	require.NoError(t, eng.RemoveMember(team.ID.Hex(), "u1"))

	_, err := mockStore.GetMembershipForUser("u1")
	assert.Error(t, err)
}

func TestRemoveMember_NotFound(t *testing.T) {
	mockStore := NewMockStore()
	team := mockStore.AddTeam("Team")

	eng := &Engine{Store: mockStore}
	err := eng.RemoveMember(team.ID.Hex(), "ghost")

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestSeedCatalog_Success(t *testing.T) {
	mockStore := NewMockStore()
	eng := &Engine{Store: mockStore}

	err := eng.SeedCatalog([]store.Exercise{
		{Name: "Run", TargetAmount: 1000, Unit: "m"},
		{Name: "Sled Push", TargetAmount: 50, Unit: "m"},
	})

	require.NoError(t, err)
	assert.Len(t, mockStore.Exercises, 2)
}

func TestSeedCatalog_RejectsInvalidEntries(t *testing.T) {
	mockStore := NewMockStore()
	eng := &Engine{Store: mockStore}

	err := eng.SeedCatalog([]store.Exercise{{Name: "", TargetAmount: 10}})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	err = eng.SeedCatalog([]store.Exercise{{Name: "Run", TargetAmount: 0}})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	// Nothing was written on either failure
	assert.Empty(t, mockStore.Exercises)
}

// endregion
