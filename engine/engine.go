/* engine.go
 * This file contains the public methods for interacting with this package. For consistent results, functions
 * should only be called from this file, not the sub packages for logic and store. The engine is purely a
 * computation and lifecycle layer: it reads rows from the store, derives readiness views, and drives the
 * invite state machine. It never renders anything or talks to the network itself.
 */

package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"hyrox-tracker/engine/logic"
	"hyrox-tracker/engine/shared"
	"hyrox-tracker/engine/store"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"
)

// How often a team's leaderboard snapshot may be recomputed. Reads between refreshes are served from the
// stored snapshot instead of rescanning every member's full log history.
const leaderboardRefreshInterval = 30 * time.Second

// Engine provides methods for interacting with the readiness tracker data layer
type Engine struct {
	Store store.Interface

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewEngine creates a new Engine instance with the provided configuration
func NewEngine(dbName string, mongoURI string) (*Engine, error) {
	if dbName == "" {
		return nil, fmt.Errorf("dbName is required")
	}

	s, err := store.NewStore(dbName, mongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	return &Engine{
		Store:    s,
		limiters: make(map[string]*rate.Limiter),
	}, nil
}

// ExerciseScore is one exercise's readiness within a ReadinessReport.
type ExerciseScore struct {
	ExerciseID   string
	ExerciseName string
	BestAmount   float64
	TargetAmount float64
	Unit         string
	Readiness    float64
	Percent      int
}

// ReadinessReport is the per-exercise and overall readiness view for one user. Overall is the unrounded
// mean of the unrounded per-exercise values; Percent fields are rounded for display only.
type ReadinessReport struct {
	Scores         []ExerciseScore
	Overall        float64
	OverallPercent int
}

// RecordTraining validates and appends one training log for a user. The exercise is resolved from the
// typed name against the catalog, so "sled push" finds "Sled Push".
// Preconditions: Receives the acting user, the typed exercise name, the performed amount and optional weight
// Postconditions: Appends the log and returns nil, or an error if validation or a store call fails
func (e *Engine) RecordTraining(user shared.User, exerciseName string, amount float64, weight *float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %v", shared.ErrInvalidInput, amount)
	}
	if weight != nil && *weight < 0 {
		return fmt.Errorf("%w: weight cannot be negative, got %v", shared.ErrInvalidInput, *weight)
	}

	catalog, err := e.Store.ListExercises()
	if err != nil {
		return err
	}

	exercise, err := logic.ResolveExerciseName(exerciseName, catalog)
	if err != nil {
		return err
	}

	log := store.TrainingLog{
		UserID:     user.UserID,
		ExerciseID: exercise.ID,
		Amount:     amount,
		Weight:     weight,
		LoggedAt:   time.Now().UTC(),
	}
	return e.Store.InsertTrainingLog(log)
}

// PersonalBests computes one best per catalog exercise for a user from their full log history
// Preconditions: Receives the userID string
// Postconditions: Returns slice of PersonalBest with one entry per catalog exercise, or an error if it occurs
func (e *Engine) PersonalBests(userID string) ([]logic.PersonalBest, error) {
	catalog, err := e.Store.ListExercises()
	if err != nil {
		return nil, err
	}

	logs, err := e.Store.GetLogsForUser(userID)
	if err != nil {
		return nil, err
	}

	return logic.ComputeBests(catalog, logs), nil
}

// Readiness computes the per-exercise and overall readiness view for a user
// Preconditions: Receives the userID string
// Postconditions: Returns a ReadinessReport, or an error if a store call fails. An empty catalog or an
// unlogged user degrades to zero values rather than erroring
func (e *Engine) Readiness(userID string) (ReadinessReport, error) {
	bests, err := e.PersonalBests(userID)
	if err != nil {
		return ReadinessReport{}, err
	}

	report := ReadinessReport{Scores: make([]ExerciseScore, 0, len(bests))}
	raw := make([]float64, 0, len(bests))
	for _, best := range bests {
		readiness := logic.ExerciseReadiness(best.BestAmount, best.TargetAmount)
		raw = append(raw, readiness)
		report.Scores = append(report.Scores, ExerciseScore{
			ExerciseID:   best.ExerciseID,
			ExerciseName: best.ExerciseName,
			BestAmount:   best.BestAmount,
			TargetAmount: best.TargetAmount,
			Unit:         best.Unit,
			Readiness:    readiness,
			Percent:      logic.RoundPercent(readiness),
		})
	}

	report.Overall = logic.OverallReadiness(raw)
	report.OverallPercent = logic.RoundPercent(report.Overall)
	return report, nil
}

// CreateTeam creates a team and makes the creator its first member. A user who already belongs to a team
// cannot create another one.
// Preconditions: Receives the acting user, team name, event name and optional event date
// Postconditions: Returns the created Team, or an error if it occurs
func (e *Engine) CreateTeam(user shared.User, name string, eventName string, eventDate *time.Time) (store.Team, error) {
	if strings.TrimSpace(name) == "" {
		return store.Team{}, fmt.Errorf("%w: team name is required", shared.ErrInvalidInput)
	}

	_, err := e.Store.GetMembershipForUser(user.UserID)
	if err == nil {
		return store.Team{}, fmt.Errorf("%w: user %s already belongs to a team", shared.ErrConflict, user.UserID)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return store.Team{}, err
	}

	team := store.Team{
		Name:      strings.TrimSpace(name),
		EventName: eventName,
		EventDate: eventDate,
	}
	created, err := e.Store.CreateTeam(team, user.UserID)
	if err != nil {
		return store.Team{}, err
	}

	// Best effort profile refresh so the leaderboard can show a name
	_ = e.Store.UpsertProfile(store.Profile{UserID: user.UserID, FullName: user.FullName, Email: strings.ToLower(user.Email)})

	return created, nil
}

// InviteMember creates a pending invite for an email address. The inviter must currently be a member of
// the team, and a second invite to an address with one still pending is rejected as a conflict instead of
// being silently duplicated.
// Preconditions: Receives the teamID string, the acting user and the invitee email
// Postconditions: Returns the created TeamInvite, or an error if it occurs
func (e *Engine) InviteMember(teamID string, inviter shared.User, email string) (store.TeamInvite, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return store.TeamInvite{}, fmt.Errorf("%w: invalid invitee email %q", shared.ErrInvalidInput, email)
	}

	membership, err := e.Store.GetMembershipForUser(inviter.UserID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return store.TeamInvite{}, fmt.Errorf("%w: inviter %s is not a member of any team", shared.ErrConflict, inviter.UserID)
		}
		return store.TeamInvite{}, err
	}
	if membership.TeamID.Hex() != teamID {
		return store.TeamInvite{}, fmt.Errorf("%w: inviter %s is not a member of team %s", shared.ErrConflict, inviter.UserID, teamID)
	}

	_, err = e.Store.FindPendingInvite(teamID, email)
	if err == nil {
		return store.TeamInvite{}, fmt.Errorf("%w: a pending invite for %s already exists on team %s", shared.ErrConflict, email, teamID)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return store.TeamInvite{}, err
	}

	return e.Store.CreateInvite(teamID, inviter.UserID, email)
}

// AcceptInvite moves a pending invite to accepted and creates the membership. From the caller's point of
// view this is atomic: the status transition is a conditional write keyed on the pending status, so when
// two accepts race exactly one wins and the other gets a conflict. If the membership insert fails after
// the status write, the invite is reopened to pending so neither effect applies alone.
// Preconditions: Receives the inviteID string and the accepting user
// Postconditions: Invite is accepted and exactly one membership exists, or an error is returned with the
// invite left pending
func (e *Engine) AcceptInvite(inviteID string, user shared.User) error {
	invite, err := e.Store.GetInvite(inviteID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: invite %s", shared.ErrNotFound, inviteID)
		}
		return err
	}

	if invite.Status != store.InviteStatusPending {
		return fmt.Errorf("%w: invite %s is already %s", shared.ErrConflict, inviteID, invite.Status)
	}

	// Single team per user: reject before touching the invite
	_, err = e.Store.GetMembershipForUser(user.UserID)
	if err == nil {
		return fmt.Errorf("%w: user %s already belongs to a team", shared.ErrConflict, user.UserID)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	applied, err := e.Store.MarkInviteAccepted(inviteID)
	if err != nil {
		return err
	}
	if !applied {
		// Lost the race: someone else resolved this invite first
		return fmt.Errorf("%w: invite %s was already resolved", shared.ErrConflict, inviteID)
	}

	err = e.Store.AddTeamMember(invite.TeamID.Hex(), user.UserID)
	if err != nil {
		// Roll the status back so the invite stays actionable; a failed accept must not half apply
		if reopenErr := e.Store.ReopenInvite(inviteID); reopenErr != nil {
			return fmt.Errorf("membership insert failed and invite %s could not be reopened: %v: %w", inviteID, reopenErr, err)
		}
		return err
	}

	_ = e.Store.UpsertProfile(store.Profile{UserID: user.UserID, FullName: user.FullName, Email: strings.ToLower(user.Email)})

	return nil
}

// DeclineInvite moves a pending invite to declined. Only the invitee may decline, and declining never
// touches memberships.
// Preconditions: Receives the inviteID string and the declining user's email
// Postconditions: Invite is declined, or an error is returned with state unchanged
func (e *Engine) DeclineInvite(inviteID string, email string) error {
	invite, err := e.Store.GetInvite(inviteID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: invite %s", shared.ErrNotFound, inviteID)
		}
		return err
	}

	if invite.Email != strings.ToLower(strings.TrimSpace(email)) {
		return fmt.Errorf("%w: invite %s is not addressed to %s", shared.ErrConflict, inviteID, email)
	}
	if invite.Status != store.InviteStatusPending {
		return fmt.Errorf("%w: invite %s is already %s", shared.ErrConflict, inviteID, invite.Status)
	}

	applied, err := e.Store.MarkInviteDeclined(inviteID)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("%w: invite %s was already resolved", shared.ErrConflict, inviteID)
	}
	return nil
}

// WithdrawInvite deletes an invite outright regardless of status. This is the administrative cancel a team
// member uses on invites they sent; it is a deletion, not a declined transition.
// Preconditions: Receives the inviteID string
// Postconditions: Invite row is gone, or an error if it occurs
func (e *Engine) WithdrawInvite(inviteID string) error {
	err := e.Store.DeleteInvite(inviteID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: invite %s", shared.ErrNotFound, inviteID)
		}
		return err
	}
	return nil
}

// PendingInvitesFor returns the pending invites addressed to an email, matched case insensitively
func (e *Engine) PendingInvitesFor(email string) ([]store.TeamInvite, error) {
	return e.Store.PendingInvitesByEmail(email)
}

// TeamInvites returns all invites for a team in all statuses, most recent first
func (e *Engine) TeamInvites(teamID string) ([]store.TeamInvite, error) {
	return e.Store.InvitesForTeam(teamID)
}

// RemoveMember deletes a user's membership on a team
// Preconditions: Receives teamID and userID strings
// Postconditions: Membership row is gone, or an error if it occurs
func (e *Engine) RemoveMember(teamID string, userID string) error {
	err := e.Store.RemoveTeamMember(teamID, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: user %s is not a member of team %s", shared.ErrNotFound, userID, teamID)
		}
		return err
	}
	return nil
}

// TeamReadiness computes the mean of every member's overall readiness for a team. A team with no members
// scores 0.
// Preconditions: Receives the teamID string
// Postconditions: Returns the unrounded team percentage, or an error if a store call fails
func (e *Engine) TeamReadiness(teamID string) (float64, error) {
	members, err := e.memberReadiness(teamID)
	if err != nil {
		return 0, err
	}

	overalls := make([]float64, 0, len(members))
	for _, m := range members {
		overalls = append(overalls, m.Overall)
	}
	return logic.TeamReadiness(overalls), nil
}

// RefreshLeaderboard recomputes a team's leaderboard snapshot from scratch and stores it
// Preconditions: Receives the teamID string
// Postconditions: Stores the ranked, medal-annotated snapshot and returns nil, or an error if it occurs
func (e *Engine) RefreshLeaderboard(teamID string) error {
	team, err := e.Store.GetTeam(teamID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: team %s", shared.ErrNotFound, teamID)
		}
		return err
	}

	members, err := e.memberReadiness(teamID)
	if err != nil {
		return err
	}

	ranked := logic.Rank(members)

	overalls := make([]float64, 0, len(members))
	for _, m := range members {
		overalls = append(overalls, m.Overall)
	}

	snapshot := store.Leaderboard{
		TeamID:        team.ID,
		TeamReadiness: logic.TeamReadiness(overalls),
		UpdatedAt:     time.Now().UTC(),
	}
	for _, r := range ranked {
		snapshot.Entries = append(snapshot.Entries, store.LeaderboardEntry{
			UserID:   r.UserID,
			FullName: r.FullName,
			Overall:  r.Overall,
			Percent:  logic.RoundPercent(r.Overall),
			Rank:     r.Rank,
			Medal:    r.Medal,
		})
	}

	return e.Store.StoreLeaderboard(snapshot)
}

// Leaderboard returns the ranked, medal-annotated view for a team. Snapshots are recomputed at most once
// per refresh interval; reads in between are served from the stored snapshot so repeated leaderboard views
// don't rescan every member's log history.
// Preconditions: Receives the teamID string
// Postconditions: Returns the Leaderboard snapshot, or an error if it occurs
func (e *Engine) Leaderboard(teamID string) (store.Leaderboard, error) {
	if e.allowRefresh(teamID) {
		if err := e.RefreshLeaderboard(teamID); err != nil {
			return store.Leaderboard{}, err
		}
	}

	snapshot, err := e.Store.FetchLeaderboard(teamID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Throttled but no snapshot yet; compute one now
			if err := e.RefreshLeaderboard(teamID); err != nil {
				return store.Leaderboard{}, err
			}
			return e.Store.FetchLeaderboard(teamID)
		}
		return store.Leaderboard{}, err
	}
	return snapshot, nil
}

// SeedCatalog validates and upserts catalog entries. Re-running a seed is safe; entries are keyed by name.
// Preconditions: Receives slice of Exercise from a catalog file
// Postconditions: All entries stored, or an error if validation or a store call fails
func (e *Engine) SeedCatalog(exercises []store.Exercise) error {
	for _, exercise := range exercises {
		if strings.TrimSpace(exercise.Name) == "" {
			return fmt.Errorf("%w: catalog entry with empty name", shared.ErrInvalidInput)
		}
		if exercise.TargetAmount <= 0 {
			return fmt.Errorf("%w: catalog entry %q has non-positive target %v", shared.ErrInvalidInput, exercise.Name, exercise.TargetAmount)
		}
	}

	for _, exercise := range exercises {
		if err := e.Store.UpsertExercise(exercise); err != nil {
			return err
		}
	}
	return nil
}

// memberReadiness computes each team member's overall readiness, annotated with their profile name. The
// catalog is fetched once and reused across members.
func (e *Engine) memberReadiness(teamID string) ([]logic.MemberReadiness, error) {
	memberRows, err := e.Store.GetTeamMembers(teamID)
	if err != nil {
		return nil, err
	}

	catalog, err := e.Store.ListExercises()
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(memberRows))
	for _, m := range memberRows {
		userIDs = append(userIDs, m.UserID)
	}
	profiles, err := e.Store.GetProfiles(userIDs)
	if err != nil {
		return nil, err
	}

	members := make([]logic.MemberReadiness, 0, len(memberRows))
	for _, row := range memberRows {
		logs, err := e.Store.GetLogsForUser(row.UserID)
		if err != nil {
			return nil, err
		}

		bests := logic.ComputeBests(catalog, logs)
		raw := make([]float64, 0, len(bests))
		for _, b := range bests {
			raw = append(raw, logic.ExerciseReadiness(b.BestAmount, b.TargetAmount))
		}

		members = append(members, logic.MemberReadiness{
			UserID:   row.UserID,
			FullName: profiles[row.UserID].FullName,
			Overall:  logic.OverallReadiness(raw),
		})
	}
	return members, nil
}

// allowRefresh reports whether the per-team refresh limiter permits recomputing the snapshot now
func (e *Engine) allowRefresh(teamID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.limiters == nil {
		e.limiters = make(map[string]*rate.Limiter)
	}
	limiter, ok := e.limiters[teamID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(leaderboardRefreshInterval), 1)
		e.limiters[teamID] = limiter
	}
	return limiter.Allow()
}
