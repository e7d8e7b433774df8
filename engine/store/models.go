/* models.go
 * This file contains the structs and helper functions that relate to DB objects
 */

package store

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invite lifecycle states. Pending is the only actionable state; accepted and
// declined are terminal.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusDeclined = "declined"
)

// Exercise is a catalog entry: a named movement with a fixed competition
// target. Seeded once, never mutated by end users.
type Exercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	TargetAmount float64            `bson:"target_amount"`
	Unit         string             `bson:"unit"`
	CreatedAt    time.Time          `bson:"created_at,omitempty"`
}

// TrainingLog is one submitted training fact. Logs are append only; nothing
// in the engine edits or deletes them once written.
type TrainingLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	ExerciseID primitive.ObjectID `bson:"exercise_id"`
	Amount     float64            `bson:"amount"`
	Weight     *float64           `bson:"weight,omitempty"`
	LoggedAt   time.Time          `bson:"logged_at"`
}

type Team struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	EventName string             `bson:"event_name,omitempty"`
	EventDate *time.Time         `bson:"event_date,omitempty"`
	CreatedAt time.Time          `bson:"created_at,omitempty"`
}

// TeamMember relates a user to a team. A user belongs to at most one team;
// the unique index on user_id enforces this at write time.
type TeamMember struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	TeamID   primitive.ObjectID `bson:"team_id"`
	UserID   string             `bson:"user_id"`
	JoinedAt time.Time          `bson:"joined_at,omitempty"`
}

// TeamInvite is one email invitation to join a team. Email is stored
// lowercased so lookups are case insensitive.
type TeamInvite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	TeamID    primitive.ObjectID `bson:"team_id"`
	InviterID string             `bson:"inviter_id"`
	Email     string             `bson:"email"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
}

// Profile holds the display identity for a user. The engine only reads these
// to annotate leaderboard entries; account handling lives elsewhere.
type Profile struct {
	UserID   string `bson:"user_id"`
	FullName string `bson:"full_name,omitempty"`
	Email    string `bson:"email,omitempty"`
}

// Leaderboard is the persisted snapshot of a team's ranked readiness. It is
// derived state: recomputable at any time from logs and memberships.
type Leaderboard struct {
	TeamID        primitive.ObjectID `bson:"team_id"`
	TeamReadiness float64            `bson:"team_readiness"`
	Entries       []LeaderboardEntry `bson:"entries"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

// parseObjectID converts an id string from a caller into an ObjectID
// Preconditions: none
// Postconditions: Returns the ObjectID or an error if the string is not a valid hex id
func parseObjectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return objID, nil
}

type LeaderboardEntry struct {
	UserID   string  `bson:"user_id"`
	FullName string  `bson:"full_name,omitempty"`
	Overall  float64 `bson:"overall"`
	Percent  int     `bson:"percent"`
	Rank     int     `bson:"rank"`
	Medal    string  `bson:"medal"`
}
