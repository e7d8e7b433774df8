/* invites.go
 * Contains the methods for interacting with the team_invites collection. The accept/decline transitions are
 * conditional writes keyed on the current status so concurrent callers cannot both move the same invite
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateInvite inserts a new pending invite for an email address
// Preconditions: Receives receiver pointer for Store, teamID and inviterID strings and the invitee email
// Postconditions: Returns the created TeamInvite with status pending, or an error if it occurs
func (s *Store) CreateInvite(teamID string, inviterID string, email string) (TeamInvite, error) {
	objID, err := parseObjectID(teamID)
	if err != nil {
		return TeamInvite{}, err
	}

	invite := TeamInvite{
		TeamID:    objID,
		InviterID: inviterID,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Status:    InviteStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	res, err := s.Collections.TeamInvites.InsertOne(context.TODO(), invite)
	if err != nil {
		return TeamInvite{}, fmt.Errorf("failed to insert invite: %w", err)
	}
	invite.ID = res.InsertedID.(primitive.ObjectID)

	return invite, nil
}

// GetInvite does DB lookup and gets an invite by id
// Preconditions: Receives receiver pointer for Store and the inviteID string
// Postconditions: Returns the TeamInvite if it exists, or an error if it occurs
func (s *Store) GetInvite(inviteID string) (TeamInvite, error) {
	objID, err := parseObjectID(inviteID)
	if err != nil {
		return TeamInvite{}, err
	}

	var result TeamInvite
	err = s.Collections.TeamInvites.FindOne(context.TODO(), bson.M{"_id": objID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return TeamInvite{}, err
		}
		return TeamInvite{}, fmt.Errorf("error fetching invite from db: %w", err)
	}

	return result, nil
}

// FindPendingInvite does DB lookup for a pending invite on a team for an email. Used to reject duplicate
// invites to the same address while one is still open.
// Preconditions: Receives receiver pointer for Store, teamID string and the invitee email
// Postconditions: Returns the TeamInvite if one exists, mongo.ErrNoDocuments if not, or an error if it occurs
func (s *Store) FindPendingInvite(teamID string, email string) (TeamInvite, error) {
	objID, err := parseObjectID(teamID)
	if err != nil {
		return TeamInvite{}, err
	}

	filter := bson.M{
		"team_id": objID,
		"email":   strings.ToLower(strings.TrimSpace(email)),
		"status":  InviteStatusPending,
	}

	var result TeamInvite
	err = s.Collections.TeamInvites.FindOne(context.TODO(), filter).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return TeamInvite{}, err
		}
		return TeamInvite{}, fmt.Errorf("error fetching invite from db: %w", err)
	}

	return result, nil
}

// PendingInvitesByEmail does DB lookup and gets all pending invites addressed to an email. The email is
// lowercased first so "A@X.com" finds an invite stored for "a@x.com".
// Preconditions: Receives receiver pointer for Store and the invitee email
// Postconditions: Returns slice of TeamInvite (possibly empty), or an error if it occurs
func (s *Store) PendingInvitesByEmail(email string) ([]TeamInvite, error) {
	filter := bson.D{
		{Key: "email", Value: strings.ToLower(strings.TrimSpace(email))},
		{Key: "status", Value: InviteStatusPending},
	}

	cursor, err := s.Collections.TeamInvites.Find(context.TODO(), filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching invites from db: %w", err)
	}

	var results []TeamInvite
	if err = cursor.All(context.TODO(), &results); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of invites: %w", err)
	}

	return results, nil
}

// InvitesForTeam does DB lookup and gets all invites for a team in all statuses, most recent first
// Preconditions: Receives receiver pointer for Store and the teamID string
// Postconditions: Returns slice of TeamInvite (possibly empty), or an error if it occurs
func (s *Store) InvitesForTeam(teamID string) ([]TeamInvite, error) {
	objID, err := parseObjectID(teamID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.Collections.TeamInvites.Find(context.TODO(), bson.D{{Key: "team_id", Value: objID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching invites from db: %w", err)
	}

	var results []TeamInvite
	if err = cursor.All(context.TODO(), &results); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of invites: %w", err)
	}

	return results, nil
}

// MarkInviteAccepted conditionally moves an invite from pending to accepted. The filter includes the pending
// status, so when two accepts race only one write applies; the loser sees applied == false.
// Preconditions: Receives receiver pointer for Store and the inviteID string
// Postconditions: Returns true if this call performed the transition, false if the invite was not pending
// anymore, or an error if it occurs
func (s *Store) MarkInviteAccepted(inviteID string) (bool, error) {
	return s.transitionInvite(inviteID, InviteStatusPending, InviteStatusAccepted)
}

// MarkInviteDeclined conditionally moves an invite from pending to declined
// Preconditions: Receives receiver pointer for Store and the inviteID string
// Postconditions: Returns true if this call performed the transition, false if the invite was not pending
// anymore, or an error if it occurs
func (s *Store) MarkInviteDeclined(inviteID string) (bool, error) {
	return s.transitionInvite(inviteID, InviteStatusPending, InviteStatusDeclined)
}

// ReopenInvite puts an invite back into pending. Only used to compensate when the membership insert of an
// accept fails after the status write already applied, so the invite does not end up accepted with no
// membership behind it.
func (s *Store) ReopenInvite(inviteID string) error {
	_, err := s.transitionInvite(inviteID, InviteStatusAccepted, InviteStatusPending)
	return err
}

// transitionInvite performs a compare-and-set status write
// Preconditions: Receives receiver pointer for Store, the inviteID and the from/to status strings
// Postconditions: Returns true if the conditional write applied, false if no document matched, or an error
// if it occurs
func (s *Store) transitionInvite(inviteID string, from string, to string) (bool, error) {
	objID, err := parseObjectID(inviteID)
	if err != nil {
		return false, err
	}

	filter := bson.M{"_id": objID, "status": from}
	update := bson.M{"$set": bson.M{"status": to}}

	res, err := s.Collections.TeamInvites.UpdateOne(context.TODO(), filter, update)
	if err != nil {
		return false, fmt.Errorf("invite status update failed: %w", err)
	}

	return res.ModifiedCount == 1, nil
}

// DeleteInvite removes an invite outright regardless of status. This is the administrative withdraw, not a
// decline, so no status transition is recorded.
// Preconditions: Receives receiver pointer for Store and the inviteID string
// Postconditions: Returns nil on success, mongo.ErrNoDocuments if no invite matched, or an error if it occurs
func (s *Store) DeleteInvite(inviteID string) error {
	objID, err := parseObjectID(inviteID)
	if err != nil {
		return err
	}

	res, err := s.Collections.TeamInvites.DeleteOne(context.TODO(), bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
