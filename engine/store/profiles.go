/* profiles.go
 * Contains the methods for interacting with the profiles collection
 */

package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetProfiles does DB lookup and gets display profiles for a set of users. Used to annotate leaderboard
// entries with names; users without a profile row are simply absent from the result.
// Preconditions: Receives receiver pointer for Store and a slice of userID strings
// Postconditions: Returns map of userID to Profile, or an error if it occurs
func (s *Store) GetProfiles(userIDs []string) (map[string]Profile, error) {
	profiles := make(map[string]Profile)
	if len(userIDs) == 0 {
		return profiles, nil
	}

	filter := bson.M{"user_id": bson.M{"$in": userIDs}}

	cursor, err := s.Collections.Profiles.Find(context.TODO(), filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching profiles from db: %w", err)
	}

	var results []Profile
	if err = cursor.All(context.TODO(), &results); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of profiles: %w", err)
	}

	for _, p := range results {
		profiles[p.UserID] = p
	}
	return profiles, nil
}

// UpsertProfile stores or refreshes the display identity for a user
// Preconditions: Receives receiver pointer for Store and the Profile to store
// Postconditions: Inserts or updates the profile row and returns nil, or an error if it occurs
func (s *Store) UpsertProfile(profile Profile) error {
	filter := bson.M{"user_id": profile.UserID}
	update := bson.M{"$set": profile}

	_, err := s.Collections.Profiles.UpdateOne(context.TODO(), filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
