package migrations

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flagpost/internal/constants"
)

// EnsureProfileIndexes creates the user_profiles indexes. Creating an index
// that already exists with the same keys and options is a no-op in MongoDB.
func EnsureProfileIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_user_profiles_user_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "last_seen", Value: -1}},
			Options: options.Index().SetName("idx_user_profiles_last_seen"),
		},
		{
			Keys:    bson.D{{Key: "plan_tier", Value: 1}, {Key: "user_type", Value: 1}},
			Options: options.Index().SetName("idx_user_profiles_plan_user_type"),
		},
	}

	if _, err := db.Collection(constants.UserProfilesCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create user profile indexes: %w", err)
	}
	return nil
}
