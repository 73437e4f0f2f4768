package profile

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flagpost/internal/constants"
	"flagpost/pkg/errors"
)

type Repository interface {
	Upsert(ctx context.Context, req UpsertProfileRequest, seenAt time.Time) (*Profile, error)
	Get(ctx context.Context, userID string) (*Profile, error)
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(constants.UserProfilesCollection),
	}
}

// Upsert replaces the stored attributes of req.UserID. Attributes missing
// from req are cleared so the profile mirrors the latest report.
func (r *MongoRepository) Upsert(ctx context.Context, req UpsertProfileRequest, seenAt time.Time) (*Profile, error) {
	filter := bson.M{"user_id": req.UserID}
	update := bson.M{
		"$set": bson.M{
			"user_type":      req.UserType,
			"location":       req.Location,
			"account_age":    req.AccountAge,
			"activity_level": req.ActivityLevel,
			"plan_tier":      req.PlanTier,
			"last_seen":      seenAt,
		},
		"$setOnInsert": bson.M{
			"created_at": seenAt,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var p Profile
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to upsert user profile: %w", err)
	}
	return &p, nil
}

func (r *MongoRepository) Get(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.ErrNotFound.WithMessage(fmt.Sprintf("profile for user %q not found", userID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &p, nil
}
