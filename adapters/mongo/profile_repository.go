package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aurayouth/server/domain/entities"
	"github.com/aurayouth/server/domain/repositories"
)

type ProfileRepository struct {
	collection *mongo.Collection
}

// NewProfileRepository creates a new MongoDB profile repository
func NewProfileRepository(db *mongo.Database) repositories.ProfileRepository {
	return &ProfileRepository{
		collection: db.Collection("profiles"),
	}
}

// GetByUserID implements repositories.ProfileRepository
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*entities.UserProfile, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}

	var profile entities.UserProfile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // No profile yet, not an error
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}

	return &profile, nil
}

// Save implements repositories.ProfileRepository
func (r *ProfileRepository) Save(ctx context.Context, profile *entities.UserProfile) error {
	if profile == nil {
		return errors.New("profile cannot be nil")
	}
	if profile.UserID == "" {
		return errors.New("profile user ID cannot be empty")
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"user_id": profile.UserID}, profile, opts)
	if err != nil {
		return fmt.Errorf("failed to save profile for user %s: %w", profile.UserID, err)
	}

	return nil
}
