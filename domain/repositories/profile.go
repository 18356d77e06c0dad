package repositories

import (
	"context"

	"github.com/aurayouth/server/domain/entities"
)

// ProfileRepository defines data access methods for user profiles.
// Implementations must tolerate being the only copy of the data (memory mode)
// or a write-through cache backed by a database.
type ProfileRepository interface {
	// GetByUserID returns the profile for a user, or nil if none exists yet.
	GetByUserID(ctx context.Context, userID string) (*entities.UserProfile, error)
	// Save creates or replaces the stored profile.
	Save(ctx context.Context, profile *entities.UserProfile) error
}
