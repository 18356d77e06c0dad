package adapters

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aurayouth/server/domain/entities"
	"github.com/aurayouth/server/domain/repositories"
)

// maxStoredProfiles bounds the in-memory store; the least recently touched
// profile is evicted first.
const maxStoredProfiles = 4096

// MemoryProfileRepository is an in-memory implementation of
// ProfileRepository, used when no database is configured or reachable.
type MemoryProfileRepository struct {
	profiles *lru.Cache[string, *entities.UserProfile]
}

// NewMemoryProfileRepository creates an empty in-memory repository.
func NewMemoryProfileRepository() *MemoryProfileRepository {
	// lru.New only errors on a non-positive size.
	profiles, _ := lru.New[string, *entities.UserProfile](maxStoredProfiles)
	return &MemoryProfileRepository{profiles: profiles}
}

// GetByUserID implements repositories.ProfileRepository. The returned profile
// is a copy so callers can mutate it before saving.
func (r *MemoryProfileRepository) GetByUserID(ctx context.Context, userID string) (*entities.UserProfile, error) {
	profile, ok := r.profiles.Get(userID)
	if !ok {
		return nil, nil
	}
	return cloneProfile(profile), nil
}

// Save implements repositories.ProfileRepository.
func (r *MemoryProfileRepository) Save(ctx context.Context, profile *entities.UserProfile) error {
	r.profiles.Add(profile.UserID, cloneProfile(profile))
	return nil
}

func cloneProfile(profile *entities.UserProfile) *entities.UserProfile {
	clone := *profile
	clone.Interactions = append([]entities.Interaction(nil), profile.Interactions...)
	clone.MoodHistory = append([]entities.MoodEntry(nil), profile.MoodHistory...)
	return &clone
}

var _ repositories.ProfileRepository = (*MemoryProfileRepository)(nil)
