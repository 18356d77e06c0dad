package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aurayouth/server/domain/entities"
	"github.com/aurayouth/server/domain/repositories"
)

// TwinService maintains the per-user digital twin: it serializes profile
// updates per user_id and derives mood predictions and insights.
type TwinService struct {
	profiles repositories.ProfileRepository
	logger   *zap.Logger

	// userLocks serializes read-modify-write cycles per user so concurrent
	// requests for the same user cannot lose updates. Entries are refcounted
	// and removed when the last holder releases, so the map is bounded by
	// in-flight updates rather than growing with every user_id ever seen.
	mu        sync.Mutex
	userLocks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewTwinService creates a new digital twin service.
func NewTwinService(profiles repositories.ProfileRepository, logger *zap.Logger) *TwinService {
	return &TwinService{
		profiles:  profiles,
		logger:    logger,
		userLocks: make(map[string]*userLock),
	}
}

func (s *TwinService) acquire(userID string) *userLock {
	s.mu.Lock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &userLock{}
		s.userLocks[userID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (s *TwinService) release(userID string, lock *userLock) {
	lock.mu.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.userLocks, userID)
	}
	s.mu.Unlock()
}

// UpdateProfile records an interaction against the user's profile, creating
// the profile lazily on first contact.
func (s *TwinService) UpdateProfile(ctx context.Context, userID string, interaction entities.Interaction) error {
	lock := s.acquire(userID)
	defer s.release(userID, lock)

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading profile for %s: %w", userID, err)
	}
	if profile == nil {
		profile = entities.NewUserProfile(userID)
	}

	profile.RecordInteraction(interaction)

	if err := s.profiles.Save(ctx, profile); err != nil {
		return fmt.Errorf("saving profile for %s: %w", userID, err)
	}

	s.logger.Debug("Profile updated",
		zap.String("user_id", userID),
		zap.String("risk", string(profile.RiskAssessment)),
		zap.Int("interactions", len(profile.Interactions)))

	return nil
}

// GetProfile returns the user's profile, or nil if none exists.
func (s *TwinService) GetProfile(ctx context.Context, userID string) (*entities.UserProfile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// PredictMood returns the mode of the user's recent moods. Users with no
// history predict neutral at 0.5.
func (s *TwinService) PredictMood(ctx context.Context, userID string) (entities.MoodPrediction, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return entities.MoodPrediction{}, fmt.Errorf("loading profile for %s: %w", userID, err)
	}
	if profile == nil {
		return entities.MoodPrediction{Prediction: entities.EmotionNeutral, Confidence: 0.5}, nil
	}
	return profile.PredictMood(), nil
}

// GetInsights aggregates trends and recommendations for a user.
func (s *TwinService) GetInsights(ctx context.Context, userID string) (*entities.Insights, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile for %s: %w", userID, err)
	}
	if profile == nil {
		return nil, nil
	}

	insights := profile.BuildInsights(time.Now())
	return &insights, nil
}
