package service

import (
	"context"
	"errors"

	apperrors "studytracker/internal/errors"
	"studytracker/internal/model"
	"studytracker/internal/repository"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 200
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Get(ctx context.Context, userID string) (*model.User, *apperrors.APIError) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user_not_found", "user not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get user")
	}
	return user, nil
}

// Leaderboard ranks users by total study minutes. A non-positive limit
// selects the default; larger limits are capped.
func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, *apperrors.APIError) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	entries, err := s.users.Leaderboard(ctx, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to load leaderboard")
	}
	return entries, nil
}
