package likes

import (
	"context"
	"errors"
	"strings"

	"bizdir/internal/domain"

	"go.uber.org/zap"
)

var ErrIDsRequired = errors.New("userId and businessId are required")

type LikeRepository interface {
	Exists(ctx context.Context, userID, businessID string) (bool, error)
	Count(ctx context.Context, businessID string) (int64, error)
	Toggle(ctx context.Context, userID, businessID string) (domain.ToggleResult, error)
	BusinessIDsByUser(ctx context.Context, userID string) ([]string, error)
}

// Broadcaster fans toggle outcomes out to live subscribers.
type Broadcaster interface {
	Broadcast(ev domain.LikeEvent)
}

type Service struct {
	repo LikeRepository
	hub  Broadcaster
}

func NewService(repo LikeRepository, hub Broadcaster) *Service {
	return &Service{repo: repo, hub: hub}
}

func requireIDs(userID, businessID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(businessID) == "" {
		return ErrIDsRequired
	}
	return nil
}

// Status reports whether userID likes businessID and the total count.
func (s *Service) Status(ctx context.Context, userID, businessID string) (domain.LikeStatus, error) {
	if err := requireIDs(userID, businessID); err != nil {
		return domain.LikeStatus{}, err
	}

	liked, err := s.repo.Exists(ctx, userID, businessID)
	if err != nil {
		return domain.LikeStatus{}, err
	}
	count, err := s.repo.Count(ctx, businessID)
	if err != nil {
		return domain.LikeStatus{}, err
	}
	return domain.LikeStatus{Liked: liked, Count: count}, nil
}

// Toggle flips the like and returns the new state with the fresh count.
func (s *Service) Toggle(ctx context.Context, userID, businessID string) (domain.ToggleResult, int64, error) {
	if err := requireIDs(userID, businessID); err != nil {
		return domain.ToggleResult{}, 0, err
	}

	result, err := s.repo.Toggle(ctx, userID, businessID)
	if err != nil {
		return domain.ToggleResult{}, 0, err
	}
	count, err := s.repo.Count(ctx, businessID)
	if err != nil {
		return domain.ToggleResult{}, 0, err
	}

	if s.hub != nil {
		s.hub.Broadcast(domain.LikeEvent{BusinessID: businessID, Count: count})
	}
	zap.S().Debugw("like toggled", "user", userID, "business", businessID, "action", result.Action, "count", count)

	return result, count, nil
}

// LikedBusinesses lists the ids of businesses userID has liked.
func (s *Service) LikedBusinesses(ctx context.Context, userID string) ([]string, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrIDsRequired
	}
	ids, err := s.repo.BusinessIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
