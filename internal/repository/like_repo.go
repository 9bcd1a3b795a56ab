package repository

import (
	"context"

	"bizdir/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Exists reports whether userID currently likes businessID.
func (r *LikeRepository) Exists(ctx context.Context, userID, businessID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("user_id = ? AND business_id = ?", userID, businessID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns how many users like businessID.
func (r *LikeRepository) Count(ctx context.Context, businessID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("business_id = ?", businessID).
		Count(&count).Error
	return count, err
}

// Toggle deletes the (user, business) like when present and inserts it
// otherwise. Losing an insert race to a concurrent toggle leaves the pair
// liked, which is what both callers asked for.
func (r *LikeRepository) Toggle(ctx context.Context, userID, businessID string) (domain.ToggleResult, error) {
	var result domain.ToggleResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND business_id = ?", userID, businessID).Delete(&domain.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			result = domain.ToggleResult{Liked: false, Action: domain.ActionUnliked}
			return nil
		}

		like := &domain.Like{
			ID:         uuid.NewString(),
			UserID:     userID,
			BusinessID: businessID,
		}
		if err := tx.Create(like).Error; err != nil {
			return err
		}
		result = domain.ToggleResult{Liked: true, Action: domain.ActionLiked}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ToggleResult{Liked: true, Action: domain.ActionLiked}, nil
		}
		return domain.ToggleResult{}, err
	}

	return result, nil
}

// BusinessIDsByUser lists the businesses userID has liked, newest first.
func (r *LikeRepository) BusinessIDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("business_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteOrphans removes likes whose business no longer exists. Toggle does
// not check the business, so stray ids can accumulate.
func (r *LikeRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("business_id NOT IN (?)", r.db.Model(&domain.Business{}).Select("id")).
		Delete(&domain.Like{})
	return res.RowsAffected, res.Error
}
