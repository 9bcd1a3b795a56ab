package repository

import (
	"context"
	"strings"

	"bizdir/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BusinessFilter narrows List. Empty fields match everything.
type BusinessFilter struct {
	Type string
	City string
}

type BusinessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

// List returns businesses in insertion order.
func (r *BusinessRepository) List(ctx context.Context, f BusinessFilter) ([]domain.Business, error) {
	var businesses []domain.Business

	q := r.db.WithContext(ctx).Model(&domain.Business{})
	if t := strings.TrimSpace(f.Type); t != "" {
		q = q.Where("type = ?", t)
	}
	if city := strings.TrimSpace(f.City); city != "" {
		q = q.Where("city = ?", city)
	}

	if err := q.Order("created_at ASC").Order("id ASC").Find(&businesses).Error; err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *BusinessRepository) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	var b domain.Business
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, translateError(err)
	}
	return &b, nil
}

func (r *BusinessRepository) GetByUserID(ctx context.Context, userID string) (*domain.Business, error) {
	var b domain.Business
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&b).Error; err != nil {
		return nil, translateError(err)
	}
	return &b, nil
}

// Recent returns the newest businesses first.
func (r *BusinessRepository) Recent(ctx context.Context, limit int) ([]domain.Business, error) {
	var businesses []domain.Business
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&businesses).Error
	if err != nil {
		return nil, err
	}
	return businesses, nil
}

// Create assigns a fresh identifier and inserts the record.
func (r *BusinessRepository) Create(ctx context.Context, b *domain.Business) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return translateError(r.db.WithContext(ctx).Create(b).Error)
}

// UpdateByUserID overwrites the editable fields of the owner's business.
func (r *BusinessRepository) UpdateByUserID(ctx context.Context, userID string, b *domain.Business) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Business{}).
		Where("user_id = ?", userID).
		Select("title", "type", "phone", "city", "address", "email", "website", "description", "updated_at").
		Updates(b)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByUserID removes the owner's business together with its likes and
// reports how many businesses were removed.
func (r *BusinessRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&domain.Business{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("business_id IN ?", ids).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&domain.Business{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

// Cities returns the distinct non-empty cities, sorted.
func (r *BusinessRepository) Cities(ctx context.Context) ([]string, error) {
	var cities []string
	err := r.db.WithContext(ctx).
		Model(&domain.Business{}).
		Where("city IS NOT NULL AND TRIM(city) <> ''").
		Distinct("city").
		Order("city ASC").
		Pluck("city", &cities).Error
	if err != nil {
		return nil, err
	}
	return cities, nil
}
