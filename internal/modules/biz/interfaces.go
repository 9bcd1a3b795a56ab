package biz

import (
	"context"

	"bizdir/internal/domain"
	"bizdir/internal/repository"
)

// BusinessRepository lists the store operations the business service needs.
type BusinessRepository interface {
	List(ctx context.Context, f repository.BusinessFilter) ([]domain.Business, error)
	GetByID(ctx context.Context, id string) (*domain.Business, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Business, error)
	Recent(ctx context.Context, limit int) ([]domain.Business, error)
	Create(ctx context.Context, b *domain.Business) error
	UpdateByUserID(ctx context.Context, userID string, b *domain.Business) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	Cities(ctx context.Context) ([]string, error)
}

// ImportObserver is told about every processed import batch.
type ImportObserver interface {
	ObserveImport(imported, failed int)
}
