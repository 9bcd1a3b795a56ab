package biz

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"bizdir/internal/csvio"
	"bizdir/internal/domain"
	"bizdir/internal/repository"
)

type Service struct {
	repo     BusinessRepository
	observer ImportObserver
	now      func() time.Time
}

func NewService(repo BusinessRepository, observer ImportObserver) *Service {
	return &Service{repo: repo, observer: observer, now: time.Now}
}

/* ---------- READ ---------- */

func (s *Service) List(ctx context.Context, f repository.BusinessFilter) ([]domain.Business, error) {
	businesses, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if businesses == nil {
		businesses = []domain.Business{}
	}
	return businesses, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Business, error) {
	b, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Business, error) {
	businesses, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if businesses == nil {
		businesses = []domain.Business{}
	}
	return businesses, nil
}

func (s *Service) Cities(ctx context.Context) ([]string, error) {
	cities, err := s.repo.Cities(ctx)
	if err != nil {
		return nil, err
	}
	if cities == nil {
		cities = []string{}
	}
	return cities, nil
}

/* ---------- WRITE ---------- */

// CreateAdmin stores a business that has no owning account.
func (s *Service) CreateAdmin(ctx context.Context, data *BusinessData) (*domain.Business, error) {
	if !data.HasTitle() {
		return nil, ErrTitleRequired
	}

	b := &domain.Business{}
	data.Apply(b)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetMine returns the caller's business, or nil when they have none.
func (s *Service) GetMine(ctx context.Context, userID string) (*domain.Business, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}
	b, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return b, err
}

// SaveMine creates the owner's business or updates the existing one.
// created reports which of the two happened.
func (s *Service) SaveMine(ctx context.Context, userID string, data *BusinessData) (b *domain.Business, created bool, err error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, false, ErrUserIDRequired
	}
	if data == nil {
		return nil, false, ErrTitleRequired
	}

	existing, err := s.repo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		return s.updateMine(ctx, existing, data)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, err
	}

	if !data.HasTitle() {
		return nil, false, ErrTitleRequired
	}
	b = &domain.Business{UserID: &userID}
	data.Apply(b)
	err = s.repo.Create(ctx, b)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost a race with a concurrent create for the same owner.
		existing, err = s.repo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		return s.updateMine(ctx, existing, data)
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Service) updateMine(ctx context.Context, b *domain.Business, data *BusinessData) (*domain.Business, bool, error) {
	data.Apply(b)
	if strings.TrimSpace(b.Title) == "" {
		return nil, false, ErrTitleRequired
	}
	b.UpdatedAt = s.now()
	if err := s.repo.UpdateByUserID(ctx, b.OwnerID(), b); err != nil {
		return nil, false, err
	}
	return b, false, nil
}

func (s *Service) DeleteMine(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}
	n, err := s.repo.DeleteByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

/* ---------- CSV ---------- */

// Import parses an uploaded CSV file and stores each row as an admin
// business. Parsing failures abort the whole upload; store failures are
// collected per row.
func (s *Service) Import(ctx context.Context, filename string, text string) (csvio.ImportResult, error) {
	if err := csvio.CheckFilename(filename); err != nil {
		return csvio.ImportResult{}, err
	}

	records, err := csvio.Parse(text)
	if err != nil {
		return csvio.ImportResult{}, err
	}
	if len(records) == 0 {
		return csvio.ImportResult{}, ErrNoValidRows
	}

	result := csvio.ImportRecords(ctx, records, func(ctx context.Context, r csvio.Record) error {
		return s.repo.Create(ctx, &domain.Business{
			Title: r.Title,
			Phone: r.Phone,
			City:  r.City,
			Type:  r.Type,
		})
	})

	if s.observer != nil {
		s.observer.ObserveImport(result.Imported, result.Failed)
	}
	return result, nil
}

// Export renders every business as CSV.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	businesses, err := s.repo.List(ctx, repository.BusinessFilter{})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := csvio.WriteBusinesses(&buf, businesses); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFilename is the attachment name for an export produced now.
func (s *Service) ExportFilename() string {
	return csvio.ExportFilename("businesses", s.now())
}
