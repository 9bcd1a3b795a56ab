package users

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

var ErrEmailRequired = errors.New("email is required")

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type Service struct {
	repo UserRepository
	now  func() time.Time
}

func NewService(repo UserRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Check finds the user with email. When none exists and data is given the
// user is created from the provider profile.
func (s *Service) Check(ctx context.Context, email string, data *UserData) (CheckResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return CheckResult{}, ErrEmailRequired
	}

	u, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return CheckResult{Exists: true, User: u}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return CheckResult{}, err
	case data == nil:
		return CheckResult{}, nil
	}

	u = s.newUser(email, data)
	err = s.repo.Create(ctx, u)
	if errors.Is(err, repository.ErrDuplicate) {
		// created concurrently by another sign-in
		u, err = s.repo.GetByEmail(ctx, email)
		if err != nil {
			return CheckResult{}, err
		}
		return CheckResult{Exists: true, User: u}, nil
	}
	if err != nil {
		return CheckResult{}, err
	}
	return CheckResult{Exists: true, Created: true, User: u}, nil
}

func (s *Service) newUser(email string, data *UserData) *domain.User {
	now := csvio.FormatTime(s.now())

	u := &domain.User{
		UID:           data.UID,
		Email:         email,
		DisplayName:   data.DisplayName,
		PhotoURL:      data.PhotoURL,
		EmailVerified: data.EmailVerified,
		PhoneNumber:   data.PhoneNumber,
		ProviderData:  data.ProviderData,
		Metadata: domain.UserMetadata{
			CreationTime:   now,
			LastSignInTime: now,
		},
	}
	if u.ProviderData == nil {
		u.ProviderData = []domain.ProviderInfo{}
	}
	if m := data.Metadata; m != nil {
		if m.CreationTime != "" {
			u.Metadata.CreationTime = m.CreationTime
		}
		if m.LastSignInTime != "" {
			u.Metadata.LastSignInTime = m.LastSignInTime
		}
	}
	return u
}

// Export renders every user as CSV.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := csvio.WriteUsers(&buf, list); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) ExportFilename() string {
	return csvio.ExportFilename("users", s.now())
}
