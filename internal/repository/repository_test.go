package repository

import (
	"context"
	"testing"
	"time"

	"bizdir/internal/database"
	"bizdir/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func strPtr(s string) *string { return &s }

func TestBusinessRepository_CreateAndGet(t *testing.T) {
	repo := NewBusinessRepository(setupDB(t))
	ctx := context.Background()

	b := &domain.Business{Title: "Cafe Aroma", Type: "Food", City: "Tel Aviv", Phone: "03-1234567"}
	require.NoError(t, repo.Create(ctx, b))
	require.NotEmpty(t, b.ID)
	assert.False(t, b.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cafe Aroma", got.Title)
	assert.Nil(t, got.UserID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBusinessRepository_OneBusinessPerOwner(t *testing.T) {
	repo := NewBusinessRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Business{Title: "First", UserID: strPtr("u1")}))
	err := repo.Create(ctx, &domain.Business{Title: "Second", UserID: strPtr("u1")})
	assert.ErrorIs(t, err, ErrDuplicate)

	// admin records have no owner and never collide
	require.NoError(t, repo.Create(ctx, &domain.Business{Title: "Admin A"}))
	require.NoError(t, repo.Create(ctx, &domain.Business{Title: "Admin B"}))
}

func TestBusinessRepository_ListFiltersAndCities(t *testing.T) {
	repo := NewBusinessRepository(setupDB(t))
	ctx := context.Background()

	for _, b := range []domain.Business{
		{Title: "A", Type: "Food", City: "Haifa"},
		{Title: "B", Type: "Retail", City: "Tel Aviv"},
		{Title: "C", Type: "Food", City: "Tel Aviv"},
		{Title: "D", Type: "Food", City: ""},
	} {
		b := b
		require.NoError(t, repo.Create(ctx, &b))
	}

	all, err := repo.List(ctx, BusinessFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	food, err := repo.List(ctx, BusinessFilter{Type: "Food", City: "Tel Aviv"})
	require.NoError(t, err)
	require.Len(t, food, 1)
	assert.Equal(t, "C", food[0].Title)

	cities, err := repo.Cities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Haifa", "Tel Aviv"}, cities)
}

func TestBusinessRepository_Recent(t *testing.T) {
	db := setupDB(t)
	repo := NewBusinessRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"old", "mid", "new"} {
		b := &domain.Business{Title: title, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, repo.Create(ctx, b))
	}

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "new", recent[0].Title)
	assert.Equal(t, "mid", recent[1].Title)
}

func TestBusinessRepository_UpdateAndDeleteByUserID(t *testing.T) {
	db := setupDB(t)
	repo := NewBusinessRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	b := &domain.Business{Title: "Mine", City: "Haifa", UserID: strPtr("owner")}
	require.NoError(t, repo.Create(ctx, b))
	_, err := likes.Toggle(ctx, "fan", b.ID)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateByUserID(ctx, "owner", &domain.Business{Title: "Renamed", City: "Eilat"}))
	got, err := repo.GetByUserID(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "Eilat", got.City)

	assert.ErrorIs(t, repo.UpdateByUserID(ctx, "nobody", &domain.Business{Title: "x"}), ErrNotFound)

	deleted, err := repo.DeleteByUserID(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := likes.Count(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	deleted, err = repo.DeleteByUserID(ctx, "owner")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestLikeRepository_ToggleTwiceRestoresState(t *testing.T) {
	repo := NewLikeRepository(setupDB(t))
	ctx := context.Background()

	_, err := repo.Toggle(ctx, "other", "biz-1")
	require.NoError(t, err)

	before, err := repo.Count(ctx, "biz-1")
	require.NoError(t, err)

	res, err := repo.Toggle(ctx, "u1", "biz-1")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, domain.ActionLiked, res.Action)

	liked, err := repo.Exists(ctx, "u1", "biz-1")
	require.NoError(t, err)
	assert.True(t, liked)

	count, err := repo.Count(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, before+1, count)

	res, err = repo.Toggle(ctx, "u1", "biz-1")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, domain.ActionUnliked, res.Action)

	count, err = repo.Count(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, before, count)
}

func TestLikeRepository_BusinessIDsByUser(t *testing.T) {
	repo := NewLikeRepository(setupDB(t))
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		_, err := repo.Toggle(ctx, "u1", id)
		require.NoError(t, err)
	}

	ids, err := repo.BusinessIDsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestLikeRepository_DeleteOrphans(t *testing.T) {
	db := setupDB(t)
	businesses := NewBusinessRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	b := &domain.Business{Title: "Kept"}
	require.NoError(t, businesses.Create(ctx, b))

	for _, id := range []string{b.ID, "gone-1", "gone-2"} {
		_, err := likes.Toggle(ctx, "u1", id)
		require.NoError(t, err)
	}

	n, err := likes.DeleteOrphans(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	ids, err := likes.BusinessIDsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids)
}

func TestUserRepository_GetByEmailIsCaseInsensitive(t *testing.T) {
	repo := NewUserRepository(setupDB(t))
	ctx := context.Background()

	u := &domain.User{
		UID:          "firebase-1",
		Email:        "Dana@Example.com",
		ProviderData: []domain.ProviderInfo{{ProviderID: "google.com", UID: "g-1"}},
		Metadata:     domain.UserMetadata{CreationTime: "Mon, 01 Jan 2024 00:00:00 GMT"},
	}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByEmail(ctx, "  dana@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "firebase-1", got.UID)
	require.Len(t, got.ProviderData, 1)
	assert.Equal(t, "google.com", got.ProviderData[0].ProviderID)
	assert.Equal(t, "Mon, 01 Jan 2024 00:00:00 GMT", got.Metadata.CreationTime)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Create(ctx, &domain.User{Email: "dana@example.com"}), ErrDuplicate)
}
