package csvio

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bizdir/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBusinesses(t *testing.T) {
	owner := "uid-1"
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	businesses := []domain.Business{
		{
			ID:        "b1",
			UserID:    &owner,
			Title:     "Book, Worm",
			Type:      "Retail",
			City:      "Jerusalem",
			Phone:     "02-1111111",
			CreatedAt: created,
			UpdatedAt: created.Add(time.Hour),
		},
		{ID: "b2", Title: "Admin Cafe"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBusinesses(&buf, businesses))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "_id,userId,title,type,city,phone,address,description,website,email,createdAt,updatedAt", lines[0])
	assert.Equal(t, `b1,uid-1,"Book, Worm",Retail,Jerusalem,02-1111111,,,,,2024-03-01T10:30:00.000Z,2024-03-01T11:30:00.000Z`, lines[1])
	assert.Equal(t, "b2,,Admin Cafe,,,,,,,,,", lines[2])
}

func TestWriteUsers(t *testing.T) {
	users := []domain.User{
		{
			ID:            "u1",
			UID:           "firebase-1",
			Email:         "dana@example.com",
			DisplayName:   "Dana",
			EmailVerified: true,
			ProviderData: []domain.ProviderInfo{
				{ProviderID: "google.com", UID: "g-1"},
				{ProviderID: "password", UID: "dana@example.com"},
			},
			Metadata: domain.UserMetadata{CreationTime: "c", LastSignInTime: "l"},
		},
		{ID: "u2", Email: "no-provider@example.com"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteUsers(&buf, users))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(UserColumns, ","), lines[0])
	assert.Equal(t, "u1,firebase-1,dana@example.com,Dana,,true,,google.com,g-1,c,l,,", lines[1])
	assert.Equal(t, "u2,,no-provider@example.com,,,false,,,,,,,", lines[2])
}

func TestWrite_EmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteBusinesses(&buf, nil), ErrNoRecords)
	assert.ErrorIs(t, WriteUsers(&buf, []domain.User{}), ErrNoRecords)
	assert.Zero(t, buf.Len())
}

func TestExportThenImportRoundTrip(t *testing.T) {
	businesses := []domain.Business{
		{ID: "1", Title: "Cafe Aroma", Phone: "03-1234567", City: "Tel Aviv", Type: "Food"},
		{ID: "2", Title: `The "Best" Bagels`, Phone: "", City: "Jerusalem, Old City", Type: "Bakery"},
		{ID: "3", Title: "Night Owl", City: "Haifa", Type: "Bar", Description: "Open late\nClosed Mondays", Address: "1 Port St\r\nHaifa"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBusinesses(&buf, businesses))

	records, err := Parse(buf.String())
	require.NoError(t, err)
	require.Len(t, records, len(businesses))
	for i, b := range businesses {
		assert.Equal(t, Record{Title: b.Title, Phone: b.Phone, City: b.City, Type: b.Type}, records[i])
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "businesses-export-2024-12-31.csv", ExportFilename("businesses", now))
}

func TestImportRecords_PartialSuccess(t *testing.T) {
	records := []Record{{Title: "ok-1"}, {Title: "bad"}, {Title: "ok-2"}}

	var seen []string
	result := ImportRecords(context.Background(), records, func(_ context.Context, r Record) error {
		seen = append(seen, r.Title)
		if r.Title == "bad" {
			return errors.New("store unavailable")
		}
		return nil
	})

	assert.Equal(t, []string{"ok-1", "bad", "ok-2"}, seen)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []RecordError{{Business: Record{Title: "bad"}, Error: "store unavailable"}}, result.Errors)
}
