package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"bizdir/internal/domain"
)

// ErrNoRecords is returned instead of writing a header-only file.
var ErrNoRecords = errors.New("no records to export")

var BusinessColumns = []string{
	"_id",
	"userId",
	"title",
	"type",
	"city",
	"phone",
	"address",
	"description",
	"website",
	"email",
	"createdAt",
	"updatedAt",
}

var UserColumns = []string{
	"_id",
	"uid",
	"email",
	"displayName",
	"photoURL",
	"emailVerified",
	"phoneNumber",
	"providerId",
	"providerUid",
	"creationTime",
	"lastSignInTime",
	"createdAt",
	"updatedAt",
}

const isoMillis = "2006-01-02T15:04:05.000Z"

// FormatTime renders t the way browsers print Date.toISOString; the zero
// time renders empty.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoMillis)
}

// BusinessRow flattens b in BusinessColumns order.
func BusinessRow(b domain.Business) []string {
	return []string{
		b.ID,
		b.OwnerID(),
		b.Title,
		b.Type,
		b.City,
		b.Phone,
		b.Address,
		b.Description,
		b.Website,
		b.Email,
		FormatTime(b.CreatedAt),
		FormatTime(b.UpdatedAt),
	}
}

// UserRow flattens u in UserColumns order. Only the first linked provider
// is exported.
func UserRow(u domain.User) []string {
	verified := "false"
	if u.EmailVerified {
		verified = "true"
	}

	var providerID, providerUID string
	if p, ok := u.PrimaryProvider(); ok {
		providerID, providerUID = p.ProviderID, p.UID
	}

	return []string{
		u.ID,
		u.UID,
		u.Email,
		u.DisplayName,
		u.PhotoURL,
		verified,
		u.PhoneNumber,
		providerID,
		providerUID,
		u.Metadata.CreationTime,
		u.Metadata.LastSignInTime,
		FormatTime(u.CreatedAt),
		FormatTime(u.UpdatedAt),
	}
}

func WriteBusinesses(w io.Writer, businesses []domain.Business) error {
	if len(businesses) == 0 {
		return ErrNoRecords
	}
	rows := make([][]string, 0, len(businesses))
	for _, b := range businesses {
		rows = append(rows, BusinessRow(b))
	}
	return writeAll(w, BusinessColumns, rows)
}

func WriteUsers(w io.Writer, users []domain.User) error {
	if len(users) == 0 {
		return ErrNoRecords
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow(u))
	}
	return writeAll(w, UserColumns, rows)
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// ExportFilename builds the date-stamped attachment name, e.g.
// "businesses-export-2024-03-01.csv".
func ExportFilename(kind string, now time.Time) string {
	return fmt.Sprintf("%s-export-%s.csv", kind, now.UTC().Format("2006-01-02"))
}
