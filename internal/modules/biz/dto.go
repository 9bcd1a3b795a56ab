package biz

import (
	"strings"

	"bizdir/internal/csvio"
	"bizdir/internal/domain"
)

// BusinessData is the editable part of a business as sent by the forms.
// Nil fields are left untouched on update.
type BusinessData struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Type        *string `json:"type,omitempty" validate:"omitempty,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Email       *string `json:"email,omitempty" validate:"omitempty,max=320"`
	Website     *string `json:"website,omitempty" validate:"omitempty,max=500"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
}

// HasTitle reports whether a non-blank title was supplied.
func (d *BusinessData) HasTitle() bool {
	return d != nil && d.Title != nil && strings.TrimSpace(*d.Title) != ""
}

// Apply copies the supplied fields onto b.
func (d *BusinessData) Apply(b *domain.Business) {
	if d == nil {
		return
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&b.Title, d.Title)
	set(&b.Type, d.Type)
	set(&b.Phone, d.Phone)
	set(&b.City, d.City)
	set(&b.Address, d.Address)
	set(&b.Email, d.Email)
	set(&b.Website, d.Website)
	set(&b.Description, d.Description)
}

type CreateAdminRequest struct {
	BusinessData *BusinessData `json:"businessData" validate:"required"`
}

type SaveMyBusinessRequest struct {
	UserID       string        `json:"userId" validate:"required"`
	BusinessData *BusinessData `json:"businessData" validate:"required"`
}

// ImportResponse is the body of a processed CSV upload.
type ImportResponse struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	Imported int                 `json:"imported"`
	Failed   int                 `json:"failed"`
	Errors   []csvio.RecordError `json:"errors"`
}
