package domain

import "time"

// Business is a directory listing. UserID is nil for records created by an
// administrator (single create or CSV import); otherwise it holds the owner's
// external auth subject id and is unique across businesses.
type Business struct {
	ID          string    `json:"_id" gorm:"primaryKey;size:36"`
	UserID      *string   `json:"userId,omitempty" gorm:"size:128;uniqueIndex"`
	Title       string    `json:"title" gorm:"not null"`
	Type        string    `json:"type" gorm:"index"`
	Phone       string    `json:"phone"`
	City        string    `json:"city" gorm:"index"`
	Address     string    `json:"address,omitempty"`
	Email       string    `json:"email,omitempty"`
	Website     string    `json:"website,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Business) TableName() string { return "businesses" }

// OwnerID returns the owning user id or "" for admin-created records.
func (b *Business) OwnerID() string {
	if b.UserID == nil {
		return ""
	}
	return *b.UserID
}
