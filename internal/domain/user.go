package domain

import "time"

// User mirrors the profile handed over by the external identity provider.
// It is created lazily the first time a signed-in email is checked.
type User struct {
	ID            string         `json:"_id" gorm:"primaryKey;size:36"`
	UID           string         `json:"uid" gorm:"size:128;index"`
	Email         string         `json:"email" gorm:"size:320;uniqueIndex;not null"`
	DisplayName   string         `json:"displayName"`
	PhotoURL      string         `json:"photoURL"`
	EmailVerified bool           `json:"emailVerified"`
	PhoneNumber   string         `json:"phoneNumber"`
	ProviderData  []ProviderInfo `json:"providerData" gorm:"serializer:json"`
	Metadata      UserMetadata   `json:"metadata" gorm:"embedded;embeddedPrefix:metadata_"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// ProviderInfo is one linked sign-in provider.
type ProviderInfo struct {
	ProviderID  string `json:"providerId"`
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// UserMetadata keeps the provider-reported timestamps verbatim.
type UserMetadata struct {
	CreationTime   string `json:"creationTime"`
	LastSignInTime string `json:"lastSignInTime"`
}

// PrimaryProvider returns the first linked provider, if any.
func (u *User) PrimaryProvider() (ProviderInfo, bool) {
	if len(u.ProviderData) == 0 {
		return ProviderInfo{}, false
	}
	return u.ProviderData[0], true
}
