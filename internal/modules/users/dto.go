package users

import "bizdir/internal/domain"

// CheckRequest looks a user up by email and, when UserData is present,
// creates the user on first sight.
type CheckRequest struct {
	Email    string    `json:"email" validate:"required,max=320"`
	UserData *UserData `json:"userData"`
}

// UserData is the profile reported by the identity provider after sign-in.
type UserData struct {
	UID           string                `json:"uid"`
	Email         string                `json:"email"`
	DisplayName   string                `json:"displayName"`
	PhotoURL      string                `json:"photoURL"`
	EmailVerified bool                  `json:"emailVerified"`
	PhoneNumber   string                `json:"phoneNumber"`
	ProviderData  []domain.ProviderInfo `json:"providerData"`
	Metadata      *domain.UserMetadata  `json:"metadata"`
}

type CheckResult struct {
	Exists  bool         `json:"exists"`
	Created bool         `json:"created"`
	User    *domain.User `json:"user"`
}
