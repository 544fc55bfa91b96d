package user

import (
	"strings"
	"time"

	id "authgate/pkg/domain"
)

// User is a local account. ExternalID holds the identity provider subject
// once the account has been linked; PasswordHash is empty for accounts that
// only ever signed in through a provider.
type User struct {
	ID           id.UserID
	Email        string
	GivenName    string
	FamilyName   string
	ExternalID   string
	PasswordHash string
	CreatedAt    time.Time
}

// FullName is the display name carried in access tokens.
func (u *User) FullName() string {
	return strings.TrimSpace(u.GivenName + " " + u.FamilyName)
}

// HasPassword reports whether the account can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Summary is the client-facing view of a user. It never carries the hash.
type Summary struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	Name       string    `json:"name"`
	Linked     bool      `json:"linked"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) Summary() Summary {
	return Summary{
		ID:         u.ID.String(),
		Email:      u.Email,
		GivenName:  u.GivenName,
		FamilyName: u.FamilyName,
		Name:       u.FullName(),
		Linked:     u.ExternalID != "",
		CreatedAt:  u.CreatedAt,
	}
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
