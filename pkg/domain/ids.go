// Package domain holds the typed identifiers shared across auth components.
package domain

import (
	"github.com/google/uuid"

	dErrors "authgate/pkg/domain-errors"
)

// UserID identifies a local user account. It is the subject of every token.
type UserID uuid.UUID

func NewUserID() UserID { return UserID(uuid.New()) }

func (id UserID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseUserID parses a user id at a trust boundary such as a token subject.
// Empty, malformed and nil UUIDs are rejected with CodeInvalidInput.
func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "user ID is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid user ID")
	}
	if u == uuid.Nil {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "user ID cannot be nil")
	}
	return UserID(u), nil
}
