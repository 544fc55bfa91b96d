package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "authgate/pkg/domain"
	"authgate/pkg/platform/sentinel"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

// Schema creates the users table. EnsureSchema runs it at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	given_name    TEXT NOT NULL DEFAULT '',
	family_name   TEXT NOT NULL DEFAULT '',
	external_id   TEXT UNIQUE,
	password_hash TEXT,
	created_at    TIMESTAMPTZ NOT NULL
)`

const userColumns = `id, email, given_name, family_name, external_id, password_hash, created_at`

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	return scanUser(row, "find user by id")
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, NormalizeEmail(email))
	return scanUser(row, "find user by email")
}

func (s *PostgresStore) FindByExternalID(ctx context.Context, externalID string) (*User, error) {
	if externalID == "" {
		return nil, sentinel.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalID)
	return scanUser(row, "find user by external id")
}

func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	u.Email = NormalizeEmail(u.Email)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(u.ID), u.Email, u.GivenName, u.FamilyName,
		nullString(u.ExternalID), nullString(u.PasswordHash), u.CreatedAt)
	if err != nil {
		return translate("create user", err)
	}
	return nil
}

func (s *PostgresStore) LinkExternalID(ctx context.Context, userID id.UserID, externalID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET external_id = $2 WHERE id = $1`, uuid.UUID(userID), externalID)
	if err != nil {
		return translate("link external id", err)
	}
	return requireRow(res, "link external id")
}

func (s *PostgresStore) UpdateName(ctx context.Context, userID id.UserID, givenName, familyName string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET given_name = $2, family_name = $3 WHERE id = $1`,
		uuid.UUID(userID), givenName, familyName)
	if err != nil {
		return translate("update user name", err)
	}
	return requireRow(res, "update user name")
}

func scanUser(row *sql.Row, op string) (*User, error) {
	var (
		u            User
		rawID        uuid.UUID
		externalID   sql.NullString
		passwordHash sql.NullString
	)
	err := row.Scan(&rawID, &u.Email, &u.GivenName, &u.FamilyName, &externalID, &passwordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.ID = id.UserID(rawID)
	u.ExternalID = externalID.String
	u.PasswordHash = passwordHash.String
	return &u, nil
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func translate(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
