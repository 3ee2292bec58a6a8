// Package users implements the PostgreSQL credential store.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/dmitrijs2005/secondmind/internal/dbx"
	"github.com/dmitrijs2005/secondmind/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateWithEmail inserts a pending password identity. A row that already
// holds the email is left untouched and common.ErrorAlreadyExists returned.
func (r *PostgresRepository) CreateWithEmail(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, password_hash, name, verification_token, verification_expires)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Name, user.VerificationToken, user.VerificationExpires,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const selectUser = `SELECT id, email, password_hash, name, google_id, is_verified, created_at, updated_at FROM users`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *PostgresRepository) GetByFederatedSubject(ctx context.Context, subject string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE google_id = $1`, subject)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	var (
		user                        models.User
		email, hash, name, googleID sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &email, &hash, &name, &googleID, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Email = email.String
	user.PasswordHash = hash.String
	user.Name = name.String
	user.GoogleID = googleID.String

	return &user, nil
}

// UpsertByFederatedSubject provisions a verified identity for a Google
// subject, or refreshes the name of the existing one.
func (r *PostgresRepository) UpsertByFederatedSubject(ctx context.Context, user *models.User, now time.Time) (*models.User, error) {
	query :=
		`INSERT INTO users (google_id, email, name, is_verified)
		 VALUES ($1, $2, $3, TRUE)
		 ON CONFLICT (google_id)
		 DO UPDATE SET name = EXCLUDED.name, updated_at = $4
		 RETURNING id, email, name
		 `

	var email, name sql.NullString
	err := r.db.QueryRowContext(ctx, query,
		user.GoogleID, nullString(user.Email), nullString(user.Name), now,
	).Scan(&user.ID, &email, &name)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Email = email.String
	user.Name = name.String
	user.IsVerified = true

	return user, nil
}

// RedeemVerificationToken verifies the identity holding a live token and
// clears the token in the same statement, so a token works at most once.
func (r *PostgresRepository) RedeemVerificationToken(ctx context.Context, token string, now time.Time) (string, error) {
	query :=
		`UPDATE users
		 SET is_verified = TRUE, verification_token = NULL, verification_expires = NULL, updated_at = $2
		 WHERE verification_token = $1 AND verification_expires > $2
		 RETURNING id
		 `

	var id string
	err := r.db.QueryRowContext(ctx, query, token, now).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) SetVerified(ctx context.Context, id string, now time.Time) error {
	query :=
		`UPDATE users
		 SET is_verified = TRUE, verification_token = NULL, verification_expires = NULL, updated_at = $2
		 WHERE id = $1
		 `
	return r.execOne(ctx, query, id, now)
}

func (r *PostgresRepository) SetPasswordHash(ctx context.Context, id, hash string, now time.Time) error {
	query :=
		`UPDATE users SET password_hash = $2, updated_at = $3
		 WHERE id = $1
		 `
	return r.execOne(ctx, query, id, hash, now)
}

// UpdateProfile sets the name and, when email is not nil, the email.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, name string, email *string, now time.Time) (*models.User, error) {
	query :=
		`UPDATE users SET name = $2, email = COALESCE($3, email), updated_at = $4
		 WHERE id = $1
		 RETURNING id, email, name
		 `

	var emailArg any
	if email != nil {
		emailArg = *email
	}

	var (
		user         models.User
		newEmail, nm sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id, name, emailArg, now).Scan(&user.ID, &newEmail, &nm)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrorNotFound
		case isUniqueViolation(err):
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Email = newEmail.String
	user.Name = nm.String

	return &user, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
