package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quepay/backend/internal/db"
	"github.com/quepay/backend/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

type userRepository struct {
	db *sqlx.DB
}

func newUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const op = "repository.user.Create"

	const query = `
	INSERT INTO user
	(id, username, email, phone, password_hash, email_verification_code, email_verification_expires)
	VALUES (uuid_to_bin(?), ?, ?, ?, ?, ?, ?);
	`

	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.EmailVerificationCode,
		user.EmailVerificationExpires,
	)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert user failed: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows != 1 {
		return fmt.Errorf("%s: expected 1 row affected, got %d", op, rows)
	}

	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "repository.user.GetByEmail"

	const query = `
	SELECT id, username, email, phone, password_hash, email_verified,
	       email_verification_code, email_verification_expires,
	       created_at, updated_at, deleted_at
	FROM user WHERE email = ? AND deleted_at IS NULL;
	`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select user by email failed: %w", op, err)
	}

	return &user, nil
}

func (r *userRepository) SetVerificationCode(ctx context.Context, userID uuid.UUID, code string, expires time.Time) error {
	const op = "repository.user.SetVerificationCode"

	const query = `
	UPDATE user
	SET email_verification_code = ?, email_verification_expires = ?
	WHERE id = uuid_to_bin(?);
	`

	res, err := r.db.ExecContext(ctx, query, code, expires, userID)
	if err != nil {
		return fmt.Errorf("%s: update verification code failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *userRepository) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	const op = "repository.user.MarkEmailVerified"

	const query = `
	UPDATE user
	SET email_verified = true, email_verification_code = NULL, email_verification_expires = NULL
	WHERE id = uuid_to_bin(?);
	`

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("%s: update email verified failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}
