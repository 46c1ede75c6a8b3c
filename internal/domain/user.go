package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	Username     string         `db:"username" json:"username"`
	Email        string         `db:"email" json:"email"`
	Phone        sql.NullString `db:"phone" json:"phone"`
	PasswordHash string         `db:"password_hash" json:"-"`

	EmailVerified            bool           `db:"email_verified" json:"email_verified"`
	EmailVerificationCode    sql.NullString `db:"email_verification_code" json:"-"`
	EmailVerificationExpires sql.NullTime   `db:"email_verification_expires" json:"-"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// HasLiveVerificationCode reports whether an issued code is still usable at
// the given moment. A code is valid only strictly before its expiry.
func (u *User) HasLiveVerificationCode(now time.Time) bool {
	return u.EmailVerificationCode.Valid &&
		u.EmailVerificationCode.String != "" &&
		u.EmailVerificationExpires.Valid &&
		now.Before(u.EmailVerificationExpires.Time)
}
