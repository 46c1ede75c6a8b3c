package repository

import (
	"context"
	"time"

	"github.com/quepay/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Users Users
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users: newUserRepository(db),
	}
}

type Users interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetVerificationCode(ctx context.Context, userID uuid.UUID, code string, expires time.Time) error
	MarkEmailVerified(ctx context.Context, userID uuid.UUID) error
}
