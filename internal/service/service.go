package service

import (
	"context"

	"github.com/quepay/backend/internal/repository"
	"github.com/quepay/backend/pkg/auth"
	"github.com/quepay/backend/pkg/hash"
	"github.com/quepay/backend/pkg/otp"
)

type Services struct {
	Users Users
}

// EmailDispatcher posts a verification email for asynchronous delivery. The
// queue-backed implementation lives in internal/queue/client.
type EmailDispatcher interface {
	DispatchVerificationEmail(ctx context.Context, email string, verificationCode string) error
}

type Deps struct {
	Hasher          hash.PasswordHasher
	TokenManager    auth.TokenManager
	CodeGenerator   otp.Generator
	EmailDispatcher EmailDispatcher
	Repos           *repository.Repositories
}

func NewServices(deps Deps) *Services {
	return &Services{
		Users: newUserService(deps.Repos.Users,
			deps.Hasher,
			deps.TokenManager,
			deps.CodeGenerator,
			deps.EmailDispatcher,
		),
	}
}

type SignUpInput struct {
	Username string
	Email    string
	Password string
	Phone    string
}

type Users interface {
	SignUp(ctx context.Context, input SignUpInput) error
	SignIn(ctx context.Context, email string, password string) (string, error)
	VerifyEmail(ctx context.Context, email string, code string) error
	ResendVerification(ctx context.Context, email string) error
}
