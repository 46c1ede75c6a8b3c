package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/quepay/backend/internal/domain"
	"github.com/quepay/backend/internal/repository"
	"github.com/quepay/backend/pkg/auth"
	"github.com/quepay/backend/pkg/hash"
	"github.com/quepay/backend/pkg/logger"
	"github.com/quepay/backend/pkg/otp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const verificationCodeTTL = time.Hour

type userService struct {
	userRepository  repository.Users
	hasher          hash.PasswordHasher
	tokenManager    auth.TokenManager
	codeGenerator   otp.Generator
	emailDispatcher EmailDispatcher

	now func() time.Time
}

func newUserService(userRepository repository.Users,
	hasher hash.PasswordHasher,
	tokenManager auth.TokenManager,
	codeGenerator otp.Generator,
	emailDispatcher EmailDispatcher,
) *userService {
	return &userService{
		userRepository:  userRepository,
		hasher:          hasher,
		tokenManager:    tokenManager,
		codeGenerator:   codeGenerator,
		emailDispatcher: emailDispatcher,
		now:             time.Now,
	}
}

func (s *userService) SignUp(ctx context.Context, input SignUpInput) error {
	if _, err := s.userRepository.GetByEmail(ctx, input.Email); err == nil {
		return ErrUserAlreadyExist
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get user by email failed: %w", err)
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}

	userID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate user id failed: %w", err)
	}

	code, err := s.codeGenerator.RandomCode()
	if err != nil {
		return fmt.Errorf("generate verification code failed: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Username:     input.Username,
		Email:        input.Email,
		Phone:        sql.NullString{String: input.Phone, Valid: input.Phone != ""},
		PasswordHash: passwordHash,
		EmailVerificationCode: sql.NullString{
			String: code,
			Valid:  true,
		},
		EmailVerificationExpires: sql.NullTime{
			Time:  s.now().Add(verificationCodeTTL),
			Valid: true,
		},
	}

	if err := s.userRepository.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return ErrUserAlreadyExist
		}
		return fmt.Errorf("create user failed: %w", err)
	}

	s.dispatchVerificationEmail(ctx, user.Email, code)

	return nil
}

func (s *userService) SignIn(ctx context.Context, email string, password string) (string, error) {
	user, err := s.userRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("get user by email failed: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password failed: %w", err)
	}

	if passwordHash != user.PasswordHash {
		return "", ErrIncorrectPassword
	}

	token, err := s.tokenManager.NewJWT(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("generate access token failed: %w", err)
	}

	return token, nil
}

func (s *userService) VerifyEmail(ctx context.Context, email string, code string) error {
	user, err := s.userRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// same outcome as a wrong code, nothing is leaked about the account
			return ErrInvalidOrExpiredCode
		}
		return fmt.Errorf("get user by email failed: %w", err)
	}

	if !user.HasLiveVerificationCode(s.now()) || user.EmailVerificationCode.String != code {
		return ErrInvalidOrExpiredCode
	}

	if err := s.userRepository.MarkEmailVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("mark email verified failed: %w", err)
	}

	return nil
}

func (s *userService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user by email failed: %w", err)
	}

	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	now := s.now()
	if user.HasLiveVerificationCode(now) {
		remaining := user.EmailVerificationExpires.Time.Sub(now)
		return &ResendThrottledError{
			RetryAfter: int(math.Ceil(remaining.Seconds())),
		}
	}

	if _, err := s.issueCode(ctx, user); err != nil {
		return err
	}

	return nil
}

// issueCode stores a fresh code with a one hour expiry and dispatches the
// verification email. The caller must have ruled out a live code first.
func (s *userService) issueCode(ctx context.Context, user *domain.User) (string, error) {
	code, err := s.codeGenerator.RandomCode()
	if err != nil {
		return "", fmt.Errorf("generate verification code failed: %w", err)
	}

	expires := s.now().Add(verificationCodeTTL)

	if err := s.userRepository.SetVerificationCode(ctx, user.ID, code, expires); err != nil {
		return "", fmt.Errorf("set verification code failed: %w", err)
	}

	s.dispatchVerificationEmail(ctx, user.Email, code)

	return code, nil
}

// dispatchVerificationEmail is fire-and-forget: a delivery problem is logged
// and retried by the queue, it never fails the calling operation and never
// rolls back the persisted code.
func (s *userService) dispatchVerificationEmail(ctx context.Context, email string, code string) {
	if err := s.emailDispatcher.DispatchVerificationEmail(ctx, email, code); err != nil {
		logger.Error("dispatch verification email failed",
			zap.String("email", email),
			zap.Error(err),
		)
	}
}
