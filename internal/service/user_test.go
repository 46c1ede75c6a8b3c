package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quepay/backend/internal/config"
	"github.com/quepay/backend/internal/domain"
	"github.com/quepay/backend/pkg/auth"
	"github.com/quepay/backend/pkg/hash"
	"github.com/quepay/backend/pkg/otp"
)

// --- fakes ---

type fakeUserRepo struct {
	byEmail map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return domain.ErrDuplicateEntry
	}
	copied := *user
	f.byEmail[user.Email] = &copied
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) SetVerificationCode(_ context.Context, userID uuid.UUID, code string, expires time.Time) error {
	for _, user := range f.byEmail {
		if user.ID == userID {
			user.EmailVerificationCode.String = code
			user.EmailVerificationCode.Valid = true
			user.EmailVerificationExpires.Time = expires
			user.EmailVerificationExpires.Valid = true
			return nil
		}
	}
	return domain.ErrNoRowsAffected
}

func (f *fakeUserRepo) MarkEmailVerified(_ context.Context, userID uuid.UUID) error {
	for _, user := range f.byEmail {
		if user.ID == userID {
			user.EmailVerified = true
			user.EmailVerificationCode.String = ""
			user.EmailVerificationCode.Valid = false
			user.EmailVerificationExpires.Time = time.Time{}
			user.EmailVerificationExpires.Valid = false
			return nil
		}
	}
	return domain.ErrNoRowsAffected
}

type fakeDispatcher struct {
	emails []string
	codes  []string
	err    error
}

func (f *fakeDispatcher) DispatchVerificationEmail(_ context.Context, email string, code string) error {
	if f.err != nil {
		return f.err
	}
	f.emails = append(f.emails, email)
	f.codes = append(f.codes, code)
	return nil
}

func newTestUserService(t *testing.T, repo *fakeUserRepo, dispatcher *fakeDispatcher, now time.Time) *userService {
	t.Helper()

	tokenManager, err := auth.NewManager(config.JWTConfig{
		AccessTokenTTL: time.Hour,
		SigningKey:     "test-signing-key",
	})
	require.NoError(t, err)

	s := newUserService(
		repo,
		hash.NewSHA256Hasher("test-salt"),
		tokenManager,
		otp.NewCodeGenerator(),
		dispatcher,
	)
	s.now = func() time.Time { return now }
	return s
}

func signUp(t *testing.T, s *userService, email string) {
	t.Helper()
	require.NoError(t, s.SignUp(context.Background(), SignUpInput{
		Username: "tester",
		Email:    email,
		Password: "secret-password",
	}))
}

var codeRegexp = regexp.MustCompile(`^[0-9]{6}$`)

// --- signup ---

func TestSignUp_PersistsCodeAndExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo()
	dispatcher := &fakeDispatcher{}
	s := newTestUserService(t, repo, dispatcher, now)

	signUp(t, s, "a@x.com")

	user, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)

	assert.False(t, user.EmailVerified)
	assert.Regexp(t, codeRegexp, user.EmailVerificationCode.String)
	assert.True(t, user.EmailVerificationExpires.Valid)
	assert.Equal(t, now.Add(time.Hour), user.EmailVerificationExpires.Time)
	assert.NotEqual(t, "secret-password", user.PasswordHash)
}

func TestSignUp_DispatchesEmailWithIssuedCode(t *testing.T) {
	now := time.Now()
	repo := newFakeUserRepo()
	dispatcher := &fakeDispatcher{}
	s := newTestUserService(t, repo, dispatcher, now)

	signUp(t, s, "a@x.com")

	user, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)

	require.Len(t, dispatcher.emails, 1)
	assert.Equal(t, "a@x.com", dispatcher.emails[0])
	assert.Equal(t, user.EmailVerificationCode.String, dispatcher.codes[0])
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	now := time.Now()
	repo := newFakeUserRepo()
	s := newTestUserService(t, repo, &fakeDispatcher{}, now)

	signUp(t, s, "a@x.com")

	err := s.SignUp(context.Background(), SignUpInput{
		Username: "tester2",
		Email:    "a@x.com",
		Password: "another-password",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExist)
}

func TestSignUp_DispatchFailureDoesNotFailSignup(t *testing.T) {
	now := time.Now()
	repo := newFakeUserRepo()
	dispatcher := &fakeDispatcher{err: errors.New("broker down")}
	s := newTestUserService(t, repo, dispatcher, now)

	signUp(t, s, "a@x.com")

	// user and code were persisted regardless of the delivery failure
	user, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, user.EmailVerificationCode.Valid)
}

// --- login ---

func TestSignIn(t *testing.T) {
	now := time.Now()
	repo := newFakeUserRepo()
	s := newTestUserService(t, repo, &fakeDispatcher{}, now)
	signUp(t, s, "a@x.com")

	t.Run("success returns parseable token", func(t *testing.T) {
		token, err := s.SignIn(context.Background(), "a@x.com", "secret-password")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := s.tokenManager.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "tester", claims.Username)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.SignIn(context.Background(), "a@x.com", "wrong-password")
		assert.ErrorIs(t, err, ErrIncorrectPassword)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.SignIn(context.Background(), "b@x.com", "secret-password")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

// --- verify ---

func TestVerifyEmail_WrongCodeAndExpiredCodeAreIndistinguishable(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo()
	s := newTestUserService(t, repo, &fakeDispatcher{}, now)
	signUp(t, s, "a@x.com")

	user, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	code := user.EmailVerificationCode.String

	wrongCode := "000000"
	if code == wrongCode {
		wrongCode = "000001"
	}

	wrongErr := s.VerifyEmail(context.Background(), "a@x.com", wrongCode)
	assert.ErrorIs(t, wrongErr, ErrInvalidOrExpiredCode)

	// advance past expiry, correct code now fails with the exact same error
	s.now = func() time.Time { return now.Add(time.Hour + time.Second) }
	expiredErr := s.VerifyEmail(context.Background(), "a@x.com", code)
	assert.ErrorIs(t, expiredErr, ErrInvalidOrExpiredCode)
	assert.Equal(t, wrongErr, expiredErr)

	// no mutation happened on either failure
	user, err = repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.False(t, user.EmailVerified)
	assert.Equal(t, code, user.EmailVerificationCode.String)
}

func TestVerifyEmail_CodeExactlyAtExpiryFails(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo()
	s := newTestUserService(t, repo, &fakeDispatcher{}, now)
	signUp(t, s, "a@x.com")

	user, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)

	// valid strictly before expiry only
	s.now = func() time.Time { return now.Add(time.Hour) }
	err = s.VerifyEmail(context.Background(), "a@x.com", user.EmailVerificationCode.String)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestVerifyEmail_SuccessClearsCodeAndSecondAttemptFails(t *testing.T) {
	now := time.Now()
	repo := newFakeUserRepo()
	s := newTestUserService(t, repo, &fakeDispatcher{}, now)
	signUp(t, s, "a@x.com")

	user, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	code := user.EmailVerificationCode.String

	require.NoError(t, s.VerifyEmail(context.Background(), "a@x.com", code))

	user, err = repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)
	assert.False(t, user.EmailVerificationCode.Valid)
	assert.False(t, user.EmailVerificationExpires.Valid)

	err = s.VerifyEmail(context.Background(), "a@x.com", code)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestVerifyEmail_UnknownUser(t *testing.T) {
	s := newTestUserService(t, newFakeUserRepo(), &fakeDispatcher{}, time.Now())

	err := s.VerifyEmail(context.Background(), "nobody@x.com", "123456")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

// --- resend ---

func TestResendVerification_AlreadyVerified(t *testing.T) {
	now := time.Now()
	repo := newFakeUserRepo()
	s := newTestUserService(t, repo, &fakeDispatcher{}, now)
	signUp(t, s, "a@x.com")

	user, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NoError(t, s.VerifyEmail(context.Background(), "a@x.com", user.EmailVerificationCode.String))

	err = s.ResendVerification(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestResendVerification_ThrottledWithCeilSeconds(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo()
	s := newTestUserService(t, repo, &fakeDispatcher{}, now)
	signUp(t, s, "a@x.com")

	// 100ms into the window: 3599.9s remain, reported as 3600
	s.now = func() time.Time { return now.Add(100 * time.Millisecond) }
	err := s.ResendVerification(context.Background(), "a@x.com")

	var throttled *ResendThrottledError
	require.ErrorAs(t, err, &throttled)
	assert.Equal(t, 3600, throttled.RetryAfter)

	// half a second before expiry rounds up to 1
	s.now = func() time.Time { return now.Add(time.Hour).Add(-500 * time.Millisecond) }
	err = s.ResendVerification(context.Background(), "a@x.com")
	require.ErrorAs(t, err, &throttled)
	assert.Equal(t, 1, throttled.RetryAfter)
}

func TestResendVerification_AfterExpiryIssuesFreshCode(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo()
	dispatcher := &fakeDispatcher{}
	s := newTestUserService(t, repo, dispatcher, now)
	signUp(t, s, "a@x.com")

	first, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	firstExpiry := first.EmailVerificationExpires.Time

	later := now.Add(2 * time.Hour)
	s.now = func() time.Time { return later }
	require.NoError(t, s.ResendVerification(context.Background(), "a@x.com"))

	second, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Regexp(t, codeRegexp, second.EmailVerificationCode.String)
	assert.Equal(t, later.Add(time.Hour), second.EmailVerificationExpires.Time)
	assert.NotEqual(t, firstExpiry, second.EmailVerificationExpires.Time)

	require.Len(t, dispatcher.codes, 2)
	assert.Equal(t, second.EmailVerificationCode.String, dispatcher.codes[1])
}

func TestResendVerification_UnknownUser(t *testing.T) {
	s := newTestUserService(t, newFakeUserRepo(), &fakeDispatcher{}, time.Now())

	err := s.ResendVerification(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
