package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"medware/m/domain"
	"medware/m/internal/security"
	"medware/m/internal/store"
)

var (
	// ErrInvalidCredentials covers unknown username, inactive account and
	// wrong password alike; callers cannot tell which, only the log can.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked rejects a login while the lockout window is open,
	// regardless of password correctness.
	ErrAccountLocked = errors.New("account temporarily locked")
)

// Service authenticates users and drives the lockout state machine:
// Active -> (5 consecutive failures) -> Locked -> (expiry or success) -> Active.
type Service struct {
	users       *store.UserStore
	hasher      *security.Hasher
	maxAttempts int64
	lockout     time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

func NewService(users *store.UserStore, hasher *security.Hasher, maxAttempts int64, lockout time.Duration, log zerolog.Logger) *Service {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if lockout <= 0 {
		lockout = 15 * time.Minute
	}
	return &Service{
		users:       users,
		hasher:      hasher,
		maxAttempts: maxAttempts,
		lockout:     lockout,
		log:         log,
		now:         time.Now,
	}
}

// Authenticate verifies the password for an active account and returns the
// user on success. Success resets the failure counter, clears any lockout
// and stamps last_login; failure increments the counter and locks the
// account for the configured window once the threshold is reached.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Warn().Str("username", username).Msg("authentication failed: user not found")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if s.isLocked(user) {
		s.log.Warn().Str("username", username).Msg("authentication failed: account locked")
		return nil, ErrAccountLocked
	}

	if !s.hasher.Verify(password, user.PasswordHash, user.Salt) {
		attempts := user.FailedLoginAttempts + 1
		var lockedUntil time.Time
		if attempts >= s.maxAttempts {
			lockedUntil = s.now().Add(s.lockout)
		}
		if err := s.users.RecordLoginFailure(ctx, user.ID, attempts, lockedUntil); err != nil {
			return nil, err
		}
		s.log.Warn().Str("username", username).Int64("failed_attempts", attempts).
			Msg("authentication failed: invalid password")
		return nil, ErrInvalidCredentials
	}

	if err := s.users.RecordLoginSuccess(ctx, user.ID); err != nil {
		return nil, err
	}
	s.log.Info().Str("username", username).Msg("user authenticated")
	user.FailedLoginAttempts = 0
	user.AccountLockedUntil = nil
	return user, nil
}

// isLocked reports whether the stored lockout timestamp is still in the
// future. An expired or unparseable timestamp does not lock.
func (s *Service) isLocked(user *domain.User) bool {
	if user.AccountLockedUntil == nil || *user.AccountLockedUntil == "" {
		return false
	}
	until, err := time.Parse(time.RFC3339, *user.AccountLockedUntil)
	if err != nil {
		s.log.Warn().Str("username", user.Username).
			Str("account_locked_until", *user.AccountLockedUntil).
			Msg("unparseable lockout timestamp, treating as unlocked")
		return false
	}
	return s.now().Before(until)
}

// ChangePassword replaces the caller's own password.
func (s *Service) ChangePassword(ctx context.Context, userID int64, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", store.ErrValidation)
	}
	return s.users.Update(ctx, userID, domain.UserPatch{Password: &newPassword}, userID)
}
