package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/datadrop/datadrop/internal/shared"
)

// Service implements the login / password-setup state machine.
type Service struct {
	repo     Repository
	tokens   *TokenManager
	audit    shared.ActivityRecorder
	throttle *Throttle
	now      func() time.Time
}

// NewService constructs a new Service. throttle may be nil.
func NewService(repo Repository, tokens *TokenManager, audit shared.ActivityRecorder, throttle *Throttle) *Service {
	return &Service{repo: repo, tokens: tokens, audit: audit, throttle: throttle, now: time.Now}
}

// LoginResult carries the outcome of a successful credential check.
// During first login no bearer token is issued; the caller is expected
// to complete password setup instead.
type LoginResult struct {
	User               *User
	Token              string
	NeedsPasswordSetup bool
}

// Login validates credentials and advances the session state machine.
// Unknown emails and wrong passwords surface as the same
// ErrInvalidCredentials; a deactivated account is distinguished and
// audited separately, but can never obtain a token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if s.throttle.Blocked(ctx, email) {
		return nil, shared.ErrTooManyAttempts
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			_ = s.throttle.RecordFailure(ctx, email)
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		if err := s.audit.Record(ctx, shared.ActivityEntry{
			Actor:   user.Email,
			Action:  "Login failed",
			Outcome: shared.OutcomeError,
			Detail:  "Account is inactive",
		}); err != nil {
			return nil, err
		}
		_ = s.throttle.RecordFailure(ctx, email)
		return nil, shared.ErrAccountInactive
	}

	verified := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil

	if user.FirstLogin {
		// Temporary-password check. No token, no last-login update and
		// no success audit entry in this branch.
		if !verified {
			_ = s.throttle.RecordFailure(ctx, email)
			return nil, shared.ErrInvalidCredentials
		}
		_ = s.throttle.Reset(ctx, email)
		return &LoginResult{User: user, NeedsPasswordSetup: true}, nil
	}

	if !verified {
		if err := s.audit.Record(ctx, shared.ActivityEntry{
			Actor:   user.Email,
			Action:  "Login failed",
			Outcome: shared.OutcomeError,
			Detail:  "Invalid password",
		}); err != nil {
			return nil, err
		}
		_ = s.throttle.RecordFailure(ctx, email)
		return nil, shared.ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.Email, now); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, shared.ActivityEntry{
		Actor:   user.Email,
		Action:  "Login successful",
		Outcome: shared.OutcomeSuccess,
	}); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, err
	}

	_ = s.throttle.Reset(ctx, email)
	user.LastLogin = &now
	return &LoginResult{User: user, Token: token}, nil
}

// SetPassword overwrites the stored hash with the new password, clears
// the first-login flag and issues a bearer token. Callers reach this
// only via the first-login flow; the temporary password was already
// verified by Login, so no old-password check happens here.
func (s *Service) SetPassword(ctx context.Context, email, newPassword string) (*LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.repo.SetPassword(ctx, user.Email, string(hash), now); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, shared.ActivityEntry{
		Actor:   user.Email,
		Action:  "Password changed",
		Outcome: shared.OutcomeInfo,
	}); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = string(hash)
	user.FirstLogin = false
	user.LastLogin = &now
	return &LoginResult{User: user, Token: token}, nil
}

// HashPassword produces a bcrypt hash for a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
