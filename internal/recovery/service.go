package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gopay-wallet-api/internal/domain"
)

// AccountLookup resolves an email to an account. Pure read.
type AccountLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// PasswordWriter persists a new password for the account identified by
// email. Implementations hash before persisting; this package never sees
// a hash.
type PasswordWriter interface {
	SetPassword(ctx context.Context, email, newPassword string) error
}

// Notifier delivers a recovery code to the account holder.
type Notifier interface {
	SendCode(ctx context.Context, email string, phone *string, code string) error
}

type otpStore interface {
	Issue(accountKey string) (string, error)
	Validate(accountKey, code string) error
	Consume(accountKey string)
}

type tokenStore interface {
	Issue(accountKey string) (string, error)
	Validate(token string) (string, error)
	Invalidate(token string)
	Revoke(accountKey string)
}

// Service orchestrates the credential recovery flow: issue OTP on request,
// hand out a reset token on verification, consume the credential on reset.
// It holds no state of its own.
type Service interface {
	RequestReset(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (resetToken string, err error)
	ResetPasswordWithToken(ctx context.Context, token, newPassword string) error
	ResetPasswordWithOTP(ctx context.Context, email, code, newPassword string) error
}

type service struct {
	accounts AccountLookup
	otps     otpStore
	tokens   tokenStore
	notifier Notifier
	writer   PasswordWriter
}

type ServiceDeps struct {
	Accounts AccountLookup
	Otps     otpStore
	Tokens   tokenStore
	Notifier Notifier
	Writer   PasswordWriter
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts: deps.Accounts,
		otps:     deps.Otps,
		tokens:   deps.Tokens,
		notifier: deps.Notifier,
		writer:   deps.Writer,
	}
}

// RequestReset issues an OTP for the account behind email and dispatches it.
// The unknown-email path performs no store mutation, no notification, and
// returns the same nil as the success path so the two are indistinguishable
// to the caller.
func (s *service) RequestReset(ctx context.Context, email string) error {
	u, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		slog.Debug("password reset requested for unknown account")
		return nil
	}
	code, err := s.otps.Issue(u.Email)
	if err != nil {
		slog.Error("failed to issue recovery code", "err", err)
		return nil
	}
	// The store write is committed before dispatch. A delivery failure
	// leaves the code valid so the holder can retry out of band.
	if err := s.notifier.SendCode(ctx, u.Email, u.Phone, code); err != nil {
		slog.Warn("failed to deliver recovery code", "err", err)
	}
	return nil
}

// VerifyOTP checks the submitted code and, on success, issues a reset token
// the caller presents at the final step. The OTP is retained: consumption
// happens only when a password is actually written.
func (s *service) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	if err := s.otps.Validate(email, code); err != nil {
		if errors.Is(err, ErrOtpExpired) {
			return "", ErrOtpExpired
		}
		return "", ErrInvalidOtp
	}
	token, err := s.tokens.Issue(email)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}
	return token, nil
}

// ResetPasswordWithToken authorises the password change with a reset token.
func (s *service) ResetPasswordWithToken(ctx context.Context, token, newPassword string) error {
	email, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, ErrTokenUsed) {
			return ErrTokenUsed
		}
		return ErrInvalidToken
	}
	if err := s.writer.SetPassword(ctx, email, newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	s.tokens.Invalidate(token)
	s.otps.Consume(email)
	return nil
}

// ResetPasswordWithOTP authorises the password change by re-validating the
// OTP directly, for clients that skip the token handoff.
func (s *service) ResetPasswordWithOTP(ctx context.Context, email, code, newPassword string) error {
	if err := s.otps.Validate(email, code); err != nil {
		if errors.Is(err, ErrOtpExpired) {
			return ErrOtpExpired
		}
		return ErrInvalidOtp
	}
	if err := s.writer.SetPassword(ctx, email, newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	s.otps.Consume(email)
	// A completed recovery leaves no live credential behind.
	s.tokens.Revoke(email)
	return nil
}
