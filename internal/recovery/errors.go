package recovery

import "errors"

// Store-level sentinels. The service collapses the enumeration-sensitive
// ones before they reach a handler.
var (
	ErrOtpNotFound   = errors.New("otp not found")
	ErrOtpMismatch   = errors.New("otp mismatch")
	ErrOtpExpired    = errors.New("otp expired")
	ErrTokenNotFound = errors.New("reset token not found")
	ErrTokenExpired  = errors.New("reset token expired")
	ErrTokenUsed     = errors.New("reset token already used")
)

// Caller-visible errors. ErrInvalidOtp covers both not-found and mismatch so
// a caller cannot tell "never requested" from "wrong code". ErrInvalidToken
// covers unknown and expired reset tokens the same way.
var (
	ErrInvalidOtp   = errors.New("invalid otp")
	ErrInvalidToken = errors.New("invalid or expired reset token")
	ErrWriteFailed  = errors.New("password update failed")
)
