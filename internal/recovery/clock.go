package recovery

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time. Injected so expiry tests can control it.
type Clock func() time.Time

// SecretSource produces the short-lived secrets handed to account holders.
type SecretSource interface {
	// OTPCode returns a 6-digit numeric code.
	OTPCode() (string, error)
	// ResetToken returns an opaque, unguessable token string.
	ResetToken() (string, error)
}

// CryptoSource is the production SecretSource backed by crypto/rand.
type CryptoSource struct{}

func (CryptoSource) OTPCode() (string, error) {
	// Uniform over the full [0, 1_000_000) range; zero-padding keeps
	// leading-zero codes representable without biasing the distribution.
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (CryptoSource) ResetToken() (string, error) {
	return uuid.NewString(), nil
}
