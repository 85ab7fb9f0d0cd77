package http

import (
	"github.com/gopay-wallet-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/gopay-wallet-api/internal/infrastructure/jwt"
	s3infra "github.com/gopay-wallet-api/internal/infrastructure/s3"
	"github.com/gopay-wallet-api/internal/infrastructure/smtp"
	"github.com/gopay-wallet-api/internal/infrastructure/sns"
	"github.com/gopay-wallet-api/internal/recovery"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo        *dynamo.UserRepo
	TransactionRepo *dynamo.TransactionRepo
	ReceiptStore    *s3infra.Store
	Mailer          smtp.Mailer
	SMSSender       sns.SMSSender
	JWTProvider     *jwtinfra.Provider
	OtpStore        *recovery.OtpStore
	ResetTokenStore *recovery.ResetTokenStore
}
