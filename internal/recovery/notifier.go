package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gopay-wallet-api/internal/infrastructure/smtp"
	"github.com/gopay-wallet-api/internal/infrastructure/sns"
)

type codeNotifier struct {
	mailer smtp.Mailer
	sms    sns.SMSSender
	otpTTL time.Duration
}

// NewNotifier returns a Notifier that emails the recovery code and, when the
// account has a phone number and an SMS sender is configured, also sends it
// by SMS. The SMS leg is best-effort.
func NewNotifier(mailer smtp.Mailer, sms sns.SMSSender, otpTTL time.Duration) Notifier {
	return &codeNotifier{mailer: mailer, sms: sms, otpTTL: otpTTL}
}

func (n *codeNotifier) SendCode(ctx context.Context, email string, phone *string, code string) error {
	body := fmt.Sprintf(
		"Your OTP for password reset is: %s\n\n"+
			"This OTP will expire in %d minutes.\n\n"+
			"If you didn't request this, please ignore this email.",
		code, int(n.otpTTL.Minutes()),
	)
	if err := n.mailer.SendEmail(email, "Password Reset OTP", body); err != nil {
		return err
	}
	if phone != nil && n.sms != nil {
		if err := n.sms.SendSMS(ctx, *phone, "Your GoPay password reset code: "+code); err != nil {
			slog.Warn("failed to send recovery SMS", "err", err)
		}
	}
	return nil
}
