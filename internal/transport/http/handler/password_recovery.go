package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gopay-wallet-api/internal/application/user"
	"github.com/gopay-wallet-api/internal/pkg/validate"
	"github.com/gopay-wallet-api/internal/recovery"
	"github.com/gopay-wallet-api/internal/transport/http/middleware"
)

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

// resetPasswordRequest carries either a reset token or an email+OTP pair.
type resetPasswordRequest struct {
	ResetToken  string `json:"reset_token"`
	Email       string `json:"email" validate:"omitempty,email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// PasswordRecoveryHandler handles the password recovery flow endpoints.
type PasswordRecoveryHandler struct {
	svc   recovery.Service
	users user.Service
}

func NewPasswordRecoveryHandler(svc recovery.Service, users user.Service) *PasswordRecoveryHandler {
	return &PasswordRecoveryHandler{svc: svc, users: users}
}

// ForgotPassword always answers 200 with the same body. Whether the email
// resolves to an account must not be observable from the response.
func (h *PasswordRecoveryHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.RequestReset(r.Context(), req.Email); err != nil {
		recoveryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecoveryEnvelope{
		Success: true,
		Message: "If the email exists, an OTP has been sent",
	})
}

func (h *PasswordRecoveryHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	token, err := h.svc.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		recoveryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecoveryEnvelope{
		Success:    true,
		Message:    "OTP verified",
		ResetToken: token,
	})
}

// ResetPassword accepts either a reset token from verify-otp or an email+OTP
// pair for clients that skip the token handoff.
func (h *PasswordRecoveryHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var err error
	switch {
	case req.ResetToken != "":
		err = h.svc.ResetPasswordWithToken(r.Context(), req.ResetToken, req.NewPassword)
	case req.Email != "" && req.OTP != "":
		err = h.svc.ResetPasswordWithOTP(r.Context(), req.Email, req.OTP, req.NewPassword)
	default:
		writeJSON(w, http.StatusBadRequest, RecoveryEnvelope{
			Success: false,
			Message: "reset_token or email and otp are required",
		})
		return
	}
	if err != nil {
		recoveryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecoveryEnvelope{
		Success: true,
		Message: "Password reset successfully",
	})
}

func (h *PasswordRecoveryHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.users.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password changed"})
}

// recoveryError maps recovery sentinels onto the flow's fixed statuses:
// invalid credential 400, expired OTP 410, downstream write failure 500
// with a generic message.
func recoveryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recovery.ErrOtpExpired):
		writeJSON(w, http.StatusGone, RecoveryEnvelope{Success: false, Message: "OTP has expired"})
	case errors.Is(err, recovery.ErrInvalidOtp):
		writeJSON(w, http.StatusBadRequest, RecoveryEnvelope{Success: false, Message: "Invalid OTP"})
	case errors.Is(err, recovery.ErrTokenUsed):
		writeJSON(w, http.StatusBadRequest, RecoveryEnvelope{Success: false, Message: "Reset token already used"})
	case errors.Is(err, recovery.ErrInvalidToken):
		writeJSON(w, http.StatusBadRequest, RecoveryEnvelope{Success: false, Message: "Invalid or expired reset token"})
	default:
		writeJSON(w, http.StatusInternalServerError, RecoveryEnvelope{Success: false, Message: "Something went wrong. Please try again later."})
	}
}
